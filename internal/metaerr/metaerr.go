// Package metaerr attaches structured logging attributes to errors.
package metaerr

import "errors"

type metaError struct {
	err      error
	metadata []any
}

func (e *metaError) Error() string {
	return e.err.Error()
}

func (e *metaError) Unwrap() error {
	return e.err
}

// WithMetadata wraps err and records the given key/value pairs, as they would
// be passed to slog.Logger.With.
// A nil error stays nil.
func WithMetadata(err error, keyvals ...any) error {
	if err == nil {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "!MISSING")
	}
	return &metaError{
		err:      err,
		metadata: keyvals,
	}
}

// GetMetadata collects the key/value pairs of every metadata layer in the
// chain of err, outermost first.
func GetMetadata(err error) []any {
	var metadata []any
	for err != nil {
		var me *metaError
		if !errors.As(err, &me) {
			break
		}
		metadata = append(metadata, me.metadata...)
		err = me.err
	}
	return metadata
}
