package main

import (
	"bytes"
	"context"
	"crypto"
	_ "crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/schollz/progressbar/v3"

	"go.cluttr.dev/setup-mc/internal/metaerr"
)

// ArtifactName is the file name of the server binary in the installation
// directory.
const ArtifactName = "server.jar"

// Download retrieves the artifact at `url` and returns its payload.
// Progress is reported to `progress` if it is not nil.
func Download(ctx context.Context, client *http.Client, url string, progress io.Writer) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, metaerr.WithMetadata(fmt.Errorf("%w: %w", ErrNetwork, err), "url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, metaerr.WithMetadata(
			fmt.Errorf("%w: %d - %s", ErrNetwork, resp.StatusCode, http.StatusText(resp.StatusCode)),
			"url", url,
		)
	}

	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions64(
		resp.ContentLength,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription(ArtifactName),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(progress)
		}),
	)

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.Body); err != nil {
		return nil, metaerr.WithMetadata(fmt.Errorf("%w: read artifact: %w", ErrNetwork, err), "url", url)
	}
	_ = bar.Finish()

	slog.Debug("downloaded artifact", "url", url, "bytes", buf.Len())
	return buf.Bytes(), nil
}

// PersistArtifact writes `data` to the artifact path in `dir`, replacing any
// existing file. If `sha1sum` is set the payload is verified before the
// target is touched.
// It returns the path of the written artifact.
func PersistArtifact(dir string, data []byte, sha1sum string) (string, error) {
	target := filepath.Join(dir, ArtifactName)

	opts := goupdate.Options{
		TargetPath: target,
		TargetMode: 0o644,
	}
	if sha1sum != "" {
		sum, err := hex.DecodeString(sha1sum)
		if err != nil {
			return "", metaerr.WithMetadata(fmt.Errorf("%w: invalid checksum: %w", ErrParse, err), "sha1", sha1sum)
		}
		opts.Checksum = sum
		opts.Hash = crypto.SHA1
	}

	// the update swaps the new file with an existing one
	created := false
	if _, err := os.Stat(target); errors.Is(err, fs.ErrNotExist) {
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("%w: create artifact: %w", ErrFileSystem, err)
		}
		_ = f.Close()
		created = true
	}

	if err := goupdate.Apply(bytes.NewReader(data), opts); err != nil {
		if created {
			_ = os.Remove(target)
		}
		return "", metaerr.WithMetadata(fmt.Errorf("%w: write artifact: %w", ErrFileSystem, err), "path", target)
	}

	return target, nil
}
