package main

import "errors"

var (
	ErrNetwork        = errors.New("network error")
	ErrParse          = errors.New("parse error")
	ErrInvalidVersion = errors.New("invalid version")
	ErrFileSystem     = errors.New("file system error")

	// ErrChannelSwitch signals that the operator asked for the alternate
	// channel of the catalog.
	ErrChannelSwitch = errors.New("channel switch requested")

	errAborted = errors.New("aborted")
)
