package httpserver

import "errors"

var (
	// ErrStart reports that the listener could not be started, or that it
	// failed while serving.
	ErrStart = errors.New("httpserver: start failed")
	// ErrShutdown reports that graceful shutdown did not complete in time.
	ErrShutdown = errors.New("httpserver: shutdown failed")
)
