package httpserver

import "errors"

var (
	// ErrStart is returned when the listener cannot be opened or serving
	// fails before shutdown was requested.
	ErrStart = errors.New("httpserver: start failed")

	// ErrShutdown is returned when graceful shutdown does not complete
	// within the configured deadline.
	ErrShutdown = errors.New("httpserver: shutdown failed")

	// ErrAlreadyRunning is returned by Run on a server that already ran.
	// A server runs at most once.
	ErrAlreadyRunning = errors.New("httpserver: server already running")

	// ErrMissingHandler is returned when Run is called without a handler.
	ErrMissingHandler = errors.New("httpserver: handler is required")
)
