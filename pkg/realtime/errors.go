package realtime

import "errors"

var (
	// ErrSessionClosed is returned when operating on a session after Close.
	ErrSessionClosed = errors.New("realtime: session is closed")

	// ErrAlreadyConnected is returned when Connect is called more than once.
	ErrAlreadyConnected = errors.New("realtime: session already connected")

	// ErrMissingEventName is returned when subscribing without an event name.
	ErrMissingEventName = errors.New("realtime: event name is required")

	// ErrNilHandler is returned when subscribing with a nil handler.
	ErrNilHandler = errors.New("realtime: handler is required")

	// ErrMissingDialer is returned when creating a session without a dialer.
	ErrMissingDialer = errors.New("realtime: dialer is required")
)
