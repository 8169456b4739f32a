package stream

import "errors"

var (
	// ErrMissingBus is returned when the service is created without an event bus.
	ErrMissingBus = errors.New("stream: event bus is required")

	// ErrMissingFeed is returned when the service is created without a feed manager.
	ErrMissingFeed = errors.New("stream: feed manager is required")
)
