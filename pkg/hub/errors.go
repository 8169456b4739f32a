package hub

import "errors"

var (
	// ErrBusClosed is returned when publishing to or subscribing on a
	// closed bus.
	ErrBusClosed = errors.New("hub: bus is closed")

	// ErrMissingSubscriberID is returned when a subscriber identifier is empty.
	ErrMissingSubscriberID = errors.New("hub: subscriber id is required")
)
