package event

import "errors"

var (
	// ErrMissingName is returned when constructing or decoding an event
	// without a name.
	ErrMissingName = errors.New("event: name is required")

	// ErrMalformedPayload is returned when an event payload cannot be
	// encoded or decoded.
	ErrMalformedPayload = errors.New("event: malformed payload")
)
