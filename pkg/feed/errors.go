package feed

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification does not exist.
	ErrNotificationNotFound = errors.New("feed: notification not found")

	// ErrMissingID is returned when a notification identifier is empty.
	ErrMissingID = errors.New("feed: notification id is required")

	// ErrMissingSubscriberID is returned when a subscriber identifier is empty.
	ErrMissingSubscriberID = errors.New("feed: subscriber id is required")

	// ErrStorageFailure wraps storage-level errors. Callers may retry;
	// no retry policy is imposed here.
	ErrStorageFailure = errors.New("feed: storage failure")
)
