package hub

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/event"
)

// Subscriber receives events for a single feed session.
// Implementations must be safe for concurrent use.
type Subscriber interface {
	// Events returns the channel on which session events arrive.
	// The channel is closed when the subscriber is closed.
	Events() <-chan event.Event

	// Close tears down the session subscription and releases resources.
	// Close is idempotent.
	Close() error
}

// Bus fans out events to connected subscriber sessions.
type Bus interface {
	// Publish delivers an event to every open session of the subscriber.
	// Delivery is best effort: sessions with full buffers miss the event.
	Publish(ctx context.Context, subscriberID string, e event.Event) error

	// Subscribe opens a new session subscription for the subscriber.
	// The subscription is cleaned up when ctx is cancelled or when the
	// returned Subscriber is closed, whichever happens first.
	Subscribe(ctx context.Context, subscriberID string) (Subscriber, error)

	// Close shuts down the bus and closes all session subscriptions.
	Close() error
}
