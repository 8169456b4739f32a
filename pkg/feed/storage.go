package feed

import (
	"context"
	"time"
)

// Storage handles notification persistence and retrieval.
// Errors returned by implementations are retryable unless stated otherwise.
type Storage interface {
	// Create stores a new notification.
	Create(ctx context.Context, n Notification) error

	// Get retrieves a single notification of a subscriber.
	Get(ctx context.Context, subscriberID, notifID string) (*Notification, error)

	// List returns notifications for a subscriber, newest first.
	List(ctx context.Context, subscriberID string, opts ListOptions) ([]Notification, error)

	// MarkSeen marks notification(s) as seen.
	MarkSeen(ctx context.Context, subscriberID string, notifIDs ...string) error

	// Delete removes notification(s).
	Delete(ctx context.Context, subscriberID string, notifIDs ...string) error

	// CountUnseen returns the subscriber's unseen notification count.
	CountUnseen(ctx context.Context, subscriberID string) (int, error)

	// DeleteExpired removes all expired notifications and reports how
	// many were removed.
	DeleteExpired(ctx context.Context) (int, error)
}

// ListOptions provides filtering and pagination for listing notifications.
type ListOptions struct {
	Limit      int         // Maximum number of records to return (0 = no limit)
	Offset     int         // Number of records to skip for pagination
	OnlyUnseen bool        // When true, only return unseen notifications
	Channel    ChannelType // If set, only return notifications of this channel
	Since      *time.Time  // If set, only return notifications created after this time
}
