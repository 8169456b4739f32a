package feed

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Deliverer pushes a stored notification to its delivery channel.
// Implementations handle the channels they know and skip the rest, so a
// MultiDeliverer can route each record to the right channel.
type Deliverer interface {
	Deliver(ctx context.Context, n Notification) error
}

// MultiDeliverer fans a notification out to several deliverers.
// Delivery is best effort: individual failures are logged and skipped.
type MultiDeliverer struct {
	deliverers []Deliverer
	log        *slog.Logger
}

// MultiDelivererOption configures a MultiDeliverer.
type MultiDelivererOption func(*MultiDeliverer)

// WithMultiDelivererLogger sets the logger for delivery failures.
func WithMultiDelivererLogger(log *slog.Logger) MultiDelivererOption {
	return func(m *MultiDeliverer) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMultiDeliverer creates a deliverer that tries each of deliverers in order.
func NewMultiDeliverer(deliverers []Deliverer, opts ...MultiDelivererOption) *MultiDeliverer {
	m := &MultiDeliverer{
		deliverers: deliverers,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MultiDeliverer) Deliver(ctx context.Context, n Notification) error {
	for i, d := range m.deliverers {
		if err := d.Deliver(ctx, n); err != nil {
			m.log.LogAttrs(ctx, slog.LevelError, "failed to deliver notification",
				logger.NotificationID(n.ID),
				logger.SubscriberID(n.SubscriberID),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
			continue
		}
	}
	return nil
}

// NoOpDeliverer does nothing. Useful for tests or store-only feeds.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(ctx context.Context, n Notification) error {
	return nil
}
