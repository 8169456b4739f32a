package feed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/hub"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// UnseenCounter reports a subscriber's unseen notification count.
// Storage satisfies it.
type UnseenCounter interface {
	CountUnseen(ctx context.Context, subscriberID string) (int, error)
}

// BusDeliverer pushes in-app notifications to connected sessions through a
// hub.Bus. For every delivered record it emits notification_received
// followed by unseen_count_changed with the fresh count, so clients can
// update their badge without polling. Records for other channels are
// skipped.
type BusDeliverer struct {
	bus     hub.Bus
	counter UnseenCounter
	log     *slog.Logger
}

// BusDelivererOption configures a BusDeliverer.
type BusDelivererOption func(*BusDeliverer)

// WithBusDelivererLogger sets the logger for count-lookup failures.
func WithBusDelivererLogger(log *slog.Logger) BusDelivererOption {
	return func(b *BusDeliverer) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBusDeliverer creates a realtime deliverer publishing to bus.
// counter is typically the same Storage the manager writes to.
func NewBusDeliverer(bus hub.Bus, counter UnseenCounter, opts ...BusDelivererOption) *BusDeliverer {
	b := &BusDeliverer{
		bus:     bus,
		counter: counter,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BusDeliverer) Deliver(ctx context.Context, n Notification) error {
	if n.Channel != ChannelInApp {
		return nil
	}

	received, err := event.New(event.NotificationReceived, n)
	if err != nil {
		return err
	}
	if err := b.bus.Publish(ctx, n.SubscriberID, received); err != nil {
		return err
	}

	// The count event is secondary: clients re-fetch the authoritative
	// count on reconnect anyway, so a failed lookup only delays the badge.
	if err := b.PublishUnseenCount(ctx, n.SubscriberID); err != nil {
		b.log.LogAttrs(ctx, slog.LevelWarn, "failed to publish unseen count",
			logger.SubscriberID(n.SubscriberID),
			logger.Error(err),
		)
	}
	return nil
}

// PublishUnseenCount looks up the subscriber's current unseen count and
// publishes unseen_count_changed with it.
func (b *BusDeliverer) PublishUnseenCount(ctx context.Context, subscriberID string) error {
	count, err := b.counter.CountUnseen(ctx, subscriberID)
	if err != nil {
		return err
	}
	if err := b.bus.Publish(ctx, subscriberID, event.NewUnseenCountChanged(count)); err != nil && !errors.Is(err, hub.ErrBusClosed) {
		return err
	}
	return nil
}
