package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// CountPublisher pushes a subscriber's fresh unseen count to connected
// sessions. BusDeliverer satisfies it.
type CountPublisher interface {
	PublishUnseenCount(ctx context.Context, subscriberID string) error
}

// Manager orchestrates notification storage and delivery.
type Manager struct {
	storage   Storage
	deliverer Deliverer
	counts    CountPublisher
	log       *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithCountPublisher makes the manager push a fresh unseen count after
// notifications are marked seen, so open sessions update their badge.
func WithCountPublisher(p CountPublisher) ManagerOption {
	return func(m *Manager) {
		m.counts = p
	}
}

// NewManager creates a notification manager. A nil deliverer disables
// realtime delivery; notifications are still stored and queryable.
func NewManager(storage Storage, deliverer Deliverer, opts ...ManagerOption) *Manager {
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}

	m := &Manager{
		storage:   storage,
		deliverer: deliverer,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send stores the notification and then attempts realtime delivery.
// Storage comes first so the record survives even when delivery fails;
// a delivery failure is logged, never returned.
func (m *Manager) Send(ctx context.Context, n Notification) error {
	if n.SubscriberID == "" {
		return ErrMissingSubscriberID
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Channel == "" {
		n.Channel = ChannelInApp
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if err := m.storage.Create(ctx, n); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	if err := m.deliverer.Deliver(ctx, n); err != nil {
		m.log.LogAttrs(ctx, slog.LevelWarn, "notification stored but realtime delivery failed",
			logger.NotificationID(n.ID),
			logger.SubscriberID(n.SubscriberID),
			logger.Error(err),
		)
	}
	return nil
}

// SendToSubscribers sends a copy of the template notification to each of
// the given subscribers. Each copy gets its own identifier and timestamp.
func (m *Manager) SendToSubscribers(ctx context.Context, subscriberIDs []string, template Notification) error {
	for _, subID := range subscriberIDs {
		n := template
		n.ID = ""
		n.SubscriberID = subID
		n.CreatedAt = time.Time{}
		if err := m.Send(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a single notification of a subscriber.
func (m *Manager) Get(ctx context.Context, subscriberID, notifID string) (*Notification, error) {
	return m.storage.Get(ctx, subscriberID, notifID)
}

// List returns the subscriber's notifications, newest first.
func (m *Manager) List(ctx context.Context, subscriberID string, opts ListOptions) ([]Notification, error) {
	return m.storage.List(ctx, subscriberID, opts)
}

// MarkSeen marks the given notifications as seen. When a count publisher is
// configured, the fresh unseen count is pushed to open sessions; a failed
// push is logged, never returned.
func (m *Manager) MarkSeen(ctx context.Context, subscriberID string, notifIDs ...string) error {
	if err := m.storage.MarkSeen(ctx, subscriberID, notifIDs...); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	if m.counts != nil {
		if err := m.counts.PublishUnseenCount(ctx, subscriberID); err != nil {
			m.log.LogAttrs(ctx, slog.LevelWarn, "failed to publish unseen count",
				logger.SubscriberID(subscriberID),
				logger.Error(err),
			)
		}
	}
	return nil
}

// MarkAllSeen marks every unseen notification of the subscriber as seen.
func (m *Manager) MarkAllSeen(ctx context.Context, subscriberID string) error {
	unseen, err := m.storage.List(ctx, subscriberID, ListOptions{OnlyUnseen: true})
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	if len(unseen) == 0 {
		return nil
	}

	ids := make([]string, len(unseen))
	for i, n := range unseen {
		ids[i] = n.ID
	}
	return m.MarkSeen(ctx, subscriberID, ids...)
}

// Delete removes notification(s) of a subscriber.
func (m *Manager) Delete(ctx context.Context, subscriberID string, notifIDs ...string) error {
	return m.storage.Delete(ctx, subscriberID, notifIDs...)
}

// CountUnseen returns the subscriber's unseen notification count.
func (m *Manager) CountUnseen(ctx context.Context, subscriberID string) (int, error) {
	return m.storage.CountUnseen(ctx, subscriberID)
}

// Storage returns the underlying notification storage.
func (m *Manager) Storage() Storage {
	return m.storage
}
