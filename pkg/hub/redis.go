package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// redisChannelPrefix namespaces the Pub/Sub channels used by RedisBus so
// unrelated keys on a shared Redis instance never collide with event traffic.
const redisChannelPrefix = "notifykit:events:"

// RedisBus fans events out across service instances over Redis Pub/Sub.
// Each subscriber identifier maps to one Pub/Sub channel; every session
// holds its own Redis subscription, so sessions on different instances all
// receive the event. Redis Pub/Sub is fire-and-forget, which matches the
// channel's at-most-once delivery contract.
type RedisBus struct {
	client *redis.Client
	log    *slog.Logger
	buffer int

	mu     sync.Mutex
	closed bool
	subs   map[*redisSession]struct{}
}

// defaultSessionBuffer is the per-session event buffer used when no
// WithSessionBuffer option is given.
const defaultSessionBuffer = 64

// RedisBusOption configures a RedisBus.
type RedisBusOption func(*RedisBus)

// WithRedisBusLogger sets the logger used for dropped-event diagnostics.
func WithRedisBusLogger(log *slog.Logger) RedisBusOption {
	return func(b *RedisBus) {
		if log != nil {
			b.log = log
		}
	}
}

// WithSessionBuffer sets the per-session event buffer. Events arriving while
// a session's buffer is full are dropped, not queued. Values below 1 are
// ignored so sends stay non-blocking.
func WithSessionBuffer(n int) RedisBusOption {
	return func(b *RedisBus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// NewRedisBus creates a bus backed by the given Redis client.
// The caller retains ownership of the client; Close does not close it.
func NewRedisBus(client *redis.Client, opts ...RedisBusOption) *RedisBus {
	b := &RedisBus{
		client: client,
		log:    slog.Default(),
		buffer: defaultSessionBuffer,
		subs:   make(map[*redisSession]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends e to the subscriber's Pub/Sub channel. Instances without
// open sessions for the subscriber simply have no Redis subscribers on the
// channel, so the publish is a no-op there.
func (b *RedisBus) Publish(ctx context.Context, subscriberID string, e event.Event) error {
	if subscriberID == "" {
		return ErrMissingSubscriberID
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, redisChannelPrefix+subscriberID, data).Err()
}

// Subscribe opens a Pub/Sub subscription for the subscriber and bridges it
// into a session event channel. Malformed payloads received from Redis are
// dropped with a log record rather than propagated, so one bad publisher
// cannot destabilize a session.
func (b *RedisBus) Subscribe(ctx context.Context, subscriberID string) (Subscriber, error) {
	if subscriberID == "" {
		return nil, ErrMissingSubscriberID
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBusClosed
	}

	pubsub := b.client.Subscribe(ctx, redisChannelPrefix+subscriberID)
	s := &redisSession{
		pubsub: pubsub,
		ch:     make(chan event.Event, b.buffer),
		bus:    b,
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go s.pump(subscriberID, b.log)

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			_ = s.Close()
		}()
	}

	return s, nil
}

// Close closes all open session subscriptions. The underlying Redis client
// is left open for the caller to dispose of.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*redisSession, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	clear(b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}
	return nil
}

func (b *RedisBus) detach(s *redisSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, s)
}

// redisSession bridges one Redis Pub/Sub subscription to a session channel.
type redisSession struct {
	pubsub    *redis.PubSub
	ch        chan event.Event
	bus       *RedisBus
	closeOnce sync.Once
}

func (s *redisSession) Events() <-chan event.Event {
	return s.ch
}

func (s *redisSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.bus.detach(s)
		// Closing the PubSub ends the pump goroutine, which then closes
		// the session channel.
		err = s.pubsub.Close()
	})
	return err
}

// pump forwards Pub/Sub messages to the session channel until the
// subscription is closed.
func (s *redisSession) pump(subscriberID string, log *slog.Logger) {
	defer close(s.ch)

	for msg := range s.pubsub.Channel() {
		var e event.Event
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			log.LogAttrs(context.Background(), slog.LevelDebug, "dropping malformed event payload",
				logger.SubscriberID(subscriberID),
				logger.Error(err),
			)
			continue
		}

		select {
		case s.ch <- e:
		default:
			// Session buffer full: drop, at-most-once delivery.
			log.LogAttrs(context.Background(), slog.LevelDebug, "dropping event for slow session",
				logger.SubscriberID(subscriberID),
				logger.EventName(string(e.Name)),
			)
		}
	}
}
