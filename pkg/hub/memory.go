package hub

import (
	"context"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/event"
)

// session is a single in-memory subscriber session.
type session struct {
	ch     chan event.Event
	done   chan struct{}
	closed bool
	mu     sync.Mutex
	bus    *MemoryBus
	subID  string
}

func (s *session) Events() <-chan event.Event {
	return s.ch
}

func (s *session) Close() error {
	s.bus.detach(s)
	s.closeChan()
	return nil
}

func (s *session) closeChan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.ch)
		close(s.done)
		s.closed = true
	}
}

// send delivers e without blocking. It reports false when the session is
// closed or its buffer is full.
func (s *session) send(e event.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- e:
		return true
	default:
		return false
	}
}

// MemoryBus is an in-process Bus keyed by subscriber identifier.
// Sends never block: events are dropped for sessions whose buffer is full,
// keeping slow consumers from stalling the publisher. All methods are safe
// for concurrent use.
type MemoryBus struct {
	sessions   map[string]map[*session]struct{}
	bufferSize int
	closed     bool
	mu         sync.RWMutex
	cleanupWg  sync.WaitGroup
}

// NewMemoryBus creates an in-memory bus. bufferSize sets the per-session
// channel buffer; a minimum of 1 is enforced so sends stay non-blocking.
func NewMemoryBus(bufferSize int) *MemoryBus {
	return &MemoryBus{
		sessions:   make(map[string]map[*session]struct{}),
		bufferSize: max(bufferSize, 1),
	}
}

// Subscribe opens a session subscription for subscriberID. The subscription
// is removed automatically when ctx is cancelled.
func (b *MemoryBus) Subscribe(ctx context.Context, subscriberID string) (Subscriber, error) {
	if subscriberID == "" {
		return nil, ErrMissingSubscriberID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	s := &session{
		ch:    make(chan event.Event, b.bufferSize),
		done:  make(chan struct{}),
		bus:   b,
		subID: subscriberID,
	}

	group, ok := b.sessions[subscriberID]
	if !ok {
		group = make(map[*session]struct{})
		b.sessions[subscriberID] = group
	}
	group[s] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			select {
			case <-ctx.Done():
				_ = s.Close()
			case <-s.done:
			}
		}()
	}

	return s, nil
}

// Publish sends e to every open session of subscriberID. Sessions with full
// buffers miss the event; Publish still returns nil in that case because
// delivery is at-most-once by contract.
func (b *MemoryBus) Publish(ctx context.Context, subscriberID string, e event.Event) error {
	if subscriberID == "" {
		return ErrMissingSubscriberID
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	for s := range b.sessions[subscriberID] {
		_ = s.send(e)
	}
	return nil
}

// Close shuts down the bus and closes all session subscriptions.
// It is safe to call multiple times.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	for _, group := range b.sessions {
		for s := range group {
			s.closeChan()
		}
	}
	clear(b.sessions)
	b.mu.Unlock()

	// Closing every session unblocks the context-cleanup goroutines.
	b.cleanupWg.Wait()
	return nil
}

func (b *MemoryBus) detach(s *session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.sessions[s.subID]
	if !ok {
		return
	}
	delete(group, s)
	if len(group) == 0 {
		delete(b.sessions, s.subID)
	}
}
