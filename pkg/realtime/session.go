package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/event"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Handler processes a single event delivered to the session.
// Handlers run on the session's connection goroutine; events are delivered
// one at a time in arrival order.
type Handler func(e event.Event)

// Subscription is a handle for a registered event handler.
type Subscription struct {
	name    event.Name
	session *Session
}

// EventName returns the event name the subscription is registered for.
func (s *Subscription) EventName() event.Name {
	return s.name
}

// Session is a client connection to the notification channel for a single
// subscriber. It owns the connection lifecycle (dial, reconnect with
// backoff, teardown) and dispatches incoming events to registered handlers.
//
// A session is single-reader: one connection goroutine delivers events
// sequentially. All exported methods are safe for concurrent use.
type Session struct {
	dialer  Dialer
	backoff BackoffStrategy
	log     *slog.Logger
	onState StateHandler

	mu       sync.Mutex
	handlers map[event.Name]Handler
	state    ConnState
	conn     Conn
	closed   bool
	started  bool
	cancel   context.CancelFunc

	done chan struct{} // closed when the connection goroutine exits
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBackoff sets the reconnect backoff strategy.
func WithBackoff(strategy BackoffStrategy) SessionOption {
	return func(s *Session) {
		if strategy != nil {
			s.backoff = strategy
		}
	}
}

// WithSessionLogger sets the logger for connection diagnostics.
func WithSessionLogger(log *slog.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithStateHandler registers a callback invoked on every connection state
// change. Use it to re-fetch authoritative feed state after a reconnect.
func WithStateHandler(h StateHandler) SessionOption {
	return func(s *Session) {
		s.onState = h
	}
}

// NewSession creates a session that will dial the channel with dialer.
// The session starts disconnected; call Connect to establish the channel.
func NewSession(dialer Dialer, opts ...SessionOption) *Session {
	s := &Session{
		dialer:   dialer,
		backoff:  DefaultBackoffStrategy(),
		log:      slog.Default(),
		handlers: make(map[event.Name]Handler),
		state:    StateDisconnected,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a handler for the named event. Subscribing is
// idempotent per event name: a repeated Subscribe replaces the existing
// handler rather than adding a second delivery, so re-subscribing after a
// reconnect never duplicates events.
func (s *Session) Subscribe(name event.Name, h Handler) (*Subscription, error) {
	if name == "" {
		return nil, ErrMissingEventName
	}
	if h == nil {
		return nil, ErrNilHandler
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.handlers[name] = h
	return &Subscription{name: name, session: s}, nil
}

// Unsubscribe removes the registration synchronously: once it returns, the
// handler will not fire again. Unsubscribing an already-removed or foreign
// subscription is a no-op.
func (s *Session) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.session != s {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, sub.name)
}

// Connect starts the connection loop. It returns immediately; the dial
// happens asynchronously and failures trigger reconnection with backoff
// rather than an error. There is no ordering guarantee between the
// connected state change and the first delivered event.
func (s *Session) Connect(ctx context.Context) error {
	if s.dialer == nil {
		return ErrMissingDialer
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.setState(StateConnecting)
	go s.run(runCtx)
	return nil
}

// Close tears the session down. It is synchronous: when Close returns, the
// connection is shut and no handler or state callback will fire again.
// Close is idempotent. It must not be called from inside a handler.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	cancel := s.cancel
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		// Unblocks the connection goroutine's pending read.
		_ = conn.Close()
	}
	if started {
		<-s.done
	}

	s.setState(StateDisconnected)
	return nil
}

// run is the connection loop: dial, read until failure, back off, repeat.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := s.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempt++
			if !s.waitBackoff(ctx, attempt, err) {
				return
			}
			continue
		}

		if !s.trackConn(conn) {
			// Session closed while dialing.
			_ = conn.Close()
			return
		}
		attempt = 0
		s.setState(StateConnected)

		err = s.readLoop(conn)
		_ = conn.Close()
		s.trackConn(nil)

		if ctx.Err() != nil {
			return
		}
		attempt++
		if !s.waitBackoff(ctx, attempt, err) {
			return
		}
	}
}

// waitBackoff transitions to reconnecting and sleeps for the backoff
// interval. It reports false when the session was cancelled while waiting.
func (s *Session) waitBackoff(ctx context.Context, attempt int, cause error) bool {
	s.setState(StateReconnecting)

	wait := s.backoff.NextInterval(attempt)
	s.log.LogAttrs(ctx, slog.LevelDebug, "channel connection lost, reconnecting",
		slog.Int("attempt", attempt),
		slog.Duration("backoff", wait),
		logger.Error(cause),
	)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// readLoop delivers incoming events until the connection fails.
func (s *Session) readLoop(conn Conn) error {
	for {
		e, err := conn.ReadEvent()
		if err != nil {
			return err
		}
		s.dispatch(e)
	}
}

// dispatch invokes the handler registered for the event, if any.
// Events without a registered handler are ignored: the event-name set is
// open and unknown names must not destabilize the session.
func (s *Session) dispatch(e event.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	h := s.handlers[e.Name]
	s.mu.Unlock()

	if h == nil {
		s.log.LogAttrs(context.Background(), slog.LevelDebug, "ignoring event without handler",
			logger.EventName(string(e.Name)),
		)
		return
	}
	h(e)
}

// trackConn records the active connection so Close can unblock the read.
// It reports false when the session is already closed.
func (s *Session) trackConn(conn Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conn = conn
	return true
}

// setState updates the connection state and notifies the state handler.
// No-op after Close so the terminal disconnected notification is the last.
func (s *Session) setState(state ConnState) {
	s.mu.Lock()
	if s.closed && state != StateDisconnected {
		s.mu.Unlock()
		return
	}
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	cb := s.onState
	s.mu.Unlock()

	s.log.LogAttrs(context.Background(), slog.LevelDebug, "channel state changed",
		logger.ConnState(string(state)),
	)
	if cb != nil {
		cb(state)
	}
}
