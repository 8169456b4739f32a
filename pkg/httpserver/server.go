package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// Server is the serving layer for the notification stream surface. It wraps
// net/http with graceful shutdown and lifecycle hooks, and accepts any
// http.Handler.
type Server struct {
	cfg     Config
	log     *slog.Logger
	onStart []func()
	onStop  []func()

	mu       sync.Mutex
	srv      *http.Server
	addr     net.Addr
	running  bool
	shutdown sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for lifecycle records.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithStartHook registers a callback invoked once the listener is open,
// before the first request is served.
func WithStartHook(h func()) Option {
	return func(s *Server) {
		if h != nil {
			s.onStart = append(s.onStart, h)
		}
	}
}

// WithStopHook registers a callback invoked after the server has stopped
// serving. Hooks run in registration order.
func WithStopHook(h func()) Option {
	return func(s *Server) {
		if h != nil {
			s.onStop = append(s.onStop, h)
		}
	}
}

// New creates a server for the given config.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg: cfg.withDefaults(),
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the bound listener address, or nil before Run opens it.
// When the config address carries port 0, Addr reports the resolved port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run serves handler until ctx is cancelled, then drains in-flight requests
// within the configured shutdown deadline. It blocks for the server's
// lifetime. A server runs at most once; a second Run reports
// ErrAlreadyRunning.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		return ErrMissingHandler
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.srv = srv
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	for _, h := range s.onStart {
		h()
	}
	s.log.InfoContext(ctx, "http server listening", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = s.Shutdown(context.Background())
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = errors.Join(ErrStart, err)
		}
	}

	for _, h := range s.onStop {
		h()
	}
	s.log.InfoContext(ctx, "http server stopped")
	return runErr
}

// Shutdown drains the server gracefully within the configured deadline.
// It is safe to call repeatedly and before Run, and unblocks a pending Run.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	var err error
	s.shutdown.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		err = srv.Shutdown(ctx)
	})
	if err != nil {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
