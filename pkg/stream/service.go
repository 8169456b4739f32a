package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/feed"
	"github.com/dmitrymomot/notifykit/pkg/hub"
	"github.com/dmitrymomot/notifykit/pkg/identity"
	"github.com/dmitrymomot/notifykit/pkg/realtime"
)

// Service binds the event channel and the notification feed to HTTP.
type Service struct {
	cfg      Config
	verifier identity.Verifier
	bus      hub.Bus
	feed     *feed.Manager
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for connection lifecycle records.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCheckOrigin overrides the WebSocket origin check. The default
// accepts any origin; production deployments should restrict it.
func WithCheckOrigin(f func(r *http.Request) bool) Option {
	return func(s *Service) {
		if f != nil {
			s.upgrader.CheckOrigin = f
		}
	}
}

// New creates the HTTP surface over the given bus and feed manager.
func New(cfg Config, verifier identity.Verifier, bus hub.Bus, manager *feed.Manager, opts ...Option) (*Service, error) {
	if bus == nil {
		return nil, ErrMissingBus
	}
	if manager == nil {
		return nil, ErrMissingFeed
	}

	s := &Service{
		cfg:      cfg.withDefaults(),
		verifier: verifier,
		bus:      bus,
		feed:     manager,
		log:      slog.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router returns the chi router with all routes mounted.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/ws", s.handleWS)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Get("/unseen", s.handleUnseenCount)
			r.Post("/seen", s.handleMarkAllSeen)
			r.Post("/{id}/seen", s.handleMarkSeen)
			r.Delete("/{id}", s.handleDelete)
		})
	})
	return r
}

type subscriberCtxKey struct{}

// authenticate verifies the subscriber credentials carried in the query
// string. Any failure answers 401 without detail.
func (s *Service) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		subscriberID := q.Get(realtime.ParamSubscriberID)
		if subscriberID == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := s.verifier.Verify(subscriberID, q.Get(realtime.ParamSubscriberHash)); err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), subscriberCtxKey{}, subscriberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// subscriberID returns the authenticated subscriber from the request
// context. The authenticate middleware guarantees presence.
func subscriberID(r *http.Request) string {
	id, _ := r.Context().Value(subscriberCtxKey{}).(string)
	return id
}

// envelope is the JSON body shape of every REST response.
type envelope struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *errorDetail   `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, code string) {
	respondJSON(w, status, envelope{
		Error: &errorDetail{Code: code, Message: http.StatusText(status)},
	})
}
