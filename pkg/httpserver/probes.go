package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Probe reports whether one server dependency, such as the event bus or
// notification storage, is ready to serve.
type Probe func(context.Context) error

// Healthz answers the liveness probe. It reports 200 unconditionally: the
// process is up and the serving loop is reachable.
func Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Readyz answers the readiness probe. Every probe runs with the request
// context; the first failure answers 503 so the instance is pulled from
// rotation until its dependencies recover.
func Readyz(log *slog.Logger, probes ...Probe) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness probe failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("not ready"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
