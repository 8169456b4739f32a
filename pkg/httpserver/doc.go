// Package httpserver is the serving layer for the notification stream
// surface (pkg/stream). It wraps net/http with graceful shutdown,
// env-driven timeouts, lifecycle hooks and the daemon's health probes, and
// accepts any http.Handler.
//
// Run blocks until the context is cancelled, then drains in-flight requests
// within the configured deadline. Listen failures are wrapped with ErrStart,
// drain failures with ErrShutdown; inspect with errors.Is.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, svc.Router()); err != nil { ... }
//
// Healthz serves the liveness probe; Readyz runs dependency Probes (bus
// connectivity, storage reachability) and answers 503 until all pass.
package httpserver
