// notifyd serves the notification feed: a WebSocket event channel plus the
// feed REST endpoints, backed by a configurable bus and storage.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/feed"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/identity"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/stream"
)

type appConfig struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// TenantSecret keys subscriber hash verification. Verification is
	// enforced whenever a secret is set.
	TenantSecret string `env:"TENANT_SECRET"`

	// Bus selects the event bus: "memory" or "redis".
	Bus string `env:"EVENT_BUS" envDefault:"memory"`

	// BusBuffer is the per-session event buffer on the bus. Events
	// published while a session's buffer is full are dropped.
	BusBuffer int `env:"EVENT_BUS_BUFFER" envDefault:"32"`

	// Storage selects notification persistence: "memory" or "postgres".
	Storage string `env:"FEED_STORAGE" envDefault:"memory"`

	// SweepSchedule is the cron schedule purging expired notifications.
	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"@every 10m"`

	HTTP   httpserver.Config
	Stream stream.Config
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	format := logger.FormatJSON
	if cfg.LogFormat == string(logger.FormatText) {
		format = logger.FormatText
	}
	log := logger.New(
		logger.WithLevel(parseLevel(cfg.LogLevel)),
		logger.WithFormat(format),
	)
	logger.SetAsDefault(log)

	bus, readiness, err := newBus(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	storage, storageProbes, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	readiness = append(readiness, storageProbes...)

	deliverer := feed.NewBusDeliverer(bus, storage, feed.WithBusDelivererLogger(log))
	manager := feed.NewManager(storage, deliverer,
		feed.WithManagerLogger(log),
		feed.WithCountPublisher(deliverer),
	)

	sweeper := feed.NewSweeper(storage,
		feed.WithSweepSchedule(cfg.SweepSchedule),
		feed.WithSweeperLogger(log),
	)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	verifier := identity.Verifier{
		Secret:   cfg.TenantSecret,
		Required: cfg.TenantSecret != "",
	}

	svc, err := stream.New(cfg.Stream, verifier, bus, manager, stream.WithLogger(log))
	if err != nil {
		return err
	}

	mux := newRootMux(log, svc.Router(), readiness)

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, mux)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
