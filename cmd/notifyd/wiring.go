package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/feed"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/hub"
)

// newBus builds the configured event bus and its readiness probes.
func newBus(ctx context.Context, cfg appConfig) (hub.Bus, []httpserver.Probe, error) {
	switch cfg.Bus {
	case "memory":
		return hub.NewMemoryBus(cfg.BusBuffer), nil, nil

	case "redis":
		var redisCfg hub.RedisConfig
		if err := config.Load(&redisCfg); err != nil {
			return nil, nil, err
		}
		client, err := hub.ConnectRedis(ctx, redisCfg)
		if err != nil {
			return nil, nil, err
		}
		probe := func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		bus := hub.NewRedisBus(client, hub.WithSessionBuffer(cfg.BusBuffer))
		return bus, []httpserver.Probe{probe}, nil

	default:
		return nil, nil, fmt.Errorf("unknown event bus %q", cfg.Bus)
	}
}

// newStorage builds the configured notification storage and its readiness
// probes, applying schema migrations for postgres.
func newStorage(ctx context.Context, cfg appConfig) (feed.Storage, []httpserver.Probe, error) {
	switch cfg.Storage {
	case "memory":
		return feed.NewMemoryStorage(), nil, nil

	case "postgres":
		var pgCfg feed.PostgresConfig
		if err := config.Load(&pgCfg); err != nil {
			return nil, nil, err
		}
		pool, err := feed.ConnectPostgres(ctx, pgCfg)
		if err != nil {
			return nil, nil, err
		}
		if err := feed.MigratePostgres(ctx, pool); err != nil {
			return nil, nil, err
		}
		probe := func(ctx context.Context) error {
			return pool.Ping(ctx)
		}
		return feed.NewPostgresStorage(pool), []httpserver.Probe{probe}, nil

	case "mongo":
		var mongoCfg feed.MongoConfig
		if err := config.Load(&mongoCfg); err != nil {
			return nil, nil, err
		}
		collection, err := feed.ConnectMongo(ctx, mongoCfg)
		if err != nil {
			return nil, nil, err
		}
		probe := func(ctx context.Context) error {
			return collection.Database().Client().Ping(ctx, nil)
		}
		return feed.NewMongoStorage(collection), []httpserver.Probe{probe}, nil

	default:
		return nil, nil, fmt.Errorf("unknown feed storage %q", cfg.Storage)
	}
}

// newRootMux mounts the stream surface next to the health probes.
func newRootMux(log *slog.Logger, api http.Handler, readiness []httpserver.Probe) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", httpserver.Healthz())
	r.Get("/readyz", httpserver.Readyz(log, readiness...))
	r.Mount("/", api)
	return r
}
