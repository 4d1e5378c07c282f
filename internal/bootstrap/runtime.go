// Package bootstrap brings up the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"spottr/internal/cache"
	"spottr/internal/config"
	"spottr/internal/database"
	"spottr/internal/middleware"
	"spottr/internal/observability"
	"spottr/internal/seed"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations according to DB_SCHEMA_MODE.
	ApplySchema bool
	// SeedCatalog loads the built-in catalog after the schema is ready.
	SeedCatalog bool
}

// Runtime holds the initialized dependencies. Redis is nil when unreachable.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	logCloser      io.Closer
	tracerShutdown func(context.Context) error
}

// InitRuntime sets up logging and tracing, connects the database and Redis,
// sizes the local cache and optionally applies the schema and catalog.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{logCloser: middleware.InitLogger(cfg)}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRatio:  cfg.TracingSampler,
		Environment:  cfg.Env,
		Version:      "1.0",
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("init tracing: %w", err), rt.logCloser.Close())
	}
	rt.tracerShutdown = shutdown

	rt.DB, err = database.Connect(cfg)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("database connection failed: %w", err), rt.Close(ctx))
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, rt.DB, cfg); err != nil {
			return nil, multierr.Append(err, rt.Close(ctx))
		}
	}

	cache.InitRedis(cfg.RedisURL)
	cache.InitLocal(cfg.CatalogCacheMB)
	rt.Redis = cache.GetClient()

	if opts.SeedCatalog || cfg.SeedCatalog {
		if err := seed.Catalog(ctx, rt.DB); err != nil {
			return nil, multierr.Append(fmt.Errorf("seed catalog: %w", err), rt.Close(ctx))
		}
		middleware.Logger.Info("Catalog seeded")
	}

	middleware.Logger.Info("Runtime initialized",
		slog.String("env", cfg.Env),
		slog.Bool("redis", rt.Redis != nil),
		slog.Bool("tracing", cfg.TracingEnabled),
	)
	return rt, nil
}

// Close releases everything InitRuntime opened that the server does not own:
// the tracer provider and the log file. The server closes DB and Redis on
// its own shutdown; CLI commands that never start a server use CloseAll.
func (rt *Runtime) Close(ctx context.Context) error {
	var err error
	if rt.tracerShutdown != nil {
		err = multierr.Append(err, rt.tracerShutdown(ctx))
	}
	if rt.logCloser != nil {
		err = multierr.Append(err, rt.logCloser.Close())
	}
	return err
}

// CloseAll closes the database and Redis as well as what Close releases.
func (rt *Runtime) CloseAll(ctx context.Context) error {
	err := database.Close(rt.DB)
	if rt.Redis != nil {
		err = multierr.Append(err, cache.Close())
	}
	return multierr.Append(err, rt.Close(ctx))
}
