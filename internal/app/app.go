// Package app wires configuration into a running import service: the
// Postgres pool, the optional rule cache and source archive, and metrics.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/catalog/internal/archive"
	"github.com/JonMunkholm/catalog/internal/cache"
	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/metrics"
	"github.com/JonMunkholm/catalog/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config  *config.Config
	Pool    *pgxpool.Pool
	Store   *store.Postgres
	Service *core.Service
	Metrics *metrics.Metrics

	// Rules is nil when no redis URL is configured.
	Rules *cache.RuleCache

	redis *redis.Client
}

// Open connects to every configured backend and builds the service.
// Metrics are only registered when withMetrics is set and enabled in cfg.
func Open(ctx context.Context, cfg *config.Config, withMetrics bool) (*App, error) {
	pool, err := connectDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Pool: pool, Store: store.New(pool)}
	var opts []core.Option

	if cfg.Redis.Enabled() {
		client, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			// The cache is an optimization; run against Postgres alone.
			slog.Warn("rule cache disabled", "error", err)
		} else {
			a.redis = client
			a.Rules = cache.NewRuleCache(client, a.Store, cfg.Redis.RuleTTL, cfg.Redis.KeyPrefix)
			opts = append(opts, core.WithRuleSource(a.Rules))
			slog.Info("rule cache enabled", "ttl", cfg.Redis.RuleTTL.String())
		}
	}

	if cfg.Archive.Enabled() {
		archiver, err := archive.New(ctx, archive.Options{
			Bucket:       cfg.Archive.Bucket,
			Prefix:       cfg.Archive.Prefix,
			Region:       cfg.Archive.Region,
			Endpoint:     cfg.Archive.Endpoint,
			UsePathStyle: cfg.Archive.UsePathStyle,
			Timeout:      cfg.Archive.Timeout,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("source archive: %w", err)
		}
		opts = append(opts, core.WithArchiver(archiver))
		slog.Info("source archive enabled", "bucket", cfg.Archive.Bucket)
	}

	if withMetrics && cfg.Metrics.Enabled {
		a.Metrics = metrics.New(cfg.Metrics.Namespace)
		opts = append(opts, core.WithRecorder(a.Metrics))
	}

	a.Service = core.NewService(a.Store, a.Store, cfg.Import.Options(), opts...)
	return a, nil
}

// Close releases the pool and the cache client.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}
	a.Pool.Close()
}

func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
