package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/catalog/internal/app"
	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if loaded, err := config.LoadEnvFiles(); err != nil {
		slog.Error("failed to read env file", "error", err)
		os.Exit(1)
	} else if len(loaded) == 0 {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded env files (overwriting existing env vars)", "files", loaded)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, true)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := []web.Option{web.WithHealthCheck(a.Store)}
	if a.Metrics != nil {
		opts = append(opts, web.WithMetrics(a.Metrics))
	}
	server := web.NewServer(a.Service, cfg, opts...)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Retention.Enabled {
		g.Go(func() error {
			a.Service.StartRetentionScheduler(gctx, cfg.Retention.Core())
			return nil
		})
	}

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := a.Service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := a.Service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
