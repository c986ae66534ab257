package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/timetable-admin/internal/api"
	"github.com/JonMunkholm/timetable-admin/internal/auth"
	"github.com/JonMunkholm/timetable-admin/internal/config"
	"github.com/JonMunkholm/timetable-admin/internal/core"
	_ "github.com/JonMunkholm/timetable-admin/internal/core/panels" // Register all panels
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
	"github.com/JonMunkholm/timetable-admin/internal/logging"
	"github.com/JonMunkholm/timetable-admin/internal/store"
	"github.com/JonMunkholm/timetable-admin/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", cfg.Backend.URL,
		"backend_sync", cfg.Backend.Sync,
		"store", cfg.Store.Backend,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	local, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	client := api.New(cfg.Backend.URL, api.WithTimeout(cfg.Backend.Timeout))

	opts := core.Options{
		Local: local,
		Read: csvimport.ReadOptions{
			MaxBytes: cfg.Upload.MaxFileSize,
			Encoding: cfg.Upload.Encoding,
			Strict:   cfg.Upload.Strict,
		},
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
	}
	if cfg.Backend.Sync {
		opts.Backend = client
	}

	service, err := core.NewService(opts)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	slog.Info("panels registered",
		"count", core.Count(),
		"groups", len(core.Groups()),
	)

	manager, err := auth.NewManager(cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		return fmt.Errorf("create auth manager: %w", err)
	}

	server := web.NewServer(web.Deps{
		Config:  cfg,
		Service: service,
		Auth:    manager,
		Backend: api.NewBackend(client),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gctx)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active imports to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// openStore builds the local record store named by the config.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, func(), error) {
	switch cfg.Backend {
	case "file":
		fs, err := store.NewFile(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		slog.Info("using file store", "dir", cfg.Dir)
		return fs, func() {}, nil

	case "postgres":
		pool, err := store.Connect(ctx, cfg.DatabaseURL, int32(cfg.MaxConns), int32(cfg.MinConns))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		slog.Info("connected to database")
		return store.NewPostgres(pool), pool.Close, nil

	default:
		slog.Info("using in-memory store; records are lost on restart")
		return store.NewMemory(), func() {}, nil
	}
}
