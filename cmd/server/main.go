package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/caretower/component-tracker/internal/broadcast"
	"github.com/caretower/component-tracker/internal/config"
	"github.com/caretower/component-tracker/internal/core"
	"github.com/caretower/component-tracker/internal/logging"
	"github.com/caretower/component-tracker/internal/store"
	"github.com/caretower/component-tracker/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"status_scheme", cfg.Tracker.StatusScheme,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	componentStore, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Change-event hub for WebSocket subscribers
	hub := broadcast.NewHub(broadcast.Options{
		SendBuffer:   cfg.Broadcast.SendBuffer,
		WriteTimeout: cfg.Broadcast.WriteTimeout,
		PingInterval: cfg.Broadcast.PingInterval,
	})
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	scheme := core.SchemeByName(cfg.Tracker.StatusScheme)
	service := core.NewService(componentStore, hub, scheme)

	server := web.NewServer(cfg, service, hub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Close WebSocket clients after the HTTP listener stops
		stopHub()
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openStore connects to PostgreSQL, or returns the in-memory store when
// DATABASE_URL is the literal "memory" (development and demos).
func openStore(ctx context.Context, cfg *config.Config) (core.ComponentStore, func(), error) {
	if cfg.Database.URL == "memory" {
		slog.Warn("using in-memory store; data is lost on restart")
		mem := store.NewMemory()
		if cfg.Database.Seed {
			if err := mem.Seed(ctx); err != nil {
				return nil, nil, err
			}
		}
		return mem, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	st := store.New(pool)
	if cfg.Database.AutoMigrate {
		if err := st.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	if cfg.Database.Seed {
		if err := st.Seed(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	return st, pool.Close, nil
}
