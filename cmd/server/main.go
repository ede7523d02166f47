package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/p-n-ai/prost/internal/api"
	"github.com/p-n-ai/prost/internal/content"
	"github.com/p-n-ai/prost/internal/platform/cache"
	"github.com/p-n-ai/prost/internal/platform/config"
	"github.com/p-n-ai/prost/internal/platform/database"
	"github.com/p-n-ai/prost/internal/progress"
	"github.com/p-n-ai/prost/internal/vocabulary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// app is the wired server with the collaborators it must release on exit.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	checks := map[string]api.Check{}

	lib, err := content.NewLibrary(cfg.ContentPath)
	if err != nil {
		return nil, err
	}

	trackerCfg := progress.TrackerConfig{CacheTTL: cfg.Cache.TTL}
	if cfg.Store == config.StorePostgres {
		db, err := database.New(ctx, cfg.Database.URL, database.Options{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		checks["database"] = db.HealthCheck

		log, err := progress.NewPostgresLog(db.Pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		if cfg.Database.Migrate {
			if err := log.EnsureSchema(ctx); err != nil {
				a.Close()
				return nil, err
			}
		}
		trackerCfg.Log = log
		trackerCfg.Events = progress.NewPostgresEventLogger(db.Pool)
	}

	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = c.Close() })
		checks["cache"] = c.HealthCheck
		trackerCfg.Cache = c
	}

	var words vocabulary.Store = vocabulary.NewMemoryStore()
	if cfg.Vocabulary.DBPath != "" {
		s, err := vocabulary.NewSQLiteStore(cfg.Vocabulary.DBPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		checks["vocabulary"] = s.HealthCheck
		words = s
	}

	a.handler = api.NewHandler(api.Config{
		Content: lib,
		Tracker: progress.NewTracker(trackerCfg),
		Words:   vocabulary.NewService(words),
		Checks:  checks,
	}).Routes()
	return a, nil
}
