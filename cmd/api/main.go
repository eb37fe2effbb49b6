// Package main is the entry point for the goals API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goalkeeper/goals/internal/config"
	"github.com/goalkeeper/goals/internal/handler"
	"github.com/goalkeeper/goals/internal/llm"
	"github.com/goalkeeper/goals/internal/metrics"
	"github.com/goalkeeper/goals/internal/middleware"
	"github.com/goalkeeper/goals/internal/repo"
	"github.com/goalkeeper/goals/internal/service"
	"github.com/goalkeeper/goals/internal/store"
	"github.com/goalkeeper/goals/internal/suggest"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Storage ----------------------------------------------------------
	ctx := context.Background()
	kv, err := openStore(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()
	slog.Info("store ready", "driver", cfg.StoreDriver)

	goals := repo.NewGoalRepo(ctx, store.NewGoalStore(kv, logger, m))

	// --- Suggestions ------------------------------------------------------
	// The planner prompts the LLM in-process and also serves
	// /api/suggest-steps. A configured SUGGEST_URL takes over the goal
	// service's suggestions.
	var planner *suggest.Planner
	if cfg.LLMAPIKey != "" {
		gen, err := llm.New(llm.Config{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.LLMAPIKey,
			Model:    cfg.LLMModel,
			BaseURL:  cfg.LLMBaseURL,
		})
		if err != nil {
			slog.Error("failed to create llm client", "provider", cfg.LLMProvider, "error", err)
			os.Exit(1)
		}
		planner = suggest.NewPlanner(gen, logger, m)
	}

	var suggester service.Suggester = planner
	if cfg.SuggestURL != "" {
		suggester = suggest.NewClient(cfg.SuggestURL, suggest.WithLogger(logger), suggest.WithMetrics(m))
		slog.Info("using remote suggestion service", "url", cfg.SuggestURL)
	}

	svc := service.NewGoalService(goals, suggester, logger)

	// The handler needs a nil interface, not a typed nil, to skip the route.
	var stepSuggester handler.StepSuggester
	if planner != nil {
		stepSuggester = planner
	}
	srvHandler := handler.NewServer(svc, stepSuggester, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → MaxBodySize.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Mount("/", srvHandler.Routes())

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout leaves room for a suggestion round trip to the LLM.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return
	}
	slog.Info("server stopped")
}

// openStore opens the key-value backend named by cfg.StoreDriver and
// applies migrations where the backend has a schema.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.KV, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return store.OpenSQLite(ctx, cfg.StorePath)

	case config.DriverPostgres:
		// pgxpool.New does not open connections immediately; Ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		// goose needs database/sql, so migrations run on their own connection.
		if err := migratePostgres(ctx, cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, err
		}
		return store.NewPostgresKV(pool, pool.Close), nil

	case config.DriverBadger:
		return store.OpenBadger(store.BadgerConfig{Path: cfg.StorePath, Logger: logger})

	case config.DriverMemory:
		return store.NewMemoryKV(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func migratePostgres(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()
	return store.Migrate(ctx, db, goose.DialectPostgres)
}
