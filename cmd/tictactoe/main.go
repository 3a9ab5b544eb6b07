package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaminalder/tictactoe/internal/ai"
	"github.com/jaminalder/tictactoe/internal/app"
	"github.com/jaminalder/tictactoe/internal/config"
	"github.com/jaminalder/tictactoe/internal/stats"
	"github.com/jaminalder/tictactoe/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	tracker, err := stats.NewTracker(ctx, store, logger)
	if err != nil {
		logger.Error("load stats", "err", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	engine := ai.NewEngine(seed)
	svc := app.NewService(app.Config{
		Engine:  engine,
		Tracker: tracker,
		Logger:  logger,
		AIDelay: cfg.AIDelay,
	})
	go sweepIdle(ctx, svc, cfg.IdleTimeout)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc, web.Options{Logger: logger, Engine: engine, Difficulty: cfg.DefaultDifficulty()}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()
	logger.Info("listening", "addr", cfg.Addr, "difficulty", cfg.DefaultDifficulty().String(), "ai_delay", cfg.AIDelay)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("graceful shutdown failed", "err", err)
		_ = srv.Close()
	}
	if runErr != nil {
		logger.Error("server error", "err", runErr)
		closeStore()
		os.Exit(1)
	}
}

// openStore picks Postgres when a DSN is configured and the JSON file
// store otherwise.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (stats.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := stats.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("stats store", "kind", "postgres")
		return pg, func() { _ = pg.Close() }, nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, err
	}
	logger.Info("stats store", "kind", "file", "dir", cfg.DataDir)
	return stats.NewFileStore(cfg.DataDir), func() {}, nil
}

func sweepIdle(ctx context.Context, svc *app.Service, maxAge time.Duration) {
	ticker := time.NewTicker(max(maxAge/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Sweep(maxAge)
		}
	}
}
