// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/builder"
	"github.com/starford/raido/internal/livereload"
	"github.com/starford/raido/internal/server"
	"github.com/starford/raido/internal/storage"
)

// watchDebounce is the quiet period after a file event before rebuilding.
const watchDebounce = 500 * time.Millisecond

// NewLogger builds the application's structured JSON logger and installs it
// as the slog default.
func NewLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the dev server: an initial build, a file watcher that rebuilds
// on change, and an HTTP server over the output directory with live reload.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := app.logger
	if logger == nil {
		logger = NewLogger(cfg.App.LogLevel)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Build.ContentDir),
		slog.String("output_dir", cfg.Build.OutputDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	buildOpts := cfg.BuildOptions()

	// Initial build. There is nothing to serve if it fails.
	result, err := builder.Build(buildOpts, logger)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	lastFingerprint := result.Fingerprint

	src, err := storage.NewFS(buildOpts.ContentDir)
	if err != nil {
		return fmt.Errorf("open content dir: %w", err)
	}

	broker := livereload.NewBroker()
	defer broker.Close()

	router := server.New(buildOpts.OutputDir, http.HandlerFunc(broker.ServeHTTP))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: router,
	}

	// cancelAll stops the watcher once the server has shut down.
	ctx, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	g, gCtx := errgroup.WithContext(ctx)

	// Watch sources and rebuild on change. lastFingerprint is only touched
	// from this goroutine.
	g.Go(func() error {
		roots := []string{buildOpts.ContentDir, buildOpts.LayoutsDir, buildOpts.StaticDir}
		return builder.Watch(gCtx, roots, buildOpts.ContentDir, watchDebounce, logger, func(contentOnly bool) {
			if contentOnly {
				fp, err := builder.Fingerprint(src)
				if err == nil && fp == lastFingerprint {
					logger.Debug("rebuild skipped, content unchanged")
					return
				}
			}

			res, err := builder.Build(buildOpts, logger)
			if err != nil {
				logger.Error("rebuild failed", slog.String("error", err.Error()))
				broker.PublishBuildFailed(err)
				return
			}
			lastFingerprint = res.Fingerprint
			broker.PublishBuildOK(res.Documents)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Serving site", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		cancelAll()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
