package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pkra99/minichat-v2/internal/api"
	"github.com/Pkra99/minichat-v2/internal/config"
	"github.com/Pkra99/minichat-v2/internal/handlers"
	"github.com/Pkra99/minichat-v2/internal/responder"
	"github.com/Pkra99/minichat-v2/internal/store"
	"github.com/Pkra99/minichat-v2/internal/stream"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Open the history store
	st, backend, err := store.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", backend).Msg("history store connection failed")
	}
	defer st.Close()
	logger.Info().Str("backend", backend).Msg("history store ready")

	// Responder client and turn orchestrator
	client := responder.NewClient(cfg.ResponderURL, cfg.ResponderTimeout, logger)
	orch := stream.NewOrchestrator(st, client, logger, cfg.ChunkDelay, cfg.SlowDelay)

	// Create router
	h := handlers.NewHandler(st, orch, client, backend, cfg.ChunkSize)
	router := api.NewGatewayRouter(logger, h)

	// Create server. WriteTimeout stays zero so long-lived SSE responses are
	// not cut off mid-stream.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("responder", cfg.ResponderURL).
			Msg("starting minichat gateway")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
