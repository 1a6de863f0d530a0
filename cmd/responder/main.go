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
	"github.com/Pkra99/minichat-v2/internal/engine"
	"github.com/Pkra99/minichat-v2/internal/handlers"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// The responder listens on its own port; the gateway default assumes 3001.
	port := cfg.Port
	if os.Getenv("PORT") == "" {
		port = "3001"
	}

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

	// Select the reply engine
	eng := engine.New(cfg.Engine)
	logger.Info().Str("engine", eng.Name()).Msg("reply engine selected")

	// Create router
	rh := handlers.NewResponderHandler(eng, logger)
	router := api.NewResponderRouter(logger, rh)

	// Create server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", port).
			Str("env", cfg.Env).
			Msg("starting minichat responder")

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
