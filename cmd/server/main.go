// Package main is the entry point for the yatube server.
//
// It only reads configuration, builds the logger and hands over to
// internal/server; everything else lives in the internal packages.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/yatube/internal/config"
	"github.com/sakif/yatube/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	// config.yml (optional), .env (optional) and the environment, in rising
	// order of precedence.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET is the development default; set a random value outside local development")
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
