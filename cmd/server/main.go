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

	"wordsearch/internal/app"
	"wordsearch/internal/config"
	httpTransport "wordsearch/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	logger.Info("starting word search server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	catalog, err := loadThemes(cfg.Game.ThemesFile)
	if err != nil {
		logger.Error("failed to load themes", "path", cfg.Game.ThemesFile, "error", err)
		os.Exit(1)
	}
	logger.Info("themes loaded", "count", len(catalog.Names()))

	// Create game hub
	hub := app.NewGameHub(catalog, app.SettingsFromConfig(cfg.Game), logger)
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, logger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// loadThemes reads the theme file if one is configured, otherwise the built-in themes
func loadThemes(path string) (*app.ThemeCatalog, error) {
	if path == "" {
		return app.NewThemeCatalog(app.DefaultThemes)
	}
	return app.LoadThemeCatalog(path)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
