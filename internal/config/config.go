package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Env  string `env:"ENV" envDefault:"development"` // "development" or "production"
}

// GameConfig holds puzzle generation and game lifecycle configuration
type GameConfig struct {
	GridMargin        int           `env:"GRID_MARGIN" envDefault:"1"`
	GridDensity       float64       `env:"GRID_DENSITY" envDefault:"2.0"`
	PlacementAttempts int           `env:"PLACEMENT_ATTEMPTS" envDefault:"100"`
	MaxGridGrowth     int           `env:"GRID_MAX_GROWTH" envDefault:"5"`
	MaxGridSize       int           `env:"GRID_MAX_SIZE" envDefault:"40"`
	Filler            string        `env:"GRID_FILLER" envDefault:"uniform"` // "uniform" or "rare"
	Directions        string        `env:"GAME_DIRECTIONS" envDefault:"all"` // "all", "forward" or "straight"
	StaleTimeout      time.Duration `env:"STALE_GAME_TIMEOUT" envDefault:"2h"`
	ThemesFile        string        `env:"THEMES_FILE"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load reads an optional .env file, then configuration from environment
// variables with defaults
func Load() (*Config, error) {
	// A missing .env file is normal outside development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the generator cannot work with
func (c *Config) Validate() error {
	switch c.Game.Filler {
	case "uniform", "rare":
	default:
		return fmt.Errorf("GRID_FILLER must be uniform or rare, got %q", c.Game.Filler)
	}

	switch c.Game.Directions {
	case "all", "forward", "straight":
	default:
		return fmt.Errorf("GAME_DIRECTIONS must be all, forward or straight, got %q", c.Game.Directions)
	}

	if c.Game.PlacementAttempts < 1 {
		return fmt.Errorf("PLACEMENT_ATTEMPTS must be positive, got %d", c.Game.PlacementAttempts)
	}
	if c.Game.GridDensity <= 0 {
		return fmt.Errorf("GRID_DENSITY must be positive, got %v", c.Game.GridDensity)
	}
	if c.Game.GridMargin < 0 || c.Game.MaxGridGrowth < 0 {
		return fmt.Errorf("GRID_MARGIN and GRID_MAX_GROWTH cannot be negative")
	}
	if c.Game.MaxGridSize < 2 || c.Game.MaxGridSize > 200 {
		return fmt.Errorf("GRID_MAX_SIZE must be between 2 and 200, got %d", c.Game.MaxGridSize)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}
