package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetAddr())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 1, cfg.Game.GridMargin)
	assert.Equal(t, 2.0, cfg.Game.GridDensity)
	assert.Equal(t, 100, cfg.Game.PlacementAttempts)
	assert.Equal(t, 5, cfg.Game.MaxGridGrowth)
	assert.Equal(t, 40, cfg.Game.MaxGridSize)
	assert.Equal(t, "uniform", cfg.Game.Filler)
	assert.Equal(t, "all", cfg.Game.Directions)
	assert.Equal(t, 2*time.Hour, cfg.Game.StaleTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("GRID_DENSITY", "3.5")
	t.Setenv("PLACEMENT_ATTEMPTS", "250")
	t.Setenv("GRID_MAX_SIZE", "64")
	t.Setenv("GRID_FILLER", "rare")
	t.Setenv("GAME_DIRECTIONS", "straight")
	t.Setenv("STALE_GAME_TIMEOUT", "15m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.GetAddr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3.5, cfg.Game.GridDensity)
	assert.Equal(t, 250, cfg.Game.PlacementAttempts)
	assert.Equal(t, 64, cfg.Game.MaxGridSize)
	assert.Equal(t, "rare", cfg.Game.Filler)
	assert.Equal(t, "straight", cfg.Game.Directions)
	assert.Equal(t, 15*time.Minute, cfg.Game.StaleTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"GRID_FILLER":        "zigzag",
		"GAME_DIRECTIONS":    "sideways",
		"PLACEMENT_ATTEMPTS": "0",
		"GRID_DENSITY":       "-1",
		"GRID_MARGIN":        "-2",
		"GRID_MAX_GROWTH":    "abc",
		"GRID_MAX_SIZE":      "500",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsTinyMaxGridSize(t *testing.T) {
	t.Setenv("GRID_MAX_SIZE", "1")
	_, err := Load()
	assert.Error(t, err)
}
