package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/config"
	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.LiveMode)
	assert.Empty(t, cfg.RulesFile)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SHEETCALC_REDIS_ADDR", "localhost:6379")
	t.Setenv("SHEETCALC_SESSION_TTL", "30m")
	t.Setenv("SHEETCALC_LIVE_MODE", "true")
	t.Setenv("SHEETCALC_RULES_FILE", "/etc/sheetcalc/rules.yaml")
	t.Setenv("SHEETCALC_LOG_LEVEL", "DEBUG")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.LiveMode)
	assert.Equal(t, "/etc/sheetcalc/rules.yaml", cfg.RulesFile)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bad duration", "SHEETCALC_SESSION_TTL", "soon", "parse env"},
		{"non-positive ttl", "SHEETCALC_SESSION_TTL", "0s", "SessionTTL"},
		{"unknown level", "SHEETCALC_LOG_LEVEL", "chatty", "LogLevel: must be one of"},
		{"bad bool", "SHEETCALC_LIVE_MODE", "maybe", "parse env"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.True(t, errors.IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
