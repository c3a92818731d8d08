package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.False(t, cfg.DailyReads.Enabled)
	assert.Equal(t, "0 4 * * *", cfg.DailyReads.Schedule)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("AUTH_TOKEN_EXPIRY", "1h")
	t.Setenv("DAILY_READS_ENABLED", "true")
	t.Setenv("SEARCH_BURST", "10")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, time.Hour, cfg.Auth.TokenExpiry)
	assert.True(t, cfg.DailyReads.Enabled)
	assert.Equal(t, 10, cfg.Search.Burst)
}
