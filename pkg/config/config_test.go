package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 300*time.Millisecond, cfg.Booking.Debounce)
	assert.Equal(t, 30*time.Minute, cfg.Booking.SessionTTL)
	assert.False(t, cfg.Booking.GuardFailOpen)
	assert.True(t, cfg.Database.RunMigrations)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("BOOKING_DEBOUNCE", "1s")
	t.Setenv("BOOKING_GUARD_FAIL_OPEN", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, time.Second, cfg.Booking.Debounce)
	assert.True(t, cfg.Booking.GuardFailOpen)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())
	var nilCfg *Config
	assert.Equal(t, time.UTC, nilCfg.Location())
}
