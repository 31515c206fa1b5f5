package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 75.0, cfg.LowAttendanceThreshold)
	assert.Equal(t, 120*time.Second, cfg.PageLoadTimeoutDuration())
	assert.Equal(t, 3*time.Second, cfg.StepDelay())
	assert.Equal(t, time.Hour, cfg.CacheTTLDuration())
	assert.Equal(t, 3*time.Minute, cfg.FetchLockTTLDuration())
	assert.False(t, cfg.PermissiveHeaders)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins())
	assert.Equal(t, 2, cfg.MaxBrowsers)
	assert.Equal(t, 150*time.Second, cfg.RequestTimeout())
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("HEADLESS", "false")
	t.Setenv("CACHE_TTL", "5")
	t.Setenv("PERMISSIVE_HEADERS", "true")
	t.Setenv("LOW_ATTENDANCE_THRESHOLD", "60")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://dash.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTLDuration())
	assert.True(t, cfg.PermissiveHeaders)
	assert.Equal(t, 60.0, cfg.LowAttendanceThreshold)
	assert.Equal(t, []string{"http://localhost:3000", "https://dash.example.com"}, cfg.CORSOrigins())
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
