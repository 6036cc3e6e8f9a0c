package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "CV_API_URL", "CV_AUTH_URL", "CV_DATABASE_URL", "CV_JWT_SECRET",
		"CV_CORS_ORIGINS", "CV_CONSOLE_IDLE", "CV_HTTP_TIMEOUT", "CV_SESSION_FILE",
		"CV_LOG_LEVEL", "CHROME_PATH",
	} {
		t.Setenv(k, "")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	chdir(t, t.TempDir())

	c, err := Load("3000")
	require.NoError(t, err)

	assert.Equal(t, "3000", c.Port)
	assert.Equal(t, "http://localhost:8081", c.APIURL)
	assert.Equal(t, "http://localhost:8081/oauth2/authorization/google", c.AuthURL)
	assert.Empty(t, c.DatabaseURL)
	assert.Equal(t, "dev-secret", c.JWTSecret)
	assert.Equal(t, []string{"http://localhost:5173", "https://salyem.dev"}, c.CORSOrigins)
	assert.Equal(t, 30*time.Minute, c.ConsoleIdle)
	assert.Equal(t, 15*time.Second, c.HTTPTimeout)
	assert.Equal(t, filepath.Join("/tmp/xdg", "cv-site", "session.yaml"), c.SessionFile)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("CV_API_URL", "https://api.salyem.dev/")
	t.Setenv("CV_CORS_ORIGINS", " https://a.dev , ,https://b.dev")
	t.Setenv("CV_CONSOLE_IDLE", "5m")
	t.Setenv("CV_SESSION_FILE", "/tmp/s.yaml")
	t.Setenv("CV_LOG_LEVEL", "debug")

	c, err := Load("8081")
	require.NoError(t, err)

	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "https://api.salyem.dev", c.APIURL)
	assert.Equal(t, "https://api.salyem.dev/oauth2/authorization/google", c.AuthURL)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, c.CORSOrigins)
	assert.Equal(t, 5*time.Minute, c.ConsoleIdle)
	assert.Equal(t, "/tmp/s.yaml", c.SessionFile)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	t.Setenv("CV_HTTP_TIMEOUT", "soon")
	_, err := Load("3000")
	assert.ErrorContains(t, err, "CV_HTTP_TIMEOUT")

	t.Setenv("CV_HTTP_TIMEOUT", "")
	t.Setenv("CV_LOG_LEVEL", "loud")
	_, err = Load("3000")
	assert.ErrorContains(t, err, "CV_LOG_LEVEL")
}
