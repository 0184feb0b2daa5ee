package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  read_timeout: 2s
store:
  driver: redis
redis:
  addr: cache:6379
identity:
  api_key: from-file
  project_id: demo
  session_secret: file-secret
queue:
  publish_mode: force
`), 0o600))

	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("COOKIE_SAMESITE", "Lax")
	t.Setenv("FIREBASE_WEB_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "from-env", cfg.Identity.APIKey)
	assert.False(t, cfg.Cookies.Secure)
	assert.Equal(t, "Lax", cfg.Cookies.SameSite)
	assert.Equal(t, "force", cfg.Queue.PublishMode)
	assert.Equal(t, 7*24*time.Hour, cfg.Identity.SessionLifetime)
}

func TestApplyEnvOnlyFalseDisables(t *testing.T) {
	cfg := Default()
	env := map[string]string{"ALLOW_ANY_ORIGIN": "0", "COOKIE_SECURE": "false"}
	require.NoError(t, applyEnv(cfg, func(k string) (string, bool) { v, ok := env[k]; return v, ok }))

	assert.True(t, cfg.Server.AllowAnyOrigin)
	assert.False(t, cfg.Cookies.Secure)
}

func TestValidateReportsProblems(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "postgres"
	cfg.Cookies.SameSite = "sometimes"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")
	assert.Contains(t, err.Error(), "api_key")
	assert.Contains(t, err.Error(), "postgres driver")
	assert.Contains(t, err.Error(), "same_site")
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("FIREBASE_WEB_API_KEY", "k")
	t.Setenv("FIREBASE_PROJECT_ID", "p")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
}
