package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "jwt:\n  secret: test-secret\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "osas", cfg.Database.DBName)
	assert.Equal(t, "osas.app", cfg.JWT.Issuer)
	assert.Equal(t, "5m", cfg.Violations.DuplicateWindow)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigYAMLOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
jwt:
  secret: test-secret
violations:
  duplicate_window: 10m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.DuplicateWindow())
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("JWT_SECRET", "env-secret")

	path := writeConfigFile(t, "server:\n  port: \"9090\"\njwt:\n  secret: file-secret\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: \"9090\"\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadDurations(t *testing.T) {
	path := writeConfigFile(t, "jwt:\n  secret: s\n  access_token_expiration: soon\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDuplicateWindowFallsBackOnBadValue(t *testing.T) {
	cfg := &Config{}
	cfg.Violations.DuplicateWindow = "garbage"
	assert.Equal(t, 5*time.Minute, cfg.DuplicateWindow())
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := &Config{}
	cfg.Database.User = "osas"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "db.local"
	cfg.Database.Port = "5432"
	cfg.Database.DBName = "osas"

	assert.Equal(t, "postgres://osas:pw@db.local:5432/osas?sslmode=disable", cfg.GetPostgresConnectionString())
}
