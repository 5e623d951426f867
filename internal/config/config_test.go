package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeYAML(t, `
server:
  env: production
  port: 9000
  base_url: https://wiki.example.com
database:
  driver: mysql
  dsn: user:pass@tcp(db:3306)/wiki
jwt:
  secret: yaml-secret-yaml-secret-yaml-secret-1234
`)
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "host=pg dbname=wiki")
	t.Setenv("SETTINGS_ENCRYPTION_KEY", "abcd")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://wiki.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=pg dbname=wiki", cfg.Database.DSN)
	assert.Equal(t, "abcd", cfg.Security.SettingsEncryptionKey)
	assert.False(t, cfg.IsDevelopment())
	// defaults survive when neither YAML nor env set them
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate_ProductionNeedsStrongSecret(t *testing.T) {
	cfg := Default()
	cfg.Server.Env = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "short"
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "a-very-long-production-secret-value-123"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestCORSOrigins(t *testing.T) {
	c := CORSConfig{AllowOrigins: "https://a.example.com, https://b.example.com,,"}
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, c.Origins())
}
