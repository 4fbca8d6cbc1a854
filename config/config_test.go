package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "timetable.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Engine.StrictOwnership)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, ":8080", cfg.Addr())

	d, err := cfg.ShutdownTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = cfg.FlushInterval()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	// GIVEN: A YAML file setting port, db and strict ownership
	// AND: LOG_LEVEL and SERVER_PORT in the environment
	// WHEN: Loading
	// THEN: YAML values apply and the environment wins where set
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
database:
  path: /var/lib/timetable.db
engine:
  strict_ownership: true
cors:
  allowed_origins: ["http://localhost:3000"]
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_FLUSH_INTERVAL", "0")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "/var/lib/timetable.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Engine.StrictOwnership)
	assert.Equal(t, "0", cfg.Database.FlushInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_DotEnv(t *testing.T) {
	dotenv := writeFile(t, ".env", "CORS_ALLOWED_ORIGINS=http://a.test,http://b.test\nLOG_PRETTY=true\n")
	// Registers cleanup for the variables godotenv sets
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("LOG_PRETTY", "")
	require.NoError(t, os.Unsetenv("CORS_ALLOWED_ORIGINS"))
	require.NoError(t, os.Unsetenv("LOG_PRETTY"))

	cfg, err := Load("", dotenv)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Logging.Pretty)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: \"abc\"\n"},
		{"port out of range", "server:\n  port: \"70000\"\n"},
		{"bad timeout", "server:\n  shutdown_timeout: soon\n"},
		{"empty db", "database:\n  path: \"\"\n"},
		{"bad flush interval", "database:\n  flush_interval: often\n"},
		{"negative flush interval", "database:\n  flush_interval: -1s\n"},
		{"unknown level", "logging:\n  level: chatty\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml), "")
			assert.Error(t, err)
		})
	}
}
