package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, SourceEmbedded, cfg.Catalog.Source)
	assert.Equal(t, 2*time.Hour, cfg.Quiz.TokenTTL)
	assert.Empty(t, cfg.Quiz.TokenSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("CATALOG_SOURCE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/support")
	t.Setenv("QUIZ_TOKEN_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, SourcePostgres, cfg.Catalog.Source)
	assert.Equal(t, "postgres://localhost/support", cfg.Database.URL)
	assert.Equal(t, 30*time.Minute, cfg.Quiz.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("SF_TEST_SECRET", "from-env")
	path := writeConfig(t, `
server:
  port: 8000
  cors_origins:
    - https://hilfe.example.at
log:
  level: debug
quiz:
  token_secret: ${SF_TEST_SECRET}
  token_ttl: 45m
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"https://hilfe.example.at"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from-env", cfg.Quiz.TokenSecret)
	assert.Equal(t, 45*time.Minute, cfg.Quiz.TokenTTL)
}

func TestLoadFromFile_EnvBeatsFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	path := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8081},
			Log:     LogConfig{Level: "info", Format: "text"},
			Catalog: CatalogConfig{Source: SourceEmbedded},
			Quiz:    QuizConfig{TokenTTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"source", func(c *Config) { c.Catalog.Source = "s3" }, "catalog.source"},
		{"postgres needs url", func(c *Config) { c.Catalog.Source = SourcePostgres }, "database.url"},
		{"ttl", func(c *Config) { c.Quiz.TokenTTL = 0 }, "quiz.token_ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
