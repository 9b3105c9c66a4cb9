package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_USER", "padel")
	t.Setenv("DB_NAME", "padel")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 5, cfg.Auth.SignInAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Auth.RefreshSweepInterval)
	assert.False(t, cfg.Auth.RequireEmailConfirmation)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "6543", cfg.Postgres.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Redis.TLS)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Contains(t, cfg.Postgres.DSN(), "host=db.internal")
	assert.Contains(t, cfg.Postgres.DSN(), "port=6543")
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "padel.yaml")
	content := []byte("auth:\n  sign_in_attempts: 9\n  access_token_ttl: 15m\noauth:\n  github:\n    client_id: gh\n    client_secret: shh\n")
	require.NoError(t, os.WriteFile(path, content, 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Auth.SignInAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.True(t, cfg.OAuth.GitHub.Enabled())
	assert.False(t, cfg.OAuth.Google.Enabled())
}

func TestLoad_MissingFile(t *testing.T) {
	setRequiredEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Postgres: PostgresConfig{User: "u", Name: "n"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Auth: AuthConfig{
			JWTSecret:       "s",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			SignInAttempts:  3,
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"missing db user", func(c *Config) { c.Postgres.User = "" }},
		{"missing redis", func(c *Config) { c.Redis.Addr = "" }},
		{"zero ttl", func(c *Config) { c.Auth.AccessTokenTTL = 0 }},
		{"zero attempts", func(c *Config) { c.Auth.SignInAttempts = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
