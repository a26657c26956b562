package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mechanic-shop", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 5, cfg.RateLimit.Login.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Login.Window)
	assert.Equal(t, 30*time.Second, cfg.Cache.ListTTL)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "2")
	t.Setenv("RATE_LIMIT_LOGIN_WINDOW", "30s")
	t.Setenv("CACHE_LIST_TTL", "not-a-duration")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Login.Window)
	assert.Equal(t, 30*time.Second, cfg.Cache.ListTTL)
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.Auth.JWTSecret = " " }, wantErr: true},
		{name: "dev secret in production", mutate: func(c *Config) { c.App.Env = "production" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Auth.TokenTTLHours = 0 }, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				App:  AppConfig{Env: "development"},
				Auth: AuthConfig{JWTSecret: "dev-secret", TokenTTLHours: 24},
			}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
