package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Issuer:              "hospital-auth",
		Algorithm:           "HS256",
		AccessSecret:        []byte(strings.Repeat("a", 32)),
		RefreshSecret:       []byte(strings.Repeat("r", 32)),
		AccessTTL:           15 * time.Minute,
		RefreshTTL:          7 * 24 * time.Hour,
		UserLookupTimeout:   2 * time.Second,
		DatabaseDriver:      DriverSQLite,
		DatabaseFile:        "auth.db",
		Port:                8080,
		ShutdownGracePeriod: 10 * time.Second,
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"AUTH_ISSUER", "AUTH_ALGORITHM", "AUTH_ACCESS_TTL", "AUTH_REFRESH_TTL", "AUTH_DATABASE_DRIVER", "PORT"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "hospital-auth", cfg.Issuer)
	require.Equal(t, "HS256", cfg.Algorithm)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 2*time.Second, cfg.UserLookupTimeout)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_ALGORITHM", "EdDSA")
	t.Setenv("AUTH_ACCESS_TTL", "5m")
	t.Setenv("AUTH_REFRESH_TTL", "90") // minutes
	t.Setenv("AUTH_DATABASE_DRIVER", "postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://auth@db/auth")
	t.Setenv("AUTH_BOOTSTRAP_EMAIL", "admin@example.org")
	t.Setenv("AUTH_BOOTSTRAP_PASSWORD", "admin123")
	t.Setenv("PORT", "not-a-number")

	cfg := LoadConfig()
	require.Equal(t, "EdDSA", cfg.Algorithm)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 90*time.Minute, cfg.RefreshTTL)
	require.Equal(t, "postgres://auth@db/auth", cfg.DatabaseURL)
	require.True(t, cfg.Bootstrap.Enabled())
	require.Equal(t, 8080, cfg.Port)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"short access secret", func(c *Config) { c.AccessSecret = []byte("short") }, "AUTH_ACCESS_SECRET"},
		{"shared secret", func(c *Config) { c.RefreshSecret = c.AccessSecret }, "must differ"},
		{"unknown algorithm", func(c *Config) { c.Algorithm = "RS256" }, "not supported"},
		{"access outlives refresh", func(c *Config) { c.AccessTTL = 8 * 24 * time.Hour }, "must not exceed"},
		{"zero ttl", func(c *Config) { c.RefreshTTL = 0 }, "must be positive"},
		{"no lookup timeout", func(c *Config) { c.UserLookupTimeout = 0 }, "AUTH_USER_LOOKUP_TIMEOUT"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "AUTH_DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "AUTH_DATABASE_DRIVER"},
		{"bootstrap without password", func(c *Config) { c.Bootstrap.Email = "a@b.org" }, "AUTH_BOOTSTRAP_PASSWORD"},
		{"same key files", func(c *Config) {
			c.Algorithm = "EdDSA"
			c.AccessKeyFile, c.RefreshKeyFile = "k.pem", "k.pem"
		}, "must differ"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
