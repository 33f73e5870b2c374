package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "recipe-planner", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.True(t, cfg.Auth.AllowHeader)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_STORE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "/tmp/planner.db")
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("APP_RATE_LIMIT_WINDOW", "10s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "super-secret-value")
	t.Setenv("APP_AUTH_ALLOW_HEADER", "false")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/planner.db", cfg.Store.DSN)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "super-secret-value", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Auth.AllowHeader)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"APP_STORE_DRIVER": "mongo"}},
		{"postgres without dsn", map[string]string{"APP_STORE_DRIVER": "postgres"}},
		{"supabase without key", map[string]string{"APP_STORE_DRIVER": "supabase", "SUPABASE_URL": "https://x.supabase.co"}},
		{"bad port", map[string]string{"APP_SERVER_PORT": "70000"}},
		{"no identity source", map[string]string{"APP_AUTH_ALLOW_HEADER": "false"}},
		{"bad rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestSQLiteDefaultPath(t *testing.T) {
	t.Setenv("APP_STORE_DRIVER", "sqlite")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultSQLitePath, cfg.Store.DSN)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "abcd...wxyz", MaskSecret("abcdefghijklmnopqrstuvwxyz"))
}
