package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "telar.events", cfg.Events.Topic)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("CACHE_TTL", "30s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Driver: "mongo"},
		Cache:   CacheConfig{Driver: "noop"},
		Events:  EventsConfig{Driver: "noop"},
		JWT:     JWTConfig{Expiration: 60},
	}
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_DRIVER")

	cfg.Storage.Driver = "memory"
	assert.NoError(t, cfg.Validate())

	cfg.App.Env = "production"
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")
}

func TestDBConfig_DSNEscapesPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/w", DBName: "telar", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fw@db:5432/telar?sslmode=disable", c.ConnectionString())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
