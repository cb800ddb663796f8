package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "whattocook", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "./HowToCook", cfg.Corpus.Dir)
	assert.False(t, cfg.Corpus.UseRemote())
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "whattocook_data", cfg.Storage.Key)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.InDelta(t, 100.0/60.0, cfg.RateLimit.PerSecond(), 1e-9)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("CORPUS_DIR", "/data/recipes")
	t.Setenv("APP_CORPUS_WATCH", "true")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_RATE_LIMIT_WINDOW", "10s")

	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/data/recipes", cfg.Corpus.Dir)
	assert.True(t, cfg.Corpus.Watch)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: 8080, MaxBodyBytes: 1024},
			Corpus:    CorpusConfig{Dir: "./recipes"},
			Storage:   StorageConfig{Driver: StorageMemory},
			RateLimit: RateLimitConfig{Enabled: true, Requests: 10, Window: time.Minute},
		}
	}
	require.NoError(t, validateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"body size", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"no corpus", func(c *Config) { c.Corpus.Dir = "" }},
		{"remote timeout", func(c *Config) { c.Corpus.RemoteBaseURL = "http://x" }},
		{"driver", func(c *Config) { c.Storage.Driver = "etcd" }},
		{"redis addr", func(c *Config) { c.Storage.Driver = StorageRedis }},
		{"ttl", func(c *Config) { c.Storage.TTL = -time.Second }},
		{"rate requests", func(c *Config) { c.RateLimit.Requests = 0 }},
		{"rate window", func(c *Config) { c.RateLimit.Window = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}
