package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "-", cfg.Query.Separator)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  dsn: ":memory:"
cache:
  driver: file
  file_dir: /tmp/specsql
  ttl: 30s
query:
  separator: "."
`), 0o644))

	t.Setenv("SPECSQL_CACHE_TTL", "1m")
	t.Setenv("SPECSQL_REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "file", cfg.Cache.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.TTL, "env overrides file")
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, ".", cfg.Query.Separator)

	assert.Equal(t, 25, cfg.PoolConfig().MaxOpenConns)
	cc := cfg.CacheConfig()
	assert.Equal(t, "/tmp/specsql", cc.FileDir)
	assert.Equal(t, 3, cc.Redis.DB)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Database.Driver = "postgres"
		c.Cache.Driver = "redis"
		c.Query.Separator = "-"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, true},
		{"file driver without dir", func(c *Config) { c.Cache.Driver = "file" }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, true},
		{"empty separator", func(c *Config) { c.Query.Separator = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
