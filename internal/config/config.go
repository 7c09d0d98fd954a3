// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// specsql'in merkezi konfigürasyonu. Değerler üç katmandan okunur, sonraki
// öncekini ezer:
//
//  1. SetDefault ile verilen varsayılanlar
//  2. YAML config dosyası (--config veya ./specsql.yaml)
//  3. SPECSQL_ önekli ortam değişkenleri (SPECSQL_DATABASE_DSN → database.dsn)
// -----------------------------------------------------------------------------

package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/biyonik/specquery/pkg/cache"
	"github.com/biyonik/specquery/pkg/database"
)

// EnvPrefix, ortam değişkeni önekidir.
const EnvPrefix = "SPECSQL"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Query    QueryConfig    `mapstructure:"query"`
}

type AppConfig struct {
	Env     string `mapstructure:"env"` // development, production, test
	Verbose bool   `mapstructure:"verbose"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql, postgres, sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Driver  string        `mapstructure:"driver"` // memory, file, redis
	Prefix  string        `mapstructure:"prefix"`
	FileDir string        `mapstructure:"file_dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type QueryConfig struct {
	Separator string `mapstructure:"separator"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.verbose", false)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "root:password@tcp(127.0.0.1:3306)/specsql?parseTime=true")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "specsql:")
	v.SetDefault("cache.file_dir", "./storage/cache")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("query.separator", "-")
}

// Load, konfigürasyonu okur ve doğrular. path boşsa çalışma dizininde
// specsql.yaml aranır; bulunamaması hata değildir.
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("specsql")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate, config değerlerinin geçerliliğini kontrol eder.
func (c *Config) Validate() error {
	if _, err := database.DriverName(c.Database.Driver); err != nil {
		return fmt.Errorf("geçersiz database.driver: %s (mysql, postgres veya sqlite olmalı)", c.Database.Driver)
	}

	validDrivers := map[string]bool{
		"redis":  true,
		"file":   true,
		"memory": true,
	}
	if !validDrivers[c.Cache.Driver] {
		return fmt.Errorf("geçersiz cache.driver: %s (redis, file veya memory olmalı)", c.Cache.Driver)
	}
	if c.Cache.Driver == "file" && c.Cache.FileDir == "" {
		return fmt.Errorf("cache.file_dir file driver için zorunludur")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl negatif olamaz: %s", c.Cache.TTL)
	}
	if c.Query.Separator == "" {
		return fmt.Errorf("query.separator boş olamaz")
	}

	if c.IsProduction() && c.Cache.Driver == "memory" {
		log.Println("⚠️  UYARI: Memory cache production ortamı için önerilmez!")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// PoolConfig, database.Connect için havuz ayarlarını döner.
func (c *Config) PoolConfig() database.PoolConfig {
	return database.PoolConfig{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

// CacheConfig, cache.New için driver ayarlarını döner.
func (c *Config) CacheConfig() cache.Config {
	redisCfg := cache.DefaultRedisConfig()
	redisCfg.Host = c.Redis.Host
	redisCfg.Port = c.Redis.Port
	redisCfg.Password = c.Redis.Password
	redisCfg.DB = c.Redis.DB

	return cache.Config{
		Driver:  c.Cache.Driver,
		Prefix:  c.Cache.Prefix,
		FileDir: c.Cache.FileDir,
		Redis:   redisCfg,
	}
}
