// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Derlenmiş sorgular (SQL + parametreler) için byte tabanlı cache.
//
// Driver'lar: memory, file, redis. Değerler driver'a opak byte dizisi olarak
// verilir; serileştirme çağıranın işidir. Bu sayede her driver aynı
// içeriği birebir geri döner.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Cache, tüm cache driver'ların implement ettiği interface'tir.
//
//	var c Cache = NewMemoryCache(logger)
//	_ = c.Set(ctx, "products:ab12", data, 10*time.Minute)
type Cache interface {
	// Get, key'in değerini döner. Bulunamazsa (nil, false, nil) döner;
	// cache miss hata değildir.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set, değeri yazar. ttl = 0 süresiz demektir.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, key'i siler. Key yoksa hata vermez.
	Delete(ctx context.Context, key string) error

	// Flush, driver'ın kendi namespace'indeki tüm key'leri siler.
	Flush(ctx context.Context) error
}

// Config, driver seçimi için gereken ayarlardır.
type Config struct {
	Driver  string // memory, file, redis
	Prefix  string // redis key prefix
	FileDir string // file driver dizini
	Redis   *RedisConfig
}

// New, Config'e göre bir driver oluşturur.
func New(cfg Config, logger *log.Logger) (Cache, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryCache(logger), nil
	case "file":
		fc, err := NewFileCache(cfg.FileDir, logger)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case "redis":
		client, err := NewRedisClient(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisCache(client, logger, cfg.Prefix), nil
	}
	return nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
}

func logf(logger *log.Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
