// -----------------------------------------------------------------------------
// Database Connection
// -----------------------------------------------------------------------------
// Derlenen sorguların çalıştırılacağı veritabanına bağlanır. Üç sürücü
// desteklenir ve her biri database/sql'e kendini kaydeder:
//
//   - mysql:    github.com/go-sql-driver/mysql
//   - postgres: github.com/jackc/pgx/v5/stdlib (sürücü adı "pgx")
//   - sqlite:   modernc.org/sqlite (cgo gerektirmez)
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// PoolConfig, bağlantı havuzu ayarlarıdır.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig, varsayılan havuz ayarlarını döner.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DriverName, lehçe adını database/sql sürücü adına çevirir.
func DriverName(dialect string) (string, error) {
	switch strings.ToLower(dialect) {
	case "mysql", "mariadb":
		return "mysql", nil
	case "postgres", "postgresql", "pgx":
		return "pgx", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database driver: %s", dialect)
}

// Connect, verilen lehçe ve DSN ile bağlanır, havuzu ayarlar ve Ping atar.
// Ping başarısızsa bağlantı kapatılır.
//
// SQLite tek yazıcılı olduğu için havuz tek bağlantıya indirilir; bu
// ":memory:" veritabanının bağlantılar arasında kaybolmasını da engeller.
func Connect(ctx context.Context, dialect, dsn string, pool PoolConfig, logger *log.Logger) (*sql.DB, error) {
	driver, err := DriverName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(pool.MaxOpenConns)
		db.SetMaxIdleConns(pool.MaxIdleConns)
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if logger != nil {
		logger.Printf("Veritabanına bağlanılıyor (%s)...", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if logger != nil {
		logger.Printf("✅ Veritabanı bağlantısı başarılı (%s)", driver)
	}

	return db, nil
}
