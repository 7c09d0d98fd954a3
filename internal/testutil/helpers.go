// -----------------------------------------------------------------------------
// Testing Helpers
// -----------------------------------------------------------------------------
// Paketlerin testlerinde ortak kullanılan yardımcılar:
//
// - SQLite fixture veritabanı (RefreshDatabase, OpenSQLite)
// - Rollback ile biten transaction (DatabaseTransaction)
// - Çağrı sayan cache (MockCache)
//
// Kullanım:
//
//	func TestProducts(t *testing.T) {
//	    db := testutil.RefreshDatabase(t, testutil.ProductCatalog...)
//	    ...
//	}
//
// Bu paket pkg/database'i import etmez; database'in kendi testleri de
// kullanabilsin diye sürücüyü doğrudan açar.
// -----------------------------------------------------------------------------

package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// ProductCatalog, products/types tablolarını kurup dolduran fixture'dır.
//
//	types:    1 book, 2 music
//	products: 1 Dune (book), 2 Kind of Blue (music), 3 Neuromancer (book),
//	          4 Hyperion (book)
var ProductCatalog = []string{
	`CREATE TABLE types (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
	`CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT NOT NULL, type_id INTEGER, price INTEGER)`,
	`INSERT INTO types (id, name) VALUES (1, 'book'), (2, 'music')`,
	`INSERT INTO products (id, name, type_id, price) VALUES
		(1, 'Dune', 1, 12),
		(2, 'Kind of Blue', 2, 20),
		(3, 'Neuromancer', 1, 9),
		(4, 'Hyperion', 1, NULL)`,
}

// RefreshDatabase, her test için boş bir in-memory SQLite açar ve seed
// ifadelerini çalıştırır. Bağlantı test bitince kapanır.
func RefreshDatabase(t *testing.T, seed ...string) *sql.DB {
	t.Helper()
	return OpenSQLite(t, ":memory:", seed...)
}

// OpenSQLite, verilen DSN ile SQLite açar. Dosya DSN'i verilirse veritabanı
// test kapandıktan sonra da okunabilir.
func OpenSQLite(t *testing.T, dsn string, seed ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	// :memory: her bağlantıda ayrı bir veritabanıdır.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range seed {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

// DatabaseTransaction, callback'i bir transaction içinde çalıştırır ve
// sonunda rollback yapar.
//
//	testutil.DatabaseTransaction(t, db, func(tx *sql.Tx) {
//	    // tx üzerinden yapılan değişiklikler test sonunda geri alınır
//	})
func DatabaseTransaction(t *testing.T, db *sql.DB, callback func(*sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, tx.Rollback())
	}()

	callback(tx)
}

// MockCache, çağrıları sayan in-memory cache'tir. TTL'i kaydeder ama
// uygulamaz.
type MockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	TTLs   map[string]time.Duration
	Gets   int
	Hits   int
	Sets   int
	GetErr error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
		TTLs: make(map[string]time.Duration),
	}
}

func (m *MockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Gets++
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.data[key]
	if ok {
		m.Hits++
	}
	return v, ok, nil
}

func (m *MockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Sets++
	m.data[key] = value
	m.TTLs[key] = ttl
	return nil
}

func (m *MockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MockCache) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)
	return nil
}

// Keys, cache'teki key sayısıdır.
func (m *MockCache) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
