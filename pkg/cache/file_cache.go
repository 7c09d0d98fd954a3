package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// fileEntry, diskteki JSON kaydıdır.
type fileEntry struct {
	Value     []byte `json:"value"`
	ExpiresAt int64  `json:"expires_at"` // unix saniye, 0 = süresiz
}

// FileCache, her key'i dizin altında ayrı bir dosyada tutar. Dosya adı
// key'in BLAKE2b özetidir; ilk iki karakter alt dizin olur.
// Süresi geçen kayıtlar okunurken silinir.
type FileCache struct {
	dir    string
	logger *log.Logger
	mu     sync.RWMutex
}

func NewFileCache(dir string, logger *log.Logger) (*FileCache, error) {
	if dir == "" {
		return nil, errors.New("file cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logf(logger, "❌ Cache dizini oluşturma hatası [%s]: %v", dir, err)
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	logf(logger, "✅ File cache başlatıldı: %s", dir)
	return &FileCache{dir: dir, logger: logger}, nil
}

func (f *FileCache) path(key string) string {
	sum := blake2b.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(f.dir, name[:2], name)
}

func (f *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := f.path(key)

	f.mu.RLock()
	data, err := os.ReadFile(path)
	f.mu.RUnlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		logf(f.logger, "❌ File cache okuma hatası [%s]: %v", key, err)
		return nil, false, fmt.Errorf("file cache read failed: %w", err)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil || (entry.ExpiresAt > 0 && time.Now().Unix() > entry.ExpiresAt) {
		f.mu.Lock()
		os.Remove(path)
		f.mu.Unlock()
		return nil, false, nil
	}

	return entry.Value, true, nil
}

func (f *FileCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := fileEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl).Unix()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("file cache encode failed: %w", err)
	}

	path := f.path(key)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file cache mkdir failed: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logf(f.logger, "❌ File cache yazma hatası [%s]: %v", key, err)
		return fmt.Errorf("file cache write failed: %w", err)
	}
	return os.Rename(tmp, path)
}

func (f *FileCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("file cache delete failed: %w", err)
	}
	return nil
}

func (f *FileCache) Flush(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("file cache flush failed: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(f.dir, e.Name())); err != nil {
			return fmt.Errorf("file cache flush failed: %w", err)
		}
	}

	logf(f.logger, "⚠️  File cache temizlendi: %s", f.dir)
	return nil
}
