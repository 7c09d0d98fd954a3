package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drivers(t *testing.T) map[string]Cache {
	t.Helper()

	file, err := NewFileCache(t.TempDir(), nil)
	require.NoError(t, err)

	return map[string]Cache{
		"memory": NewMemoryCache(nil),
		"file":   file,
	}
}

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := c.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, c.Set(ctx, "k", []byte(`{"sql":"SELECT 1"}`), 0))

			got, ok, err := c.Get(ctx, "k")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `{"sql":"SELECT 1"}`, string(got))

			require.NoError(t, c.Delete(ctx, "k"))
			_, ok, err = c.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, c.Delete(ctx, "k"), "deleting a missing key is not an error")
		})
	}
}

func TestCache_Flush(t *testing.T) {
	ctx := context.Background()

	for name, c := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
			require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))

			require.NoError(t, c.Flush(ctx))

			for _, key := range []string{"a", "b"} {
				_, ok, err := c.Get(ctx, key)
				require.NoError(t, err)
				assert.False(t, ok, key)
			}
		})
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	c := NewMemoryCache(nil)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("y"), 0))
	assert.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Minute)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(nil)

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestNew(t *testing.T) {
	c, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(Config{Driver: "file", FileDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileCache{}, c)

	_, err = New(Config{Driver: "file"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Driver: "memcached"}, nil)
	assert.Error(t, err)
}
