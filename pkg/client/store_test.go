package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()

	t.Run("missing key is empty, not an error", func(t *testing.T) {
		value, err := store.Get("nope")
		assert.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("set and get round trip", func(t *testing.T) {
		require.NoError(t, store.Set(StoreKeyToken, "tok"))

		value, err := store.Get(StoreKeyToken)
		require.NoError(t, err)
		assert.Equal(t, "tok", value)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		require.NoError(t, store.Set("temp", "x"))
		require.NoError(t, store.Delete("temp"))

		value, err := store.Get("temp")
		assert.NoError(t, err)
		assert.Empty(t, value)
	})
}

func TestFileTokenStore(t *testing.T) {
	newStore := func(t *testing.T) (*FileTokenStore, string) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "sub", "session.json")
		store, err := NewFileTokenStore(path)
		require.NoError(t, err)
		return store, path
	}

	t.Run("creates parent directories", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Set(StoreKeyToken, "tok"))

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("missing file reads as empty", func(t *testing.T) {
		store, _ := newStore(t)

		value, err := store.Get(StoreKeyToken)
		assert.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("values survive reopening", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Set(StoreKeyToken, "tok"))
		require.NoError(t, store.Set(StoreKeyPermissionsGranted, "true"))

		reopened, err := NewFileTokenStore(path)
		require.NoError(t, err)

		value, err := reopened.Get(StoreKeyToken)
		require.NoError(t, err)
		assert.Equal(t, "tok", value)

		granted, err := reopened.Get(StoreKeyPermissionsGranted)
		require.NoError(t, err)
		assert.Equal(t, "true", granted)
	})

	t.Run("session file is user-only", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Set(StoreKeyToken, "tok"))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("corrupt file starts fresh", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		value, err := store.Get(StoreKeyToken)
		assert.NoError(t, err)
		assert.Empty(t, value)

		// A write replaces the corrupt content with a valid store.
		require.NoError(t, store.Set(StoreKeyToken, "recovered"))
		value, err = store.Get(StoreKeyToken)
		require.NoError(t, err)
		assert.Equal(t, "recovered", value)
	})

	t.Run("delete of missing key is a no-op", func(t *testing.T) {
		store, path := newStore(t)
		require.NoError(t, store.Delete("nope"))

		// No file should have been written for a no-op delete.
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})
}
