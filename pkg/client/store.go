package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys the client persists between runs. All are best-effort
// caches; the backend remains authoritative.
const (
	StoreKeyToken              = "access_token"
	StoreKeyPermissions        = "socialMediaPermissions"
	StoreKeyPermissionsGranted = "permissionsGranted"
)

// TokenStore is durable key/value storage for session state.
// Implementations must treat a missing key as ("", nil), not an error.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryTokenStore keeps session state in process memory only.
// The default when no file store is configured; useful in tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]string)}
}

func (s *MemoryTokenStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *MemoryTokenStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryTokenStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileTokenStore persists session state as a JSON object in a single file.
// Reads and writes go to disk on every call; the amount of data is tiny and
// this keeps concurrent processes from trampling each other's writes more
// than necessary.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a file-backed store at path, creating parent
// directories as needed.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileTokenStore{path: path}, nil
}

// DefaultStorePath returns the session file location under the user config
// directory, typically ~/.config/osintctl/session.json.
func DefaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "osintctl", "session.json"), nil
}

func (s *FileTokenStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *FileTokenStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *FileTokenStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *FileTokenStore) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read session store: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(raw, &values); err != nil {
		// Corrupt store; start fresh rather than locking the user out
		return make(map[string]string), nil
	}
	return values, nil
}

func (s *FileTokenStore) write(values map[string]string) error {
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session store: %w", err)
	}
	return nil
}
