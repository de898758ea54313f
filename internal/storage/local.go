package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// LocalStore writes objects under a directory on disk. Handler serves them
// back at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates root if needed and returns a store on it.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewLocalStore: %w", err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Put writes obj to disk and returns its URL.
func (l *LocalStore) Put(_ context.Context, obj Object) (string, error) {
	key, err := cleanKey(obj.Key)
	if err != nil {
		return "", fmt.Errorf("storage.LocalStore.Put: %w", err)
	}
	path := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("storage.LocalStore.Put: %w", err)
	}
	if err := os.WriteFile(path, obj.Body, 0o644); err != nil {
		return "", fmt.Errorf("storage.LocalStore.Put: %w", err)
	}
	return joinURL(l.baseURL, key), nil
}

// Delete removes key. Deleting a missing key is not an error.
func (l *LocalStore) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return fmt.Errorf("storage.LocalStore.Delete: %w", err)
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage.LocalStore.Delete: %w", err)
	}
	return nil
}

// Handler serves stored objects read-only. Mount it with the URL prefix
// stripped.
func (l *LocalStore) Handler() http.Handler {
	return http.FileServer(http.Dir(l.root))
}
