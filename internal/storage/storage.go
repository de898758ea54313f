// Package storage uploads generated documents (invoice PDFs) to blob storage
// and returns the URL they can be downloaded from.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty, absolute, or escape the
// store root.
var ErrInvalidKey = errors.New("invalid object key")

// Object is one blob to upload.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
}

// BlobStore persists objects and reports their public URL.
type BlobStore interface {
	Put(ctx context.Context, obj Object) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// cleanKey validates key and returns it in canonical slash form.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
