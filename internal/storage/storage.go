// Package storage holds the blob stores used for uploaded images.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyPrefix is the directory every uploaded blob lives under.
const KeyPrefix = "uploads"

// ErrNotExist is returned by Open for a missing path.
var ErrNotExist = errors.New("blob does not exist")

// Object describes one stored blob.
type Object struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Store is an opaque blob store addressed by path.
// Delete must be idempotent: removing a missing path is not an error.
type Store interface {
	Put(ctx context.Context, p string, data []byte, contentType string) error
	Delete(ctx context.Context, p string) error
	Exists(ctx context.Context, p string) (bool, error)
	Open(ctx context.Context, p string) (io.ReadCloser, error)
	List(ctx context.Context) ([]Object, error)
}

// UploadPath returns a fresh path for one upload, keeping the lower-cased
// extension of the uploaded file name. Every row owns the blob at its path.
func UploadPath(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return KeyPrefix + "/" + uuid.NewString() + ext
}

// CleanPath rejects traversal and absolute paths and returns the normalized key.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "", errors.New("empty blob path")
	}
	cleaned := path.Clean(p)
	if cleaned != p || strings.HasPrefix(p, "/") || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("invalid blob path: " + p)
	}
	return cleaned, nil
}
