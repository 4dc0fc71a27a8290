// Package imagestore persists uploaded listing images on disk.
package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the path under which stored images are served.
const URLPrefix = "/uploads"

// StorageError reports a failed image write.
type StorageError struct {
	Filename string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storing image %q: %v", e.Filename, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store writes uploaded images into a directory under generated names.
type Store struct {
	dir string
}

// New creates an image store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string { return s.dir }

// Store writes the payload under a generated collision-resistant name and
// returns the URL path a static file server can resolve, e.g.
// /uploads/1712345678901234567-d1f3a2b4.jpg.
func (s *Store) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StorageError{Filename: filename, Err: err}
	}

	name := generateName(filename)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &StorageError{Filename: filename, Err: err}
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", &StorageError{Filename: filename, Err: err}
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", &StorageError{Filename: filename, Err: err}
	}

	return path.Join(URLPrefix, name), nil
}

// Remove deletes a previously stored image by its URL path.
// Missing files are not an error; callers use this for cleanup.
func (s *Store) Remove(urlPath string) error {
	name := path.Base(urlPath)
	if name == "." || name == "/" || name == ".." {
		return fmt.Errorf("invalid image path %q", urlPath)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image %s: %w", name, err)
	}
	return nil
}

// generateName builds a unique file name from a timestamp and a random
// suffix, preserving the original extension.
func generateName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), suffix, ext)
}
