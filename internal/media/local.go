package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where the web server mounts the upload directory.
const URLPrefix = "uploads"

// LocalStore writes uploads below a directory served under /uploads.
type LocalStore struct {
	dir     string
	maxSize int64
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(dir string, maxSize int64) *LocalStore {
	return &LocalStore{dir: dir, maxSize: maxSize}
}

// Dir is the root directory of the store.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save copies the upload to <dir>/<folder>/<uuid><ext>.
func (s *LocalStore) Save(_ context.Context, fh *multipart.FileHeader, folder string) (Object, error) {
	if err := check(fh, s.maxSize); err != nil {
		return Object{}, err
	}

	folder = filepath.Clean("/" + folder)[1:]
	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	rel := path.Join(folder, name)

	if err := os.MkdirAll(filepath.Join(s.dir, folder), 0o750); err != nil { //nolint:mnd
		return Object{}, fmt.Errorf("failed to create upload dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return Object{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return Object{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return Object{}, fmt.Errorf("failed to write file: %w", err)
	}

	return Object{URL: path.Join(URLPrefix, rel), PublicID: rel}, nil
}

// Delete removes a stored file. Unknown files are not an error.
func (s *LocalStore) Delete(_ context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	clean := filepath.Clean("/" + publicID)[1:]
	if clean == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
