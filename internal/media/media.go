// Package media stores uploaded images on local disk or on Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/shopadmin/shop-admin/internal/config"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds media.maxFileSize.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedType is returned for extensions outside allowedExtensions.
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedExtensions = map[string]struct{}{ //nolint:gochecknoglobals
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".svg":  {},
	".webp": {},
	".ico":  {},
}

// Object is a stored file. URL is absolute for remote stores and relative to
// the server for the local store. PublicID is what Delete takes.
type Object struct {
	URL      string
	PublicID string
}

// Store persists uploads.
type Store interface {
	Save(ctx context.Context, fh *multipart.FileHeader, folder string) (Object, error)
	Delete(ctx context.Context, publicID string) error
}

// New returns the store selected by media.driver.
func New(cfg config.Media) (Store, error) {
	switch cfg.Driver {
	case config.MediaDriverCloudinary:
		return NewCloudinaryStore(cfg)
	case config.MediaDriverLocal, "":
		return NewLocalStore(cfg.UploadDir, cfg.MaxFileSize), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownMediaDriver, cfg.Driver)
	}
}

func check(fh *multipart.FileHeader, maxSize int64) error {
	if maxSize > 0 && fh.Size > maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, fh.Size, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	return nil
}
