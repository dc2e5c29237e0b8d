package media

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/shopadmin/shop-admin/internal/config"
)

// ErrCloudinary wraps error messages returned in cloudinary responses.
var ErrCloudinary = errors.New("cloudinary")

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStore uploads to a Cloudinary account.
type CloudinaryStore struct {
	api     uploadAPI
	folder  string
	maxSize int64
}

// NewCloudinaryStore creates a store from the media.cloudinary credentials.
func NewCloudinaryStore(cfg config.Media) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &CloudinaryStore{api: &cld.Upload, folder: cfg.Cloudinary.Folder, maxSize: cfg.MaxFileSize}, nil
}

// Save uploads the file into <folder>/<folder argument>.
func (s *CloudinaryStore) Save(ctx context.Context, fh *multipart.FileHeader, folder string) (Object, error) {
	if err := check(fh, s.maxSize); err != nil {
		return Object{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return Object{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	base := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))

	res, err := s.api.Upload(ctx, src, uploader.UploadParams{
		Folder:   strings.Trim(s.folder+"/"+folder, "/"),
		PublicID: uuid.NewString() + "-" + base,
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload: %w", err)
	}

	if res.Error.Message != "" {
		return Object{}, fmt.Errorf("%w: %s", ErrCloudinary, res.Error.Message)
	}

	return Object{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Delete destroys the asset.
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}

	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy %s: %w", publicID, err)
	}

	if res.Error.Message != "" {
		return fmt.Errorf("%w: %s", ErrCloudinary, res.Error.Message)
	}

	return nil
}
