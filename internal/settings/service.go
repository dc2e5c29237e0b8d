// Package settings manages the singleton configuration rows. Every row is
// created with defaults the first time it is read.
package settings

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/controller/preset"
	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/media"
	"github.com/shopadmin/shop-admin/internal/validation"
)

const (
	globalCacheKey  = "global_settings"
	defaultCacheTTL = 5 * time.Minute
	mediaFolder     = "site"
)

var (
	// ErrIDRequired is returned when an update does not name the row.
	ErrIDRequired = errors.New("ID is required")
	// ErrGlobalSettingsNotFound is returned when an update names an unknown row.
	ErrGlobalSettingsNotFound = errors.New("Global settings not found")
	// ErrContactNotFound is returned when an update names an unknown row.
	ErrContactNotFound = errors.New("Contact information not found")
	// ErrSocialNotFound is returned when an update names an unknown row.
	ErrSocialNotFound = errors.New("Social network not found")
	// ErrSiteNotFound is returned when an update names an unknown row.
	ErrSiteNotFound = errors.New("Site configuration not found")
	// ErrTrackingNotFound is returned when an update names an unknown row.
	ErrTrackingNotFound = errors.New("Tracking IDs not found")
)

// Service reads and writes the settings rows.
type Service struct {
	db       *gorm.DB
	media    media.Store
	validate *validator.Validate
	cache    *cache.Cache

	mu        sync.RWMutex
	listeners []func(models.GlobalSettings)
}

// New creates the settings service. store may be nil when no uploads are expected.
func New(db *gorm.DB, store media.Store) *Service {
	return &Service{
		db:       db,
		media:    store,
		validate: validation.New(),
		cache:    cache.New(defaultCacheTTL, 2*defaultCacheTTL),
	}
}

// OnGlobalChange registers fn to run after every global settings update.
func (s *Service) OnGlobalChange(fn func(models.GlobalSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *Service) check(id uint64, in any) error {
	if id == 0 {
		return ErrIDRequired
	}

	return validation.Struct(s.validate, in)
}

func getOrCreate[T any](ctx context.Context, db *gorm.DB, def func() T) (*T, error) {
	var row T

	err := db.WithContext(ctx).Order("id desc").First(&row).Error
	if err == nil {
		return &row, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row = def()
	if err = db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create default row: %w", err)
	}

	return &row, nil
}

// update loads the row with id, lets apply change it and saves every column.
func update[T any](ctx context.Context, db *gorm.DB, id uint64, notFound error, apply func(*T)) (*T, error) {
	var row T

	err := db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}

	if err != nil {
		return nil, err
	}

	apply(&row)

	if err = db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

// Global returns the global settings. They are read on every request, so
// they are cached unless caching is switched off in the row itself.
func (s *Service) Global(ctx context.Context) (*models.GlobalSettings, error) {
	if v, ok := s.cache.Get(globalCacheKey); ok {
		gs := v.(models.GlobalSettings) //nolint:forcetypeassert

		return &gs, nil
	}

	gs, err := getOrCreate(ctx, s.db, models.DefaultGlobalSettings)
	if err != nil {
		return nil, err
	}

	if gs.EnableCaching {
		s.cache.SetDefault(globalCacheKey, *gs)
	}

	return gs, nil
}

// UpdateGlobal validates and stores the global settings, then notifies listeners.
func (s *Service) UpdateGlobal(ctx context.Context, in GlobalSettingsInput) (*models.GlobalSettings, error) {
	if err := s.check(in.ID, in); err != nil {
		return nil, err
	}

	gs, err := update(ctx, s.db, in.ID, ErrGlobalSettingsNotFound, in.apply)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(globalCacheKey)

	s.mu.RLock()
	listeners := append([]func(models.GlobalSettings){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(*gs)
	}

	log.Info().Uint64("id", gs.ID).Str("backupFrequency", gs.BackupFrequency).
		Bool("enableAutoBackups", gs.EnableAutoBackups).Msg("global settings updated")

	return gs, nil
}

// Contact returns the contact information.
func (s *Service) Contact(ctx context.Context) (*models.ContactInformation, error) {
	return getOrCreate(ctx, s.db, models.DefaultContactInformation)
}

// UpdateContact stores the contact information.
func (s *Service) UpdateContact(ctx context.Context, in ContactInput) (*models.ContactInformation, error) {
	if err := s.check(in.ID, in); err != nil {
		return nil, err
	}

	return update(ctx, s.db, in.ID, ErrContactNotFound, in.apply)
}

// Social returns the social network links.
func (s *Service) Social(ctx context.Context) (*models.SocialNetwork, error) {
	return getOrCreate(ctx, s.db, func() models.SocialNetwork { return models.SocialNetwork{} })
}

// UpdateSocial stores the social network links, every non-empty link must be an http(s) URL.
func (s *Service) UpdateSocial(ctx context.Context, in SocialInput) (*models.SocialNetwork, error) {
	if err := s.check(in.ID, in); err != nil {
		return nil, err
	}

	return update(ctx, s.db, in.ID, ErrSocialNotFound, in.apply)
}

// Site returns the site configuration.
func (s *Service) Site(ctx context.Context) (*models.SiteConfiguration, error) {
	return getOrCreate(ctx, s.db, models.DefaultSiteConfiguration)
}

// SiteFiles are the optional uploads of a site configuration update.
type SiteFiles struct {
	Logo    *multipart.FileHeader
	Favicon *multipart.FileHeader
}

// UpdateSite stores the site configuration. New logo or favicon files replace
// the stored ones, the old assets are removed after the row is saved.
func (s *Service) UpdateSite(ctx context.Context, in SiteInput, files SiteFiles) (*models.SiteConfiguration, error) {
	if err := s.check(in.ID, in); err != nil {
		return nil, err
	}

	existing := models.SiteConfiguration{}
	if err := s.db.WithContext(ctx).First(&existing, in.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}

		return nil, err
	}

	var (
		logo, favicon *media.Object
		stale         []string
	)

	if files.Logo != nil {
		obj, err := s.store(ctx, files.Logo)
		if err != nil {
			return nil, err
		}

		logo = &obj
		stale = append(stale, existing.LogoPublicID)
	}

	if files.Favicon != nil {
		obj, err := s.store(ctx, files.Favicon)
		if err != nil {
			return nil, err
		}

		favicon = &obj
		stale = append(stale, existing.FaviconPublicID)
	}

	site, err := update(ctx, s.db, in.ID, ErrSiteNotFound, func(row *models.SiteConfiguration) {
		in.apply(row)

		if logo != nil {
			row.Logo, row.LogoPublicID = logo.URL, logo.PublicID
		}

		if favicon != nil {
			row.Favicon, row.FaviconPublicID = favicon.URL, favicon.PublicID
		}
	})
	if err != nil {
		return nil, err
	}

	for _, id := range stale {
		if errDel := s.media.Delete(ctx, id); errDel != nil {
			log.Warn().Err(errDel).Str("publicId", id).Msg("failed to delete replaced site asset")
		}
	}

	return site, nil
}

func (s *Service) store(ctx context.Context, fh *multipart.FileHeader) (media.Object, error) {
	if s.media == nil {
		return media.Object{}, errors.New("no media store configured")
	}

	return s.media.Save(ctx, fh, mediaFolder)
}

// Tracking returns the analytics ids.
func (s *Service) Tracking(ctx context.Context) (*models.TrackingIDs, error) {
	return getOrCreate(ctx, s.db, models.DefaultTrackingIDs)
}

// UpdateTracking stores the analytics ids.
func (s *Service) UpdateTracking(ctx context.Context, in TrackingInput) (*models.TrackingIDs, error) {
	if err := s.check(in.ID, in); err != nil {
		return nil, err
	}

	return update(ctx, s.db, in.ID, ErrTrackingNotFound, in.apply)
}

// Colors returns the storefront palette.
func (s *Service) Colors(ctx context.Context) (*preset.ColorConfig, error) {
	c := &preset.ColorConfig{}

	return c, c.Load(s.db.WithContext(ctx))
}

// UpdateColors stores the storefront palette.
func (s *Service) UpdateColors(ctx context.Context, in preset.ColorConfig) (*preset.ColorConfig, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	return &in, in.Save(s.db.WithContext(ctx))
}

// Versions returns the selected page layouts.
func (s *Service) Versions(ctx context.Context) (*preset.VersionConfig, error) {
	v := &preset.VersionConfig{}

	return v, v.Load(s.db.WithContext(ctx))
}

// UpdateVersions stores the selected page layouts.
func (s *Service) UpdateVersions(ctx context.Context, in preset.VersionConfig) (*preset.VersionConfig, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	return &in, in.Save(s.db.WithContext(ctx))
}
