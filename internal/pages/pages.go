// Package pages implements the CMS dynamic page collection. Pages are
// addressed by a slug derived from their name and are soft deleted into a
// trash before they can be removed for good.
package pages

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/validation"
)

var (
	// ErrNotFound is returned when no page matches.
	ErrNotFound = errors.New("Page not found")
	// ErrMissingFields is returned when a page lacks name, description or content.
	ErrMissingFields = errors.New("Missing required fields")
	// ErrSlugTaken is returned when a new page derives an existing slug.
	ErrSlugTaken = errors.New("A value with this title already exists.")
	// ErrNameTaken is returned when a renamed page collides with another page.
	ErrNameTaken = errors.New("Another page with this name already exists")
	// ErrNoIDs is returned by the bulk operations for an empty id list.
	ErrNoIDs = errors.New("No Page IDs provided")
	// ErrIDRequired is returned when an update does not name the page.
	ErrIDRequired = errors.New("Page ID is required")
)

type (
	// Input is the writable part of a page.
	Input struct {
		ID              uint64   `json:"id"`
		Name            string   `json:"name"`
		Description     string   `json:"description"`
		Content         string   `json:"content"`
		Status          string   `json:"status"          validate:"omitempty,oneof=active inactive"`
		MetaTitle       string   `json:"metaTitle"`
		MetaDescription string   `json:"metaDescription"`
		MetaKeywords    []string `json:"metaKeywords"`
		OgImage         string   `json:"ogImage"`
		TwitterImage    string   `json:"twitterImage"`
	}

	// ListOptions filters the admin listing.
	ListOptions struct {
		Skip   int
		Limit  int
		Search string
		Status string
	}

	// Counts summarizes the collection for the admin listing.
	Counts struct {
		Total      int64 `json:"totalData"`
		Active     int64 `json:"totalActiveData"`
		Inactive   int64 `json:"totalInActiveData"`
		BulkDelete int64 `json:"totalBulkDeleteData"`
	}

	// Name is the short form used for navigation menus.
	Name struct {
		ID          uint64 `json:"id"`
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
)

// Service manages dynamic pages.
type Service struct {
	db          *gorm.DB
	validate    *validator.Validate
	frontendURL string
}

// New returns a page service. frontendURL is the base of canonical urls.
func New(db *gorm.DB, frontendURL string) *Service {
	return &Service{
		db:          db,
		validate:    validation.New(),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Slug derives the url slug of a page name.
func Slug(name string) string {
	return slug.Make(name)
}

func (s *Service) canonical(pageSlug string) string {
	return s.frontendURL + "/blogs/" + pageSlug
}

func (s *Service) published(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.DynamicPage{}).
		Where("status = ? AND deleted = ?", models.PageActive, false)
}

// Active returns every published page, newest first.
func (s *Service) Active(ctx context.Context) ([]models.DynamicPage, error) {
	var list []models.DynamicPage

	if err := s.published(ctx).Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}

// BySlug returns a published page.
func (s *Service) BySlug(ctx context.Context, pageSlug string) (*models.DynamicPage, error) {
	var p models.DynamicPage

	err := s.published(ctx).Where("slug = ?", pageSlug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	return &p, err
}

// Names lists the published pages in their short form.
func (s *Service) Names(ctx context.Context) ([]Name, error) {
	var list []Name

	err := s.published(ctx).Select("id", "name", "slug", "description").
		Order("name").Find(&list).Error
	if err != nil {
		return nil, err
	}

	return list, nil
}

// List returns one page of non-trashed pages and the collection counts.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.DynamicPage, int64, Counts, error) {
	var (
		list   []models.DynamicPage
		total  int64
		counts Counts
	)

	q := s.db.WithContext(ctx).Model(&models.DynamicPage{}).Where("deleted = ?", false)

	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}

	if search := strings.TrimSpace(opts.Search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, counts, err
	}

	if err := q.Order("created_at desc").Offset(opts.Skip).Limit(opts.Limit).Find(&list).Error; err != nil {
		return nil, 0, counts, err
	}

	counts, err := s.counts(ctx)

	return list, total, counts, err
}

func (s *Service) counts(ctx context.Context) (Counts, error) {
	var c Counts

	base := func() *gorm.DB { return s.db.WithContext(ctx).Model(&models.DynamicPage{}) }

	steps := []struct {
		dst  *int64
		cond *gorm.DB
	}{
		{&c.Total, base().Where("deleted = ?", false)},
		{&c.Active, base().Where("deleted = ? AND status = ?", false, models.PageActive)},
		{&c.Inactive, base().Where("deleted = ? AND status = ?", false, models.PageInactive)},
		{&c.BulkDelete, base().Where("deleted = ?", true)},
	}

	for _, st := range steps {
		if err := st.cond.Count(st.dst).Error; err != nil {
			return c, err
		}
	}

	return c, nil
}

// Trash returns one page of soft deleted pages.
func (s *Service) Trash(ctx context.Context, skip, limit int) ([]models.DynamicPage, int64, error) {
	var (
		list  []models.DynamicPage
		total int64
	)

	q := s.db.WithContext(ctx).Model(&models.DynamicPage{}).Where("deleted = ?", true)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := q.Order("updated_at desc").Offset(skip).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (in Input) missing() bool {
	return strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Content) == ""
}

func (s *Service) apply(p *models.DynamicPage, in Input) {
	p.Name = strings.TrimSpace(in.Name)
	p.Slug = Slug(p.Name)
	p.Description = in.Description
	p.Content = in.Content
	p.MetaTitle = in.MetaTitle
	p.MetaDescription = in.MetaDescription
	p.MetaKeywords = datatypes.JSONSlice[string](in.MetaKeywords)
	p.CanonicalURL = s.canonical(p.Slug)
	p.OgTitle = p.Name
	p.OgDescription = in.Description
	p.OgImage = in.OgImage
	p.TwitterTitle = p.Name
	p.TwitterDescription = in.Description
	p.TwitterImage = in.TwitterImage

	if in.Status != "" {
		p.Status = in.Status
	}

	if p.MetaKeywords == nil {
		p.MetaKeywords = datatypes.JSONSlice[string]{}
	}
}

func (s *Service) slugTaken(ctx context.Context, pageSlug string, exceptID uint64) (bool, error) {
	var n int64

	q := s.db.WithContext(ctx).Model(&models.DynamicPage{}).Where("slug = ?", pageSlug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&n).Error; err != nil {
		return false, err
	}

	return n > 0, nil
}

// Create stores a new page. Pages start active unless a status is given.
func (s *Service) Create(ctx context.Context, in Input) (*models.DynamicPage, error) {
	if in.missing() {
		return nil, ErrMissingFields
	}

	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	p := models.DynamicPage{Status: models.PageActive}
	s.apply(&p, in)

	taken, err := s.slugTaken(ctx, p.Slug, 0)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrSlugTaken
	}

	if err = s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}

	log.Info().Uint64("id", p.ID).Str("slug", p.Slug).Msg("dynamic page created")

	return &p, nil
}

// Update rewrites a page, its slug follows the new name.
func (s *Service) Update(ctx context.Context, in Input) (*models.DynamicPage, error) {
	if in.ID == 0 {
		return nil, ErrIDRequired
	}

	if in.missing() {
		return nil, ErrMissingFields
	}

	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}

	var p models.DynamicPage

	err := s.db.WithContext(ctx).First(&p, in.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	s.apply(&p, in)

	taken, err := s.slugTaken(ctx, p.Slug, p.ID)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrNameTaken
	}

	if err = s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}

	return &p, nil
}

// SoftDelete moves pages into the trash.
func (s *Service) SoftDelete(ctx context.Context, ids []uint64) (int64, error) {
	return s.setDeleted(ctx, ids, true)
}

// Restore brings pages back from the trash.
func (s *Service) Restore(ctx context.Context, ids []uint64) (int64, error) {
	return s.setDeleted(ctx, ids, false)
}

func (s *Service) setDeleted(ctx context.Context, ids []uint64, deleted bool) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}

	res := s.db.WithContext(ctx).Model(&models.DynamicPage{}).
		Where("id IN ?", ids).Update("deleted", deleted)

	return res.RowsAffected, res.Error
}

// DeletePermanent removes pages for good.
func (s *Service) DeletePermanent(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoIDs
	}

	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.DynamicPage{})

	return res.RowsAffected, res.Error
}
