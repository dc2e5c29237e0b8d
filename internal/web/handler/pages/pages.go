// Package pages serves the dynamic pages api.
package pages

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/pages"
	"github.com/shopadmin/shop-admin/internal/web/handler"
)

const (
	// PublicPath lists and resolves active pages.
	PublicPath = handler.APIPrefix + "/get-dynamic-page"

	// NamesPath returns the menu entries of active pages.
	NamesPath = handler.APIPrefix + "/get-dynamic-page-name"

	// AdminPath is the prefix of the management routes.
	AdminPath = handler.APIPrefix + "/dynamic-page"
)

// Service is the pages handler service.
type Service struct {
	pages *pages.Service
}

// Handler is the pages handler.
var Handler = Service{}

var codes = map[error]int{ //nolint:gochecknoglobals
	pages.ErrNotFound:      fiber.StatusNotFound,
	pages.ErrMissingFields: fiber.StatusBadRequest,
	pages.ErrSlugTaken:     fiber.StatusConflict,
	pages.ErrNameTaken:     fiber.StatusConflict,
	pages.ErrNoIDs:         fiber.StatusBadRequest,
	pages.ErrIDRequired:    fiber.StatusBadRequest,
}

// Init registers the page routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Pages == nil {
		return handler.ErrNilDeps
	}

	s.pages = deps.Pages

	app.Get(PublicPath, s.Active)
	app.Get(PublicPath+"/:slug", s.BySlug)
	app.Get(NamesPath, s.Names)

	guard := deps.RequireAuth()
	manage := auth.RequirePermission(auth.PermPagesManage)

	r := app.Group(AdminPath)

	r.Get(handler.RootPath, guard, manage, s.List)
	r.Post(handler.RootPath, guard, manage, s.Create)
	r.Put(handler.RootPath, guard, manage, s.Update)
	r.Get("/bulk-delete", guard, manage, s.Trash)
	r.Delete("/bulk-delete", guard, manage, s.SoftDelete)
	r.Patch("/restore", guard, manage, s.Restore)
	r.Delete("/permanent", guard, manage, s.DeletePermanent)

	return nil
}

// Active lists the published pages.
func (s *Service) Active(c fiber.Ctx) error {
	list, err := s.pages.Active(c.Context())
	if err != nil {
		return err
	}

	return handler.Data(c, fiber.StatusOK, list)
}

// BySlug returns one published page.
func (s *Service) BySlug(c fiber.Ctx) error {
	p, err := s.pages.BySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return handler.Status(err, codes)
	}

	return handler.Data(c, fiber.StatusOK, p)
}

// Names lists id, name and slug of the published pages.
func (s *Service) Names(c fiber.Ctx) error {
	names, err := s.pages.Names(c.Context())
	if err != nil {
		return err
	}

	return handler.Data(c, fiber.StatusOK, names)
}

// List is the admin listing with its counters.
func (s *Service) List(c fiber.Ctx) error {
	p := handler.Paginate(c)

	list, total, counts, err := s.pages.List(c.Context(), pages.ListOptions{
		Skip:   p.Skip,
		Limit:  p.Limit,
		Search: c.Query("search"),
		Status: c.Query("status"),
	})
	if err != nil {
		return err
	}

	return handler.List(c, list, total, p, fiber.Map{
		"totalData":           counts.Total,
		"totalActiveData":     counts.Active,
		"totalInActiveData":   counts.Inactive,
		"totalBulkDeleteData": counts.BulkDelete,
	})
}

// Trash lists the soft deleted pages.
func (s *Service) Trash(c fiber.Ctx) error {
	p := handler.Paginate(c)

	list, total, err := s.pages.Trash(c.Context(), p.Skip, p.Limit)
	if err != nil {
		return err
	}

	return handler.List(c, list, total, p, nil)
}

// Create adds a page.
func (s *Service) Create(c fiber.Ctx) error {
	var in pages.Input
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	p, err := s.pages.Create(c.Context(), in)
	if err != nil {
		return handler.Status(err, codes)
	}

	return handler.Data(c, fiber.StatusCreated, p)
}

// Update changes a page.
func (s *Service) Update(c fiber.Ctx) error {
	var in pages.Input
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	p, err := s.pages.Update(c.Context(), in)
	if err != nil {
		return handler.Status(err, codes)
	}

	return handler.Data(c, fiber.StatusOK, p)
}

type bulk func(c fiber.Ctx, ids []uint64) (int64, error)

// ids runs op over the ids of the body.
func (s *Service) ids(c fiber.Ctx, op bulk, msg string) error {
	var in handler.IDs
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	n, err := op(c, in.IDs)
	if err != nil {
		return handler.Status(err, codes)
	}

	return handler.Message(c, fiber.StatusOK, msg, fiber.Map{"count": n})
}

// SoftDelete moves pages to the trash.
func (s *Service) SoftDelete(c fiber.Ctx) error {
	return s.ids(c, func(c fiber.Ctx, ids []uint64) (int64, error) {
		return s.pages.SoftDelete(c.Context(), ids)
	}, "Page soft deleted")
}

// Restore brings pages back from the trash.
func (s *Service) Restore(c fiber.Ctx) error {
	return s.ids(c, func(c fiber.Ctx, ids []uint64) (int64, error) {
		return s.pages.Restore(c.Context(), ids)
	}, "Page restored")
}

// DeletePermanent removes pages.
func (s *Service) DeletePermanent(c fiber.Ctx) error {
	return s.ids(c, func(c fiber.Ctx, ids []uint64) (int64, error) {
		return s.pages.DeletePermanent(c.Context(), ids)
	}, "Page permanently deleted")
}
