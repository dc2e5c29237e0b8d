// Package settings serves the singleton configuration rows under /api.
package settings

import (
	"github.com/gofiber/fiber/v3"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/db/controller/preset"
	shopsettings "github.com/shopadmin/shop-admin/internal/settings"
	"github.com/shopadmin/shop-admin/internal/web/handler"
)

// Service is the settings handler service.
type Service struct {
	settings *shopsettings.Service
}

// Handler is the settings handler.
var Handler = Service{}

var codes = map[error]int{ //nolint:gochecknoglobals
	shopsettings.ErrIDRequired:             fiber.StatusBadRequest,
	shopsettings.ErrGlobalSettingsNotFound: fiber.StatusNotFound,
	shopsettings.ErrContactNotFound:        fiber.StatusNotFound,
	shopsettings.ErrSocialNotFound:         fiber.StatusNotFound,
	shopsettings.ErrSiteNotFound:           fiber.StatusNotFound,
	shopsettings.ErrTrackingNotFound:       fiber.StatusNotFound,
}

// Init registers the settings routes. Reads are public, writes need the
// settings permission.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Settings == nil {
		return handler.ErrNilDeps
	}

	s.settings = deps.Settings

	guard := deps.RequireAuth()
	write := auth.RequirePermission(auth.PermSettingsWrite)

	r := app.Group(handler.APIPrefix)

	r.Get("/global-settings", s.GetGlobal)
	r.Put("/global-settings", guard, write, s.PutGlobal)
	r.Get("/contact-information", s.GetContact)
	r.Put("/contact-information", guard, write, s.PutContact)
	r.Get("/social-network", s.GetSocial)
	r.Put("/social-network", guard, write, s.PutSocial)
	r.Get("/site-configuration", s.GetSite)
	r.Put("/site-configuration", guard, write, s.PutSite)
	r.Get("/tracking-ids", s.GetTracking)
	r.Put("/tracking-ids", guard, write, s.PutTracking)
	r.Get("/color-config", s.GetColors)
	r.Put("/color-config", guard, write, s.PutColors)
	r.Get("/version-config", s.GetVersions)
	r.Put("/version-config", guard, write, s.PutVersions)

	return nil
}

// respond writes the row or maps the error.
func respond[T any](c fiber.Ctx, row *T, err error) error {
	if err != nil {
		return handler.Status(err, codes)
	}

	return handler.Data(c, fiber.StatusOK, row)
}

// GetGlobal returns the global settings.
func (s *Service) GetGlobal(c fiber.Ctx) error {
	row, err := s.settings.Global(c.Context())
	return respond(c, row, err)
}

// PutGlobal updates the global settings.
func (s *Service) PutGlobal(c fiber.Ctx) error {
	var in shopsettings.GlobalSettingsInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	row, err := s.settings.UpdateGlobal(c.Context(), in)

	return respond(c, row, err)
}

// GetContact returns the contact information.
func (s *Service) GetContact(c fiber.Ctx) error {
	row, err := s.settings.Contact(c.Context())
	return respond(c, row, err)
}

// PutContact updates the contact information.
func (s *Service) PutContact(c fiber.Ctx) error {
	var in shopsettings.ContactInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	row, err := s.settings.UpdateContact(c.Context(), in)

	return respond(c, row, err)
}

// GetSocial returns the social links.
func (s *Service) GetSocial(c fiber.Ctx) error {
	row, err := s.settings.Social(c.Context())
	return respond(c, row, err)
}

// PutSocial updates the social links.
func (s *Service) PutSocial(c fiber.Ctx) error {
	var in shopsettings.SocialInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	row, err := s.settings.UpdateSocial(c.Context(), in)

	return respond(c, row, err)
}

// GetSite returns the site configuration.
func (s *Service) GetSite(c fiber.Ctx) error {
	row, err := s.settings.Site(c.Context())
	return respond(c, row, err)
}

// PutSite updates the site configuration, logo and favicon come as files.
func (s *Service) PutSite(c fiber.Ctx) error {
	var in shopsettings.SiteInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	var files shopsettings.SiteFiles

	if fh, err := c.FormFile("logo"); err == nil {
		files.Logo = fh
	}

	if fh, err := c.FormFile("favicon"); err == nil {
		files.Favicon = fh
	}

	row, err := s.settings.UpdateSite(c.Context(), in, files)

	return respond(c, row, err)
}

// GetTracking returns the tracking ids.
func (s *Service) GetTracking(c fiber.Ctx) error {
	row, err := s.settings.Tracking(c.Context())
	return respond(c, row, err)
}

// PutTracking updates the tracking ids.
func (s *Service) PutTracking(c fiber.Ctx) error {
	var in shopsettings.TrackingInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	row, err := s.settings.UpdateTracking(c.Context(), in)

	return respond(c, row, err)
}

// GetColors returns the color preset.
func (s *Service) GetColors(c fiber.Ctx) error {
	row, err := s.settings.Colors(c.Context())
	return respond(c, row, err)
}

// PutColors replaces the color preset.
func (s *Service) PutColors(c fiber.Ctx) error {
	var in preset.ColorConfig
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	row, err := s.settings.UpdateColors(c.Context(), in)

	return respond(c, row, err)
}

// GetVersions returns the layout preset.
func (s *Service) GetVersions(c fiber.Ctx) error {
	row, err := s.settings.Versions(c.Context())
	return respond(c, row, err)
}

// PutVersions replaces the layout preset.
func (s *Service) PutVersions(c fiber.Ctx) error {
	var in preset.VersionConfig
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	row, err := s.settings.UpdateVersions(c.Context(), in)

	return respond(c, row, err)
}
