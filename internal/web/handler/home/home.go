// Package home serves the landing page and the operational endpoints.
package home

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopadmin/shop-admin/internal/media"
	"github.com/shopadmin/shop-admin/internal/web/handler"
	"github.com/shopadmin/shop-admin/internal/web/middleware/format"
)

const (
	// HealthPath answers load balancer checks.
	HealthPath = "/health"

	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"

	// UploadsPath serves locally stored media.
	UploadsPath = "/" + media.URLPrefix

	// TemplateName is the name of the home template.
	TemplateName = "home"
)

// Service is the home handler service.
type Service struct {
	title       string
	frontendURL string
	alive       func() bool
}

// Handler is the home handler.
var Handler = Service{}

// Init registers /, /health, /metrics and the upload directory.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Cfg == nil {
		return handler.ErrNilDeps
	}

	s.title = deps.Cfg.Title
	s.frontendURL = deps.Cfg.Webserver.FrontendURL

	s.alive = deps.Alive
	if s.alive == nil {
		s.alive = func() bool { return true }
	}

	app.Get(handler.RootPath, s.Home)
	app.Get(HealthPath, s.Health)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	if dir := deps.Cfg.Media.UploadDir; dir != "" {
		app.Get(UploadsPath+"/*", static.New(dir))
	}

	return nil
}

// Home renders the landing page.
func (s *Service) Home(c fiber.Ctx) error {
	siteName := s.title
	if gs := format.Settings(c); gs != nil && gs.SiteName != "" {
		siteName = gs.SiteName
	}

	return c.Render(TemplateName, fiber.Map{
		"Title":       s.title,
		"SiteName":    siteName,
		"APIPrefix":   handler.APIPrefix,
		"FrontendURL": s.frontendURL,
		"Now":         time.Now().UTC().Format(time.RFC1123),
	})
}

// Health returns ok, or 503 while the server drains.
func (s *Service) Health(c fiber.Ctx) error {
	status := fiber.StatusOK
	state := "ok"

	if !s.alive() {
		status = fiber.StatusServiceUnavailable
		state = "shutting down"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
