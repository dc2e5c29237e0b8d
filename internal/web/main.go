// Package web wires the fiber application: middleware, handlers and the
// graceful shutdown of the http server.
package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/template/html/v3"
	"github.com/rs/zerolog/log"

	"github.com/shopadmin/shop-admin/internal/config"
	fiberlog "github.com/shopadmin/shop-admin/internal/logger/adapter/fiber"
	"github.com/shopadmin/shop-admin/internal/web/handler"
	"github.com/shopadmin/shop-admin/internal/web/handler/authentication"
	backuphandler "github.com/shopadmin/shop-admin/internal/web/handler/backup"
	"github.com/shopadmin/shop-admin/internal/web/handler/emailconfig"
	"github.com/shopadmin/shop-admin/internal/web/handler/google"
	"github.com/shopadmin/shop-admin/internal/web/handler/home"
	pageshandler "github.com/shopadmin/shop-admin/internal/web/handler/pages"
	settingshandler "github.com/shopadmin/shop-admin/internal/web/handler/settings"
	"github.com/shopadmin/shop-admin/internal/web/middleware/client"
	"github.com/shopadmin/shop-admin/internal/web/middleware/format"
)

// MsgRouteNotFound is returned for unknown routes.
const MsgRouteNotFound = "Route not found"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address and blocks until the
// server is stopped.
func (s *Service) Start(addr string) error {
	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: !s.cfg.DevMode})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

// Shutdown drains and stops the http server.
func (s *Service) Shutdown() {
	wait := time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second

	// Graceful shutdown for reverse proxies: /health fails while we wait.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(wait)
	}

	log.Info().Msg("stopping http server ...")

	ctx, cancel := context.WithTimeout(context.Background(), wait+time.Second)
	defer cancel()

	if err := s.App.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the server accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// handlers in registration order. The home handler owns / and must be last
// before the 404 fallback.
func handlers() []handler.Service {
	return []handler.Service{
		&authentication.Handler,
		&google.Handler,
		&settingshandler.Handler,
		&pageshandler.Handler,
		&emailconfig.Handler,
		&backuphandler.Handler,
		&home.Handler,
	}
}

// New creates the web service with all routes registered.
func New(cfg *config.Config, deps *handler.Deps) (*Service, error) {
	if cfg == nil || deps == nil {
		return nil, handler.ErrNilDeps
	}

	deps.Cfg = cfg

	templateEngine := html.NewFileSystem(http.FS(templateEmbedFS{embeddedTemplates}), ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.Reload(true)

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	errorHandler := ErrorHandler(cfg.DevMode)

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192, //nolint:mnd
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			BodyLimit:      cfg.Webserver.BodyLimit,
			Views:          templateEngine,
			JSONEncoder:    json.Marshal,
			JSONDecoder:    json.Unmarshal,
			ErrorHandler:   errorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)
	deps.Alive = service.Alive

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New(recoverer.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlog.New(fiberlog.Config{Config: cfg.Log, ErrorHandler: errorHandler}))
	app.Use(cors.New(corsConfig(cfg.Webserver.AllowedOrigins)))
	app.Use(client.New(client.Config{
		APIKey:       cfg.Webserver.APIKey,
		SkipPaths:    []string{handler.RootPath, home.HealthPath, home.MetricsPath},
		SkipPrefixes: []string{home.UploadsPath + "/", google.LoginPath},
	}))

	if deps.Settings != nil {
		app.Use(format.Attach(deps.Settings))
	}

	app.Use(format.New(cfg.Webserver.URL))

	for _, h := range handlers() {
		if err := h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	app.Use(func(_ fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, MsgRouteNotFound)
	})

	log.Debug().Int("routes", len(app.GetRoutes(true))).Msg("web service ready")

	return service, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
			fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions,
		},
		AllowHeaders: []string{
			fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, fiber.HeaderAuthorization,
			client.HeaderRequestedWith, client.HeaderAPIKey,
		},
	}

	var explicit []string

	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" && o != "*" {
			explicit = append(explicit, o)
		}
	}

	// credentials are only allowed with explicit origins
	if len(explicit) > 0 {
		cfg.AllowOrigins = explicit
		cfg.AllowCredentials = true
	}

	return cfg
}
