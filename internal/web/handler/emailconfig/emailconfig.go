// Package emailconfig serves the outbound mail account settings.
package emailconfig

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/mail"
	"github.com/shopadmin/shop-admin/internal/web/handler"
)

// Path is the prefix of the email configuration routes.
const Path = handler.APIPrefix + "/email-configuration"

// Service is the email configuration handler service.
type Service struct {
	store  *mail.ConfigStore
	mailer *mail.Mailer
}

// Handler is the email configuration handler.
var Handler = Service{}

var codes = map[error]int{ //nolint:gochecknoglobals
	mail.ErrConfigIDRequired: fiber.StatusBadRequest,
	mail.ErrConfigNotFound:   fiber.StatusNotFound,
	mail.ErrInvalidPort:      fiber.StatusBadRequest,
}

// view hides the password but tells whether one is stored.
type view struct {
	*models.EmailConfiguration
	HasPassword bool `json:"hasPassword"`
}

// Init registers the routes, all of them need the email permission.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.MailConfig == nil || deps.Mailer == nil {
		return handler.ErrNilDeps
	}

	s.store = deps.MailConfig
	s.mailer = deps.Mailer

	guard := deps.RequireAuth()
	manage := auth.RequirePermission(auth.PermEmailManage)

	r := app.Group(Path)

	r.Get(handler.RootPath, guard, manage, s.Get)
	r.Put(handler.RootPath, guard, manage, s.Put)
	r.Post("/test", guard, manage, s.Test)

	return nil
}

// Get returns the configuration.
func (s *Service) Get(c fiber.Ctx) error {
	cfg, err := s.store.Get(c.Context())
	if err != nil {
		return err
	}

	return handler.Data(c, fiber.StatusOK, view{cfg, cfg.HasPassword()})
}

// Put updates the configuration.
func (s *Service) Put(c fiber.Ctx) error {
	var in mail.ConfigInput
	if err := handler.Bind(c, &in); err != nil {
		return err
	}

	cfg, err := s.store.Update(c.Context(), in)
	if err != nil {
		return handler.Status(err, codes)
	}

	return handler.Message(c, fiber.StatusOK, "Email configuration updated successfully.", fiber.Map{
		"data": view{cfg, cfg.HasPassword()},
	})
}

// Test sends a test message to the caller.
func (s *Service) Test(c fiber.Ctx) error {
	p := auth.PrincipalFrom(c)

	if err := s.mailer.SendTest(c.Context(), p.User.Email); err != nil {
		log.Warn().Err(err).Str("to", p.User.Email).Msg("test email failed")

		for _, target := range []error{mail.ErrNotConfigured, mail.ErrDecrypt} {
			if errors.Is(err, target) {
				return fiber.NewError(fiber.StatusBadRequest, target.Error())
			}
		}

		return fiber.NewError(fiber.StatusBadGateway, "Failed to send test email.")
	}

	return handler.Message(c, fiber.StatusOK, "Test email sent to "+p.User.Email+".", nil)
}
