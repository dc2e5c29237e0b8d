// Package google serves the browser redirects of the Google sign in.
package google

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/web/handler"
	"github.com/shopadmin/shop-admin/internal/web/statestore"
)

const (
	// LoginPath starts the Google sign in.
	LoginPath = handler.APIPrefix + "/auth/google"

	// CallbackPath receives the authorization code.
	CallbackPath = LoginPath + "/callback"

	errLoginFailed = "login_failed"
	errNoEmail     = "no_email_found"
	errUnverified  = "email_not_verified"
	errDisabled    = "google_disabled"
)

// Service is the Google sign in handler service.
type Service struct {
	auth        *auth.Service
	provider    auth.IdentityProvider
	states      *statestore.Store
	frontendURL string
}

// Handler is the Google sign in handler.
var Handler = Service{}

// Init registers the redirect routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil || deps.Auth == nil || deps.States == nil {
		return handler.ErrNilDeps
	}

	s.auth = deps.Auth
	s.provider = deps.Google
	s.states = deps.States
	s.frontendURL = strings.TrimRight(deps.Cfg.Webserver.FrontendURL, "/")

	if s.provider == nil {
		log.Info().Msg("google sign in is disabled by configuration")
	}

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	return nil
}

func (s *Service) loginError(c fiber.Ctx, code string) error {
	return c.Redirect().Status(fiber.StatusFound).To(s.frontendURL + "/login?error=" + code)
}

// Login sends the browser to the Google consent page.
func (s *Service) Login(c fiber.Ctx) error {
	if s.provider == nil {
		return s.loginError(c, errDisabled)
	}

	state, err := s.states.Issue()
	if err != nil {
		log.Error().Err(err).Msg("failed to issue oauth state")

		return s.loginError(c, errLoginFailed)
	}

	return c.Redirect().Status(fiber.StatusFound).To(s.provider.AuthURL(state))
}

// Callback exchanges the code, signs the user in and hands the token to the frontend.
func (s *Service) Callback(c fiber.Ctx) error {
	if s.provider == nil {
		return s.loginError(c, errDisabled)
	}

	if err := s.states.Consume(c.Query("state")); err != nil {
		log.Warn().Err(err).Msg("google callback with invalid state")

		return s.loginError(c, errLoginFailed)
	}

	code := c.Query("code")
	if code == "" {
		return s.loginError(c, errLoginFailed)
	}

	identity, err := s.provider.Exchange(c.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("google code exchange failed")

		return s.loginError(c, errLoginFailed)
	}

	res, err := s.auth.LoginWithIdentity(c.Context(), identity, handler.DeviceInfo(c))

	switch {
	case errors.Is(err, auth.ErrNoEmail):
		return s.loginError(c, errNoEmail)
	case errors.Is(err, auth.ErrEmailNotVerified):
		return s.loginError(c, errUnverified)
	case err != nil:
		log.Error().Err(err).Str("email", identity.Email).Msg("google sign in failed")

		return s.loginError(c, errLoginFailed)
	}

	q := url.Values{}
	q.Set("token", res.Token)
	q.Set("role", string(res.User.Role))
	q.Set("id", strconv.FormatUint(res.User.ID, 10))
	q.Set("username", res.User.Username)
	q.Set("status", string(res.User.Status))
	q.Set("email", res.User.Email)

	return c.Redirect().Status(fiber.StatusFound).To(s.frontendURL + "/auth/google/callback?" + q.Encode())
}
