package google

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/dbtest"
	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/settings"
	"github.com/shopadmin/shop-admin/internal/web/handler"
	"github.com/shopadmin/shop-admin/internal/web/statestore"
)

const frontend = "http://admin.shop.test"

type fakeProvider struct {
	identity *auth.Identity
	err      error
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://accounts.google.test/auth?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*auth.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}

	if code != "good-code" {
		return nil, errors.New("bad code")
	}

	return f.identity, nil
}

func newApp(t *testing.T, provider auth.IdentityProvider) (*fiber.App, *statestore.Store) {
	t.Helper()

	return newAppWithDB(t, dbtest.New(t), provider)
}

func newAppWithDB(t *testing.T, db *gorm.DB, provider auth.IdentityProvider) (*fiber.App, *statestore.Store) {
	t.Helper()

	sessions := auth.NewSessions(db, auth.NewTokenIssuer("test-secret", time.Hour))
	svc := auth.NewService(db, sessions, nil, settings.New(db, nil), nil, nil, auth.Options{})
	states := statestore.New(statestore.NewMemory(), time.Minute)

	deps := &handler.Deps{
		Cfg:    &config.Config{Webserver: config.Webserver{FrontendURL: frontend + "/"}},
		Auth:   svc,
		States: states,
	}

	if provider != nil {
		deps.Google = provider
	}

	app := fiber.New()
	s := Service{}
	require.NoError(t, s.Init(app, deps))

	return app, states
}

func redirect(t *testing.T, app *fiber.App, target string) *url.URL {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)

	return loc
}

func TestLoginRedirectsWithState(t *testing.T) {
	app, states := newApp(t, &fakeProvider{})

	loc := redirect(t, app, LoginPath)
	assert.Equal(t, "accounts.google.test", loc.Host)

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	require.NoError(t, states.Consume(state))
}

func TestCallback(t *testing.T) {
	identity := &auth.Identity{
		Subject:       "google-sub-1",
		Email:         "shopper@gmail.test",
		EmailVerified: true,
		Name:          "Shopper",
	}

	app, states := newApp(t, &fakeProvider{identity: identity})

	state, err := states.Issue()
	require.NoError(t, err)

	loc := redirect(t, app, CallbackPath+"?code=good-code&state="+url.QueryEscape(state))
	assert.Equal(t, "/auth/google/callback", loc.Path)

	q := loc.Query()
	assert.NotEmpty(t, q.Get("token"))
	assert.Equal(t, identity.Email, q.Get("email"))
	assert.Equal(t, string(models.RoleUser), q.Get("role"))
	assert.Equal(t, string(models.StatusActive), q.Get("status"))

	// the state was used up
	loc = redirect(t, app, CallbackPath+"?code=good-code&state="+url.QueryEscape(state))
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, errLoginFailed, loc.Query().Get("error"))
}

func TestCallbackErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider auth.IdentityProvider
		code     string
		want     string
	}{
		{name: "disabled", provider: nil, code: "good-code", want: errDisabled},
		{name: "exchange fails", provider: &fakeProvider{}, code: "bad", want: errLoginFailed},
		{name: "missing code", provider: &fakeProvider{}, code: "", want: errLoginFailed},
		{
			name:     "no email",
			provider: &fakeProvider{identity: &auth.Identity{Subject: "sub"}},
			code:     "good-code",
			want:     errNoEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, states := newApp(t, tt.provider)

			state, err := states.Issue()
			require.NoError(t, err)

			loc := redirect(t, app, CallbackPath+"?code="+tt.code+"&state="+url.QueryEscape(state))
			assert.Equal(t, frontend+"/login", loc.Scheme+"://"+loc.Host+loc.Path)
			assert.Equal(t, tt.want, loc.Query().Get("error"))
		})
	}
}

func TestCallbackUnverifiedEmailDoesNotLink(t *testing.T) {
	db := dbtest.New(t)

	owner := &models.User{
		Username: "owner", Email: "owner@shop.test", Password: models.HashPassword("s3cret-pass"),
		Role: models.RoleAdmin, Status: models.StatusActive, AuthSource: models.AuthSourceLocal,
	}
	require.NoError(t, db.Create(owner).Error)

	app, states := newAppWithDB(t, db, &fakeProvider{identity: &auth.Identity{
		Subject: "google-sub-2", Email: owner.Email, EmailVerified: false,
	}})

	state, err := states.Issue()
	require.NoError(t, err)

	loc := redirect(t, app, CallbackPath+"?code=good-code&state="+url.QueryEscape(state))
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, errUnverified, loc.Query().Get("error"))

	var stored models.User
	require.NoError(t, db.First(&stored, owner.ID).Error)
	assert.Empty(t, stored.ExternalID)
}
