package web

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/backup"
	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/db/dbtest"
	"github.com/shopadmin/shop-admin/internal/db/models"
	"github.com/shopadmin/shop-admin/internal/mail"
	"github.com/shopadmin/shop-admin/internal/media"
	"github.com/shopadmin/shop-admin/internal/pages"
	"github.com/shopadmin/shop-admin/internal/settings"
	"github.com/shopadmin/shop-admin/internal/web/handler"
	"github.com/shopadmin/shop-admin/internal/web/middleware/client"
	"github.com/shopadmin/shop-admin/internal/web/statestore"
)

const (
	testAPIKey   = "test-api-key"
	testPassword = "s3cret-pass"
)

type outbox struct {
	sent []mail.Message
}

func (o *outbox) dial(models.EmailConfiguration, string) (mail.Transport, error) {
	return o, nil
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.sent = append(o.sent, msg)
	return nil
}

type fileDumper struct{}

func (fileDumper) Name() string { return "shop" }
func (fileDumper) Ext() string  { return ".sql" }

func (fileDumper) Dump(_ context.Context, dest string) error {
	return os.WriteFile(dest, []byte("-- dump\n"), 0o600)
}

type env struct {
	t      *testing.T
	app    *fiber.App
	db     *gorm.DB
	outbox *outbox
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dir := t.TempDir()
	db := dbtest.New(t)

	cfg := &config.Config{
		Title: "Shop Admin",
		Webserver: config.Webserver{
			Port:         8800,
			URL:          "http://api.shop.test",
			FrontendURL:  "http://admin.shop.test",
			APIKey:       testAPIKey,
			ShutDownTime: 1,
			BodyLimit:    4 * 1024 * 1024,
		},
		Auth: config.Auth{
			JWTSecret:     "test-secret",
			TokenTTL:      time.Hour,
			OTPTTL:        5 * time.Minute,
			ResetCodeTTL:  10 * time.Minute,
			OAuthStateTTL: 10 * time.Minute,
		},
		Media:  config.Media{Driver: config.MediaDriverLocal, UploadDir: filepath.Join(dir, "uploads")},
		Backup: config.Backup{Dir: filepath.Join(dir, "backups"), Timeout: time.Minute},
	}

	store := media.NewLocalStore(cfg.Media.UploadDir, 1<<20)
	st := settings.New(db, store)
	box := &outbox{}

	mailer, err := mail.New(db, nil, st, cfg.Webserver.FrontendURL)
	require.NoError(t, err)
	mailer.WithDialer(box.dial)

	sessions := auth.NewSessions(db, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)).
		ExpireIdle(st)
	authService := auth.NewService(db, sessions, mailer, st, store, nil, auth.Options{
		Issuer:       cfg.Title,
		OTPTTL:       cfg.Auth.OTPTTL,
		ResetCodeTTL: cfg.Auth.ResetCodeTTL,
	})

	backups := backup.New(db, fileDumper{}, st, cfg.Backup.Dir, cfg.Backup.Timeout)
	scheduler := backup.NewScheduler(backups, time.Minute, false)
	t.Cleanup(func() { scheduler.Stop(context.Background()) })

	service, err := New(cfg, &handler.Deps{
		DB:         db,
		Auth:       authService,
		States:     statestore.New(statestore.NewMemory(), cfg.Auth.OAuthStateTTL),
		Settings:   st,
		Pages:      pages.New(db, cfg.Webserver.FrontendURL),
		Mailer:     mailer,
		MailConfig: mail.NewConfigStore(db, nil),
		Backups:    backups,
		Scheduler:  scheduler,
	})
	require.NoError(t, err)

	return &env{t: t, app: service.App, db: db, outbox: box}
}

type response struct {
	Status int
	Body   map[string]any
	Raw    string
}

func (e *env) do(method, path, token string, body any) response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(client.HeaderRequestedWith, client.RequestedWithWeb)
	req.Header.Set(client.HeaderAPIKey, testAPIKey)

	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	return e.send(req)
}

func (e *env) send(req *http.Request) response {
	e.t.Helper()

	resp, err := e.app.Test(req)
	require.NoError(e.t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	out := response{Status: resp.StatusCode, Raw: string(raw)}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(e.t, json.Unmarshal(raw, &out.Body), string(raw))
	}

	return out
}

// login creates an active account with role and returns its token.
func (e *env) login(role models.Role) (string, *models.User) {
	e.t.Helper()

	u := &models.User{
		Username:   gofakeit.Username(),
		Email:      strings.ToLower(gofakeit.Email()),
		Password:   models.HashPassword(testPassword),
		Role:       role,
		Status:     models.StatusActive,
		AuthSource: models.AuthSourceLocal,
	}
	require.NoError(e.t, e.db.Create(u).Error)

	res := e.do(fiber.MethodPost, "/api/authentication/login", "", fiber.Map{"email": u.Email, "password": testPassword})
	require.Equal(e.t, fiber.StatusOK, res.Status, res.Raw)

	token, _ := res.Body["payload"].(map[string]any)["token"].(string)
	require.NotEmpty(e.t, token)

	return token, u
}

func data(t *testing.T, r response) map[string]any {
	t.Helper()

	d, ok := r.Body["data"].(map[string]any)
	require.True(t, ok, r.Raw)

	return d
}

func TestClientHeaderCheck(t *testing.T) {
	e := newEnv(t)

	res := e.send(httptest.NewRequest(fiber.MethodGet, "/api/global-settings", nil))
	assert.Equal(t, fiber.StatusForbidden, res.Status)
	assert.Equal(t, client.Message, res.Body["message"])

	res = e.send(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	assert.Equal(t, fiber.StatusOK, res.Status)
	assert.Equal(t, "ok", res.Body["status"])
	assert.NotEmpty(t, res.Body["timestamp"])

	res = e.send(httptest.NewRequest(fiber.MethodGet, "/", nil))
	assert.Equal(t, fiber.StatusOK, res.Status)
	assert.Contains(t, res.Raw, "Website Name")
}

func TestNotFound(t *testing.T) {
	e := newEnv(t)

	res := e.do(fiber.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)
	assert.Equal(t, false, res.Body["success"])
	assert.EqualValues(t, fiber.StatusNotFound, res.Body["status"])
	assert.Equal(t, MsgRouteNotFound, res.Body["message"])
}

func TestAccountFlow(t *testing.T) {
	e := newEnv(t)

	email := strings.ToLower(gofakeit.Email())

	res := e.do(fiber.MethodPost, "/api/authentication/register", "", fiber.Map{"email": email})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, "Username, Password field(s) are required.", res.Body["message"])

	res = e.do(fiber.MethodPost, "/api/authentication/register", "", fiber.Map{
		"email": email, "username": "shopper", "password": testPassword,
	})
	require.Equal(t, fiber.StatusCreated, res.Status, res.Raw)

	res = e.do(fiber.MethodPost, "/api/authentication/login", "", fiber.Map{"email": email, "password": "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)

	res = e.do(fiber.MethodPost, "/api/authentication/login", "", fiber.Map{"email": email, "password": testPassword})
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	token := res.Body["payload"].(map[string]any)["token"].(string)

	res = e.do(fiber.MethodGet, "/api/authentication/profile", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	res = e.do(fiber.MethodPost, "/api/authentication/logout", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	res = e.do(fiber.MethodGet, "/api/authentication/profile", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)
}

func TestSettingsRoutes(t *testing.T) {
	e := newEnv(t)

	res := e.do(fiber.MethodGet, "/api/global-settings", "", nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	gs := data(t, res)
	assert.Equal(t, "YYYY-MM-DD", gs["dateFormat"])

	update := fiber.Map{
		"id":                  gs["id"],
		"siteName":            "Corner Shop",
		"timezone":            "Europe/Berlin",
		"dateFormat":          "DD-MM-YYYY",
		"currency":            "EUR",
		"sessionTimeout":      60,
		"passwordMinLength":   8,
		"backupFrequency":     "daily",
		"backupRetentionDays": 14,
		"enableAutoBackups":   false,
	}

	res = e.do(fiber.MethodPut, "/api/global-settings", "", update)
	assert.Equal(t, fiber.StatusUnauthorized, res.Status)

	userToken, _ := e.login(models.RoleUser)
	res = e.do(fiber.MethodPut, "/api/global-settings", userToken, update)
	assert.Equal(t, fiber.StatusForbidden, res.Status)

	adminToken, _ := e.login(models.RoleAdmin)
	res = e.do(fiber.MethodPut, "/api/global-settings", adminToken, update)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)
	assert.Equal(t, "EUR", data(t, res)["currency"])

	invalid := fiber.Map{}
	for k, v := range update {
		invalid[k] = v
	}

	invalid["currency"] = "GBP"
	res = e.do(fiber.MethodPut, "/api/global-settings", adminToken, invalid)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.NotEmpty(t, res.Body["errors"])

	res = e.do(fiber.MethodPut, "/api/tracking-ids", adminToken, fiber.Map{"id": 999, "gtmId": "GTM-1"})
	assert.Equal(t, fiber.StatusNotFound, res.Status)
	assert.Equal(t, settings.ErrTrackingNotFound.Error(), res.Body["message"])

	res = e.do(fiber.MethodGet, "/api/color-config", "", nil)
	assert.Equal(t, fiber.StatusOK, res.Status, res.Raw)
}

func TestPagesRoutes(t *testing.T) {
	e := newEnv(t)
	token, _ := e.login(models.RoleAdmin)

	page := fiber.Map{
		"name":            "About Us",
		"description":     "Who we are",
		"content":         "<p>hello</p>",
		"metaTitle":       "About",
		"metaDescription": "About the shop",
		"metaKeywords":    []string{"about"},
		"ogImage":         "uploads/og.png",
	}

	res := e.do(fiber.MethodPost, "/api/dynamic-page", token, page)
	require.Equal(t, fiber.StatusCreated, res.Status, res.Raw)

	created := data(t, res)
	assert.Equal(t, "about-us", created["slug"])
	assert.Equal(t, "http://admin.shop.test/blogs/about-us", created["canonicalUrl"])
	assert.Equal(t, "http://api.shop.test/uploads/og.png", created["ogImage"])
	assert.Len(t, created["createdAt"], len("2006-01-02"))

	res = e.do(fiber.MethodPost, "/api/dynamic-page", token, page)
	assert.Equal(t, fiber.StatusConflict, res.Status)
	assert.Equal(t, pages.ErrSlugTaken.Error(), res.Body["message"])

	res = e.do(fiber.MethodGet, "/api/get-dynamic-page/about-us", "", nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	res = e.do(fiber.MethodGet, "/api/get-dynamic-page/missing", "", nil)
	assert.Equal(t, fiber.StatusNotFound, res.Status)

	res = e.do(fiber.MethodGet, "/api/dynamic-page?page=1&limit=5", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)
	assert.EqualValues(t, 1, res.Body["totalData"])
	assert.EqualValues(t, 1, res.Body["totalActiveData"])
	assert.EqualValues(t, 5, res.Body["pagination"].(map[string]any)["limit"])

	ids := fiber.Map{"ids": []any{created["id"]}}

	res = e.do(fiber.MethodDelete, "/api/dynamic-page/bulk-delete", token, fiber.Map{"ids": []uint64{}})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, pages.ErrNoIDs.Error(), res.Body["message"])

	res = e.do(fiber.MethodDelete, "/api/dynamic-page/bulk-delete", token, ids)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	res = e.do(fiber.MethodGet, "/api/get-dynamic-page-name", "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Empty(t, res.Body["data"])

	res = e.do(fiber.MethodGet, "/api/dynamic-page/bulk-delete", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Len(t, res.Body["data"], 1)

	res = e.do(fiber.MethodPatch, "/api/dynamic-page/restore", token, ids)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	res = e.do(fiber.MethodDelete, "/api/dynamic-page/permanent", token, ids)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	res = e.do(fiber.MethodGet, "/api/get-dynamic-page", "", nil)
	require.Equal(t, fiber.StatusOK, res.Status)
	assert.Empty(t, res.Body["data"])
}

func TestEmailConfigurationRoutes(t *testing.T) {
	e := newEnv(t)
	token, admin := e.login(models.RoleAdmin)

	res := e.do(fiber.MethodGet, "/api/email-configuration", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	cfg := data(t, res)
	assert.Equal(t, false, cfg["hasPassword"])

	res = e.do(fiber.MethodPost, "/api/email-configuration/test", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, mail.ErrNotConfigured.Error(), res.Body["message"])

	res = e.do(fiber.MethodPut, "/api/email-configuration", token, fiber.Map{
		"id":              cfg["id"],
		"emailMailer":     "smtp",
		"emailHost":       "smtp.shop.test",
		"emailPort":       "587",
		"emailUserName":   "mailer",
		"emailPassword":   "relay-secret",
		"emailEncryption": "tls",
		"emailAddress":    "noreply@shop.test",
	})
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)
	assert.NotContains(t, res.Raw, "relay-secret")
	assert.Equal(t, true, data(t, res)["hasPassword"])
	assert.EqualValues(t, 587, data(t, res)["emailPort"])

	res = e.do(fiber.MethodPut, "/api/email-configuration", token, fiber.Map{"id": cfg["id"], "emailPort": "port"})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)

	res = e.do(fiber.MethodPost, "/api/email-configuration/test", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)
	require.Len(t, e.outbox.sent, 1)
	assert.Equal(t, []string{admin.Email}, e.outbox.sent[0].To)

	userToken, _ := e.login(models.RoleUser)
	res = e.do(fiber.MethodGet, "/api/email-configuration", userToken, nil)
	assert.Equal(t, fiber.StatusForbidden, res.Status)
}

func TestBackupRoutes(t *testing.T) {
	e := newEnv(t)
	token, _ := e.login(models.RoleSuperAdmin)

	res := e.do(fiber.MethodPost, "/api/database-backup", token, nil)
	require.Equal(t, fiber.StatusCreated, res.Status, res.Raw)

	created := data(t, res)
	assert.Equal(t, models.TriggerManual, created["trigger"])
	assert.True(t, strings.HasPrefix(created["fileName"].(string), "shop-backup-"))

	res = e.do(fiber.MethodGet, "/api/database-backup?search=shop", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)
	assert.EqualValues(t, 1, res.Body["totalData"])
	assert.Len(t, res.Body["data"], 1)

	res = e.do(fiber.MethodGet, "/api/database-backup/schedule", token, nil)
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	res = e.do(fiber.MethodDelete, "/api/database-backup/permanent", token, fiber.Map{"ids": []uint64{}})
	assert.Equal(t, fiber.StatusBadRequest, res.Status)
	assert.Equal(t, backup.ErrNoIDs.Error(), res.Body["message"])

	res = e.do(fiber.MethodDelete, "/api/database-backup/permanent", token, fiber.Map{"ids": []uint64{4242}})
	assert.Equal(t, fiber.StatusNotFound, res.Status)

	res = e.do(fiber.MethodDelete, "/api/database-backup/permanent", token, fiber.Map{"ids": []any{created["id"]}})
	require.Equal(t, fiber.StatusOK, res.Status, res.Raw)

	_, err := os.Stat(created["filePath"].(string))
	assert.True(t, os.IsNotExist(err))
}
