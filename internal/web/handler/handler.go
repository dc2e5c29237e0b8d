// Package handler holds what the api handlers share: their dependencies,
// response envelopes, error mapping and pagination.
package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/auth"
	"github.com/shopadmin/shop-admin/internal/backup"
	"github.com/shopadmin/shop-admin/internal/config"
	"github.com/shopadmin/shop-admin/internal/mail"
	"github.com/shopadmin/shop-admin/internal/pages"
	"github.com/shopadmin/shop-admin/internal/settings"
	"github.com/shopadmin/shop-admin/internal/web/statestore"
)

const (
	// APIPrefix is the prefix of every json route.
	APIPrefix = "/api"

	// RootPath is the root path the route group.
	RootPath = "/"

	// ErrNilDepsFatalLogMsg is used if app or deps are nil.
	ErrNilDepsFatalLogMsg = "app or deps is nil"

	defaultLimit = 10
	maxLimit     = 100
)

// ErrNilDeps is returned by Init when app or deps are missing.
var ErrNilDeps = errors.New(ErrNilDepsFatalLogMsg)

// Deps bundles the services the handlers call. Google is nil when Google
// login is disabled.
type Deps struct {
	Cfg        *config.Config
	DB         *gorm.DB
	Auth       *auth.Service
	Google     auth.IdentityProvider
	States     *statestore.Store
	Settings   *settings.Service
	Pages      *pages.Service
	Mailer     *mail.Mailer
	MailConfig *mail.ConfigStore
	Backups    *backup.Service
	Scheduler  *backup.Scheduler

	// Alive reports false while the server drains before shutdown.
	Alive func() bool
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Deps) error
}

// RequireAuth is the bearer token guard.
func (d *Deps) RequireAuth() fiber.Handler {
	return auth.RequireAuth(d.Auth.Sessions())
}

// Data writes {"success":true,"data":data}.
func Data(c fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

// Message writes {"success":true,"message":msg} plus the extra members.
func Message(c fiber.Ctx, status int, msg string, extra fiber.Map) error {
	body := fiber.Map{"success": true, "message": msg}
	for k, v := range extra {
		body[k] = v
	}

	return c.Status(status).JSON(body)
}

// Payload writes the envelope of the authentication api.
func Payload(c fiber.Ctx, status int, msg string, payload any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "message": msg, "payload": payload})
}

// Page is the pagination of a list request.
type Page struct {
	Skip  int
	Limit int
}

// Paginate reads page (from 1) and limit (1..100) from the query.
func Paginate(c fiber.Ctx) Page {
	page := fiber.Query[int](c, "page", 1)
	if page < 1 {
		page = 1
	}

	limit := fiber.Query[int](c, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}

	return Page{Skip: (page - 1) * limit, Limit: limit}
}

// List writes one page of data with its pagination block.
func List(c fiber.Ctx, data any, total int64, p Page, extra fiber.Map) error {
	body := fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"total": total,
			"skip":  p.Skip,
			"limit": p.Limit,
		},
	}

	for k, v := range extra {
		body[k] = v
	}

	return c.JSON(body)
}

// Status maps err onto the first matching sentinel of codes. Unmatched
// errors are returned unchanged for the error handler.
func Status(err error, codes map[error]int) error {
	for target, code := range codes {
		if errors.Is(err, target) {
			return fiber.NewError(code, target.Error())
		}
	}

	return err
}

// IDs is the body of the bulk endpoints.
type IDs struct {
	IDs []uint64 `json:"ids"`
}

// DeviceInfo describes the client of c the way sessions record it.
func DeviceInfo(c fiber.Ctx) string {
	ua := strings.TrimSpace(c.Get(fiber.HeaderUserAgent))
	if ua == "" {
		ua = "unknown"
	}

	return ua + " | IP: " + c.IP()
}
