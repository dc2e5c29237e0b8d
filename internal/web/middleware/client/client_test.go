package client

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{
		APIKey:       "k3y",
		SkipPaths:    []string{"/", "/health"},
		SkipPrefixes: []string{"/uploads/"},
	}))

	ok := func(c fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/", ok)
	app.Get("/health", ok)
	app.Get("/uploads/*", ok)
	app.Get("/api/tracking-ids", ok)

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    int
	}{
		{name: "home", path: "/", want: fiber.StatusOK},
		{name: "health", path: "/health", want: fiber.StatusOK},
		{name: "uploads", path: "/uploads/logo.png", want: fiber.StatusOK},
		{name: "no headers", path: "/api/tracking-ids", want: fiber.StatusForbidden},
		{
			name:    "wrong key",
			path:    "/api/tracking-ids",
			headers: map[string]string{HeaderRequestedWith: "web", HeaderAPIKey: "nope"},
			want:    fiber.StatusForbidden,
		},
		{
			name:    "missing marker",
			path:    "/api/tracking-ids",
			headers: map[string]string{HeaderAPIKey: "k3y"},
			want:    fiber.StatusForbidden,
		},
		{
			name:    "frontend",
			path:    "/api/tracking-ids",
			headers: map[string]string{HeaderRequestedWith: "web", HeaderAPIKey: "k3y"},
			want:    fiber.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestNewWithoutKey(t *testing.T) {
	app := fiber.New()
	app.Use(New(Config{}))
	app.Get("/api/x", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
