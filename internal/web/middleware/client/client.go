package client

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"
)

const (
	// HeaderRequestedWith must carry RequestedWithWeb.
	HeaderRequestedWith = "X-Requested-With"

	// HeaderAPIKey carries the shared api key.
	HeaderAPIKey = "X-API-Key"

	// RequestedWithWeb is the only accepted client marker.
	RequestedWithWeb = "web"

	// Message is returned with 403 to unknown clients.
	Message = "Client side is not allow"
)

// Config of the header check.
type Config struct {
	// APIKey is the expected X-API-Key, an empty key disables the check.
	APIKey string

	// SkipPaths are matched exactly.
	SkipPaths []string

	// SkipPrefixes are matched as path prefixes.
	SkipPrefixes []string
}

// New returns the header check middleware.
func New(cfg Config) fiber.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c fiber.Ctx) error {
		if cfg.APIKey == "" || c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		path := c.Path()
		if _, ok := skip[path]; ok {
			return c.Next()
		}

		for _, prefix := range cfg.SkipPrefixes {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		if c.Get(HeaderRequestedWith) == RequestedWithWeb &&
			subtle.ConstantTimeCompare([]byte(c.Get(HeaderAPIKey)), []byte(cfg.APIKey)) == 1 {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": Message,
		})
	}
}
