// Package format attaches the global settings to each request and rewrites
// the data member of json responses for display: timestamps are rendered in
// the configured timezone and date format, relative media paths become
// absolute urls.
package format

import (
	"bytes"
	"context"
	"strings"
	"time"
	_ "time/tzdata" // timezone names come from the settings

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

const settingsKey = "globalSettings"

// AttachFailedMessage is returned when the settings can not be loaded.
const AttachFailedMessage = "Failed to attach global settings."

// imageFields hold media paths.
var imageFields = map[string]struct{}{ //nolint:gochecknoglobals
	"image":        {},
	"authorImage":  {},
	"ogImage":      {},
	"twitterImage": {},
	"avatar":       {},
	"logo":         {},
	"favicon":      {},
}

// dateLayouts maps the dateFormat setting onto go layouts.
var dateLayouts = map[string]string{ //nolint:gochecknoglobals
	"YYYY-MM-DD": "2006-01-02",
	"MM-DD-YYYY": "01-02-2006",
	"DD-MM-YYYY": "02-01-2006",
}

// Source loads the global settings.
type Source interface {
	Global(ctx context.Context) (*models.GlobalSettings, error)
}

// Attach stores the global settings in the request locals.
func Attach(src Source) fiber.Handler {
	return func(c fiber.Ctx) error {
		gs, err := src.Global(c.Context())
		if err != nil {
			log.Error().Err(err).Msg("failed to load global settings")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": AttachFailedMessage,
			})
		}

		c.Locals(settingsKey, gs)

		return c.Next()
	}
}

// Settings returns the settings stored by Attach, nil outside of it.
func Settings(c fiber.Ctx) *models.GlobalSettings {
	gs, _ := c.Locals(settingsKey).(*models.GlobalSettings)
	return gs
}

// New returns the response formatter. serverURL prefixes relative media paths.
func New(serverURL string) fiber.Handler {
	base := strings.TrimRight(serverURL, "/")

	return func(c fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		resp := c.Response()
		if !bytes.HasPrefix(resp.Header.ContentType(), []byte(fiber.MIMEApplicationJSON)) {
			return nil
		}

		body := resp.Body()
		if !bytes.Contains(body, []byte(`"data"`)) {
			return nil
		}

		var doc map[string]any

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()

		if err := dec.Decode(&doc); err != nil {
			return nil //nolint:nilerr
		}

		data, ok := doc["data"]
		if !ok || data == nil {
			return nil
		}

		r := rewriter{base: base, loc: time.UTC}
		if gs := Settings(c); gs != nil {
			r.loc = location(gs.Timezone)
			r.layout = dateLayouts[gs.DateFormat]
		}

		doc["data"] = r.walk(data)

		out, err := json.Marshal(doc)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("failed to format response")
			return nil
		}

		resp.SetBodyRaw(out)

		return nil
	}
}

func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}

	return loc
}

type rewriter struct {
	base   string
	loc    *time.Location
	layout string
}

func (r rewriter) walk(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = r.field(k, child)
		}

		return val
	case []any:
		for i, child := range val {
			val[i] = r.walk(child)
		}

		return val
	default:
		return v
	}
}

func (r rewriter) field(key string, v any) any {
	s, isString := v.(string)

	switch {
	case isString && strings.HasSuffix(key, "At"):
		return r.date(s)
	case isString:
		if _, ok := imageFields[key]; ok {
			return r.url(s)
		}

		return s
	case key == "images":
		if list, ok := v.([]any); ok {
			for _, item := range list {
				if img, ok := item.(map[string]any); ok {
					if u, ok := img["url"].(string); ok {
						img["url"] = r.url(u)
					}
				}
			}
		}
	}

	return r.walk(v)
}

func (r rewriter) date(s string) string {
	if r.layout == "" {
		return s
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}

	return t.In(r.loc).Format(r.layout)
}

func (r rewriter) url(s string) string {
	if s == "" || r.base == "" || strings.HasPrefix(s, "http") {
		return s
	}

	return r.base + "/" + strings.TrimLeft(s, "/")
}
