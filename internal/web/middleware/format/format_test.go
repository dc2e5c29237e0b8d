package format

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopadmin/shop-admin/internal/db/models"
)

type staticSource struct {
	gs  models.GlobalSettings
	err error
}

func (s staticSource) Global(context.Context) (*models.GlobalSettings, error) {
	if s.err != nil {
		return nil, s.err
	}

	return &s.gs, nil
}

func newApp(src Source, route fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(Attach(src), New("https://api.shop.test/"))
	app.Get("/x", route)

	return app
}

func decode(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	return resp.StatusCode, body
}

func TestFormatDatesAndImages(t *testing.T) {
	created := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)

	src := staticSource{gs: models.GlobalSettings{Timezone: "Asia/Dhaka", DateFormat: "DD-MM-YYYY"}}
	app := newApp(src, func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"data": []fiber.Map{{
				"name":      "About",
				"createdAt": created,
				"ogImage":   "uploads/og.png",
				"logo":      "https://cdn.test/logo.png",
				"avatar":    "",
				"images":    []fiber.Map{{"url": "uploads/a.png"}},
				"total":     3,
			}},
		})
	})

	status, body := decode(t, app)
	require.Equal(t, fiber.StatusOK, status)

	item := body["data"].([]any)[0].(map[string]any)

	// 22:30 UTC is already the next day in Dhaka (+06:00)
	assert.Equal(t, "10-03-2024", item["createdAt"])
	assert.Equal(t, "https://api.shop.test/uploads/og.png", item["ogImage"])
	assert.Equal(t, "https://cdn.test/logo.png", item["logo"])
	assert.Equal(t, "", item["avatar"])
	assert.Equal(t, "https://api.shop.test/uploads/a.png", item["images"].([]any)[0].(map[string]any)["url"])
	assert.EqualValues(t, 3, item["total"])
	assert.Equal(t, "About", item["name"])
}

func TestFormatLeavesOtherBodiesAlone(t *testing.T) {
	app := newApp(staticSource{gs: models.GlobalSettings{DateFormat: "YYYY-MM-DD"}}, func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "ok", "createdAt": "2024-01-01T00:00:00Z"})
	})

	_, body := decode(t, app)
	assert.Equal(t, "2024-01-01T00:00:00Z", body["createdAt"])
}

func TestAttachFailure(t *testing.T) {
	app := newApp(staticSource{err: errors.New("db down")}, func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	status, body := decode(t, app)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, AttachFailedMessage, body["message"])
}

func TestSettingsLocal(t *testing.T) {
	var got *models.GlobalSettings

	app := newApp(staticSource{gs: models.GlobalSettings{Currency: "EUR"}}, func(c fiber.Ctx) error {
		got = Settings(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.NotNil(t, got)
	assert.Equal(t, "EUR", got.Currency)
}
