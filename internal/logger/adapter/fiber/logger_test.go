package fiber_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/shopadmin/shop-admin/internal/logger/adapter/fiber"

	"github.com/shopadmin/shop-admin/internal/logger"
)

// expectedLoggerJSONFormat implements loggers default json format.
type expectedLoggerJSONFormat struct {
	IP     net.IP    `json:"IP"`
	Status int       `json:"status"`
	URI    string    `json:"URI"`
	Method string    `json:"method"`
	Host   string    `json:"host"`
	Error  string    `json:"error"`
	Time   time.Time `json:"time"`
}

func consoleConfig() logger.Log {
	return logger.Log{
		EnableAccessLogToConsole: true,
		Console:                  logger.Console{Enabled: true},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		config     adapter.Config
		targetPath string
		want       *expectedLoggerJSONFormat
	}{
		{
			name:       "empty no output at all",
			targetPath: "/",
		},
		{
			name:       "get / log to console json",
			targetPath: "/",
			config:     adapter.Config{Config: consoleConfig()},
			want: &expectedLoggerJSONFormat{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusOK,
				URI:    "/",
				Method: fiber.MethodGet,
				Host:   "example.com",
			},
		},
		{
			name:       "get log with params",
			targetPath: "/?test=123",
			config:     adapter.Config{Config: consoleConfig()},
			want: &expectedLoggerJSONFormat{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusOK,
				URI:    "/?test=123",
				Method: fiber.MethodGet,
				Host:   "example.com",
			},
		},
		{
			name:       "unknown route logs not found",
			targetPath: "/no_path?test=123",
			config:     adapter.Config{Config: consoleConfig()},
			want: &expectedLoggerJSONFormat{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusNotFound,
				URI:    "/no_path?test=123",
				Method: fiber.MethodGet,
				Host:   "example.com",
			},
		},
		{
			name:       "failing handler status comes from error handler",
			targetPath: "/fail",
			config: adapter.Config{
				Config: consoleConfig(),
				ErrorHandler: func(c fiber.Ctx, _ error) error {
					return c.Status(fiber.StatusTeapot).SendString("teapot")
				},
			},
			want: &expectedLoggerJSONFormat{
				IP:     net.ParseIP("0.0.0.0"),
				Status: fiber.StatusTeapot,
				URI:    "/fail",
				Method: fiber.MethodGet,
				Host:   "example.com",
				Error:  "boom",
			},
		},
		{
			name:       "health check is not logged",
			targetPath: "/health",
			config: adapter.Config{
				Config: logger.Log{
					EnableAccessLogToConsole: true,
					DisableCheckAlive:        true,
					Console:                  logger.Console{Enabled: true},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := testMiddlewareHelper(t, tt.targetPath, tt.config)
			require.NoError(t, err)

			if tt.want == nil {
				assert.Empty(t, output)
				return
			}

			require.NotEmpty(t, output)

			var decodedOutput expectedLoggerJSONFormat
			require.NoError(t, json.Unmarshal([]byte(output), &decodedOutput))

			assert.Equal(t, tt.want.Host, decodedOutput.Host)
			assert.Equal(t, tt.want.Method, decodedOutput.Method)
			assert.Equal(t, tt.want.Status, decodedOutput.Status)
			assert.Equal(t, tt.want.IP, decodedOutput.IP)
			assert.Equal(t, tt.want.URI, decodedOutput.URI)
			assert.Equal(t, tt.want.Error, decodedOutput.Error)
		})
	}
}

func testMiddlewareHelper(t *testing.T, targetPath string, adapterConfig adapter.Config) (string, error) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	// capture stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		Immutable:     true,
	})

	app.Use(adapter.New(adapterConfig))

	app.Get("/", func(ctx fiber.Ctx) error {
		return ctx.SendString("hello test")
	})
	app.Get("/health", func(ctx fiber.Ctx) error {
		return ctx.SendString("ok")
	})
	app.Get("/fail", func(_ fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "boom")
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, targetPath, nil), fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		_ = w.Close()
		os.Stdout = stdout
		os.Stderr = stderr

		return "", err
	}

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// back to normal state
	_ = w.Close()
	os.Stdout = stdout // restoring the real stdout
	os.Stderr = stderr // restoring the real stderr

	return <-outC, nil
}
