package auth_test

import (
	"net/http/httptest"
	"testing"

	"inventree-connect/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/status", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendString("m") })
	return app
}

func TestAuth(t *testing.T) {
	app := newApp(auth.Config{ApiKey: "secret", Skip: []string{"/metrics"}})

	tests := []struct {
		name   string
		path   string
		header string
		value  string
		want   int
	}{
		{"Missing", "/status", "", "", fiber.StatusUnauthorized},
		{"Wrong", "/status", auth.HeaderAPIKey, "nope", fiber.StatusUnauthorized},
		{"Header", "/status", auth.HeaderAPIKey, "secret", fiber.StatusOK},
		{"Bearer", "/status", fiber.HeaderAuthorization, "Bearer secret", fiber.StatusOK},
		{"Skipped", "/metrics", "", "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	app := newApp(auth.Config{})

	resp, err := app.Test(httptest.NewRequest("GET", "/status", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
