package loader_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"inventree-connect/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	if s.err != nil {
		return s.err
	}
	s.loaded = true
	app.Get("/"+s.name, func(c *fiber.Ctx) error { return c.SendString(s.name) })
	return nil
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()
	on := &stubFeature{name: "on", enabled: true}
	off := &stubFeature{name: "off"}

	mgr := loader.NewManager(zap.NewNop())
	mgr.Register(on)
	mgr.Register(off)
	require.NoError(t, mgr.LoadAll(app))

	assert.True(t, on.loaded)
	assert.False(t, off.loaded)

	resp, err := app.Test(httptest.NewRequest("GET", "/off", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestManager_LoadAllError(t *testing.T) {
	mgr := loader.NewManager(zap.NewNop())
	mgr.Register(&stubFeature{name: "bad", enabled: true, err: errors.New("boom")})

	err := mgr.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "bad")
}
