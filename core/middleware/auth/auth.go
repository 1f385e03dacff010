package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderAPIKey carries the API key.
const HeaderAPIKey = "X-API-Key"

// Config holds the middleware settings.
type Config struct {
	// ApiKey is the expected key. Empty disables the check.
	ApiKey string
	// Skip lists paths served without a key.
	Skip []string
}

// New returns a middleware that rejects requests without the configured API key.
// The key is read from X-API-Key or a Bearer Authorization header.
func New(cfg Config) fiber.Handler {
	skip := make(map[string]bool, len(cfg.Skip))
	for _, p := range cfg.Skip {
		skip[p] = true
	}

	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" || skip[c.Path()] {
			return c.Next()
		}

		key := c.Get(HeaderAPIKey)
		if key == "" {
			key = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
