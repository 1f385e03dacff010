package inventree

import (
	"fmt"
	"time"
)

// Config holds the InvenTree API settings.
type Config struct {
	// URL is the server base URL, without the /api suffix.
	URL string `mapstructure:"url" default:""`
	// User is the account used to obtain an API token.
	User string `mapstructure:"user" default:""`
	// Password is the account password.
	Password string `mapstructure:"password" default:""`
	// TimeoutSeconds bounds every request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// Currency is the ISO code used for companies, orders and line prices.
	Currency string `mapstructure:"currency" default:"EUR"`
}

// Timeout returns the request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the required settings.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("target: url is required")
	}
	if c.User == "" || c.Password == "" {
		return fmt.Errorf("target: user and password are required")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("target: currency %q is not an ISO 4217 code", c.Currency)
	}
	return nil
}
