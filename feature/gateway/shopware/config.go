package shopware

import (
	"fmt"
	"time"
)

// Config holds the Shopware Admin API settings.
type Config struct {
	// URL is the shop base URL, without the /api suffix.
	URL string `mapstructure:"url" default:""`
	// AccessKey is the integration access key id.
	AccessKey string `mapstructure:"access_key" default:""`
	// SecretKey is the integration secret.
	SecretKey string `mapstructure:"secret_key" default:""`
	// TimeoutSeconds bounds every request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
	// PageSize is the listing page size for customers and addresses.
	PageSize int `mapstructure:"page_size" default:"500"`
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
		return fmt.Errorf("source: url is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("source: access_key and secret_key are required")
	}
	if c.PageSize < 0 {
		return fmt.Errorf("source: page_size must not be negative")
	}
	return nil
}
