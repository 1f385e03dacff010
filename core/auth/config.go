package auth

import (
	"fmt"
	"time"
)

// Config holds configuration for token refresh.
type Config struct {
	// RefreshSeconds is how often token expiry is polled.
	RefreshSeconds int `mapstructure:"refresh_seconds" default:"1"`
	// SkewSeconds renews a token this long before it expires.
	SkewSeconds int `mapstructure:"skew_seconds" default:"30"`
}

// Interval returns the polling interval.
func (c Config) Interval() time.Duration {
	if c.RefreshSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.RefreshSeconds) * time.Second
}

// Skew returns the early renewal window.
func (c Config) Skew() time.Duration {
	return time.Duration(c.SkewSeconds) * time.Second
}

// Validate checks the refresh settings.
func (c Config) Validate() error {
	if c.RefreshSeconds < 0 || c.SkewSeconds < 0 {
		return fmt.Errorf("auth: refresh_seconds and skew_seconds must not be negative")
	}
	return nil
}
