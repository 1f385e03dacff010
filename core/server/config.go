package server

import (
	"fmt"
	"strconv"
)

// Config holds configuration for the HTTP status server.
type Config struct {
	// Enabled toggles the status and trigger API.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}

// Validate checks that the port is a usable TCP port.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	p, err := strconv.Atoi(c.Port)
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("server: invalid port %q", c.Port)
	}
	return nil
}
