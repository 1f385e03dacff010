package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum enabled level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (json, console).
	Format string `mapstructure:"format" default:"json"`
}

// Validate checks the level and format names.
func (c Config) Validate() error {
	if c.Level != "" {
		if _, err := zapcore.ParseLevel(c.Level); err != nil {
			return fmt.Errorf("log: invalid level %q", c.Level)
		}
	}
	switch c.Format {
	case "", "json", "console":
		return nil
	default:
		return fmt.Errorf("log: unsupported format %q", c.Format)
	}
}
