package config

import (
	"errors"
	"reflect"
	"strings"

	"inventree-connect/core/auth"
	"inventree-connect/core/database"
	"inventree-connect/core/logger"
	"inventree-connect/core/server"
	"inventree-connect/core/storage"
	"inventree-connect/feature/cycle"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Each section is owned by the package that consumes it.
type Config struct {
	// Source holds the Shopware Admin API settings.
	Source shopware.Config `mapstructure:"source"`
	// Target holds the InvenTree API settings.
	Target inventree.Config `mapstructure:"target"`
	// Sync holds the cycle cadence and limits.
	Sync cycle.Config `mapstructure:"sync"`
	// Auth holds the token refresh settings.
	Auth auth.Config `mapstructure:"auth"`
	// Server holds configuration for the HTTP status server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the report archive.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the local database.
	Database database.Config `mapstructure:"database"`
}

type validator interface {
	Validate() error
}

// Validate checks every section and reports all failures together.
func (c *Config) Validate() error {
	var errs []error
	for _, s := range []validator{c.Source, c.Target, c.Sync, c.Auth, c.Server, c.Storage, c.Log, c.Database} {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Missing .env is fine, production passes plain environment variables.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	bindValues(v, Config{}, "")

	// SOURCE_ACCESS_KEY -> source.access_key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues registers every mapstructure key with its default tag so
// AutomaticEnv can resolve it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Empty defaults are set too, otherwise the key is unknown to AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
