package storage

import "fmt"

// Config holds configuration for the object storage used to archive cycle reports.
type Config struct {
	// Enabled toggles report archiving.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket reports are written to.
	Bucket string `mapstructure:"bucket" default:"inventree-connect"`
	// Prefix is the object key prefix for reports.
	Prefix string `mapstructure:"prefix" default:"reports"`
	// Retention is the number of reports kept; 0 keeps all.
	Retention int `mapstructure:"retention" default:"500"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Validate checks required fields when archiving is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" || c.Bucket == "" {
		return fmt.Errorf("storage: endpoint and bucket are required")
	}
	if c.Retention < 0 {
		return fmt.Errorf("storage: retention must not be negative")
	}
	return nil
}
