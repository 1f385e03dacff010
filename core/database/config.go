package database

import "fmt"

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (mysql, sqlite).
	Driver string `mapstructure:"driver" default:"mysql"`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" default:"inventree_connect"`
	// TimeoutSeconds bounds connection setup and I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// Validate checks the driver and required connection fields.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMySQL:
		if c.Host == "" || c.Name == "" {
			return fmt.Errorf("database: host and name are required for mysql")
		}
	case DriverSQLite:
		if c.Name == "" {
			return fmt.Errorf("database: name is required for sqlite")
		}
	default:
		return fmt.Errorf("database: unsupported driver %q", c.Driver)
	}
	return nil
}
