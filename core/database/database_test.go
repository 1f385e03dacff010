package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "localhost",
			Port:           9999,
			User:           "root",
			Password:       "wrongpassword",
			Name:           "inventree_connect",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("SQLite Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		assert.Equal(t, "sqlite", db.Dialector.Name())
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		_, err := Connect(Config{Driver: "oracle"})
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"MySQL", Config{Driver: DriverMySQL, Host: "db", Name: "x"}, false},
		{"MySQLNoHost", Config{Driver: DriverMySQL, Name: "x"}, true},
		{"SQLite", Config{Driver: DriverSQLite, Name: "x.db"}, false},
		{"Unknown", Config{Driver: "pg"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:", 5))
	assert.Equal(t, "a.db?mode=ro", sqliteDSN("a.db?mode=ro", 5))
	assert.Equal(t, "a.db?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", sqliteDSN("a.db", 5))
}
