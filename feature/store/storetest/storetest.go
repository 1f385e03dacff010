// Package storetest opens migrated in-memory stores for tests.
package storetest

import (
	"context"
	"testing"

	"inventree-connect/core/database"
	"inventree-connect/feature/store"

	"github.com/stretchr/testify/require"
)

// New returns a migrated store on a private in-memory sqlite database.
func New(t testing.TB) *store.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s := store.New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// SourceID returns a pointer to id, for building fixtures.
func SourceID(id string) *string {
	return &id
}
