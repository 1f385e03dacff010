// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL or SQLite connections based on
// the application's configuration. MySQL is the production store; SQLite serves local
// runs and tests.
//
// # Connect
//
// Connect opens the configured dialect, applies pool limits and pings the server within
// the configured timeout. Query logging is silent unless WithLogger is passed.
//
// # Schema Inspection
//
// GetTableColumns lists columns of one table. CheckSchema compares the live schema with
// the expected tables and columns of the entity store, which backs the check command.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	issues, err := database.CheckSchema(db, store.ExpectedSchema())
package database
