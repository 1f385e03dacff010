// Package config loads the application settings.
//
// Values come from environment variables, optionally seeded from a .env
// file in the working directory. Keys are the lower-cased, underscore
// separated section and field names:
//
//	SOURCE_URL, SOURCE_ACCESS_KEY, SOURCE_SECRET_KEY
//	TARGET_URL, TARGET_USER, TARGET_PASSWORD, TARGET_CURRENCY
//	SYNC_INTERVAL_SECONDS, SYNC_ORDER_WINDOW
//	DATABASE_DRIVER, DATABASE_NAME
//	STORAGE_ENABLED, STORAGE_BUCKET
//	SERVER_PORT, SERVER_API_KEY
//
// Defaults live in the `default` struct tags of each section.
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
