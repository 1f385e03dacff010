// Package server holds the HTTP status server configuration.
//
// The daemon command builds the Fiber application itself; this package only defines
// whether the status API runs, where it listens and which API key guards it.
package server
