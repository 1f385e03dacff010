// Package middleware contains HTTP middleware for the status API.
//
// # Components
//
//   - auth: API key validation for every route except an explicit skip list.
//   - rayid: Tags every request with a ray id, kept in locals and echoed in the
//     X-Ray-ID response header for tracing.
package middleware
