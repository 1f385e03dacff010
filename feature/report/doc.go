// Package report holds the per-cycle summary: the counts of every concern,
// the overall status and timing. Reports are logged, kept in memory for the
// status endpoint and optionally archived as JSON objects in object storage.
package report
