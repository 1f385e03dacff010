// Package cleanup deletes customers and addresses that the last sweeps found
// absent from Source. It only runs on demand: Plan reports what would be
// deleted and Apply executes a confirmed plan, deleting linked companies in
// Target before their local rows.
package cleanup
