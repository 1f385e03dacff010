package reconcile

import "errors"

// Transient remote failures; the affected work is retried next cycle.
var (
	// ErrNoData means a remote call produced nothing usable (transport failure,
	// timeout, unreadable body). It never justifies marking an entity absent.
	ErrNoData = errors.New("remote returned no data")
	// ErrNotFound is an explicit not-found answer from a remote system.
	ErrNotFound = errors.New("remote record not found")
	// ErrRequestFailed is a non-success status other than not-found.
	ErrRequestFailed = errors.New("remote request failed")
	// ErrInvalidResponse is a success status whose body could not be decoded.
	ErrInvalidResponse = errors.New("remote response invalid")
)

// Referential gaps.
var (
	// ErrParentMissing is returned by a push whose parent row no longer exists
	// locally; the orphan has been removed.
	ErrParentMissing = errors.New("parent record missing")
	// ErrSkipped is returned by an upsert that deliberately ignores a record.
	ErrSkipped = errors.New("record skipped")
)

// Invariant violations; logged at error level and left for manual review.
var (
	ErrInvariant    = errors.New("invariant violation")
	ErrUnknownState = errors.New("unknown state")
	ErrUnknownKind  = errors.New("unknown entity kind")
)

// ErrInsufficientStock is a business shortfall, reported as a warning.
var ErrInsufficientStock = errors.New("insufficient stock")
