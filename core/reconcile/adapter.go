package reconcile

import "context"

// Adapter defines the kind-specific half of a mirror sync.
// The engine owns paging, sweeping and push selection; the adapter knows how one
// kind is listed in Source, stored locally and created in Target.
type Adapter interface {
	// Kind returns the entity kind this adapter mirrors.
	Kind() Kind

	// FetchPage lists one page (1-based) of Source records.
	// Any error aborts the pull before the sweep is finalized.
	FetchPage(ctx context.Context, page, limit int) (*Page, error)

	// Upsert stores rec: insert when its source id is unknown, otherwise patch the
	// mutable fields. It returns the local id and whether a row was inserted.
	// Returning ErrSkipped ignores the record without counting a failure.
	Upsert(ctx context.Context, rec Record) (localID uint, created bool, err error)

	// Push creates the local record localID in Target and returns its Target id.
	// Parent records are resolved through parents, which pushes them on demand.
	// Returning ErrParentMissing reports that the orphan was dropped.
	Push(ctx context.Context, localID uint, parents Resolver) (targetID string, err error)
}

// PageSizer is implemented by adapters whose listing uses its own page size.
type PageSizer interface {
	PageSize() int
}

// Resolver returns the Target id of a local record, creating it in Target first
// when it has none.
type Resolver interface {
	EnsureTarget(ctx context.Context, kind Kind, localID uint) (string, error)
}

// Store is the persistence the engine needs for every mirrored kind.
type Store interface {
	// BeginSweep clears the seen flag of every record of kind.
	BeginSweep(ctx context.Context, kind Kind) error
	// MarkSeen flags a record as present in Source during the current sweep.
	MarkSeen(ctx context.Context, kind Kind, localID uint) error
	// EndSweep marks every unseen record as absent from Source and returns how many
	// records changed.
	EndSweep(ctx context.Context, kind Kind) (int64, error)
	// PendingPush lists records present in Source but not yet linked to Target.
	PendingPush(ctx context.Context, kind Kind) ([]uint, error)
	// TargetID returns the linked Target id, or "" when the record is not linked.
	TargetID(ctx context.Context, kind Kind, localID uint) (string, error)
	// LinkTarget stores targetID and sets the in-target flag in one write.
	LinkTarget(ctx context.Context, kind Kind, localID uint, targetID string) error
}
