// Package reconcile provides the generic mirror engine that keeps Shopware (Source)
// and InvenTree (Target) entity collections consistent through the local store.
//
// # Architecture
//
// 1. Engine: owns the control flow shared by every mirrored kind. A pull pages
// through the Source listing until a short page arrives, upserts each record and
// runs a mark-and-sweep over the store; a push selects records present in Source
// but not linked to Target and creates them there.
//
// 2. Adapter: kind-specific listing, normalization, storage and Target payloads
// (customers, addresses, products live in feature/mirror).
//
// 3. Store: the sweep and link operations of the entity store.
//
// # Sweep
//
//	BeginSweep(kind)       every record: seen = false
//	MarkSeen(kind, id)     per record listed in Source
//	EndSweep(kind)         unseen records: in_source = false
//
// A listing failure returns before EndSweep, so a Source outage never marks
// records absent. A pull in which any listed record failed to upsert skips
// EndSweep as well. Records are never deleted here.
//
// # Parents
//
// The engine implements Resolver. An adapter whose payload references a parent
// (an address needs its company) calls EnsureTarget, which pushes the parent first
// when it is not linked yet. Concurrent requests for the same record share one push.
//
// # Errors
//
// errors.go holds the error taxonomy shared with the gateways and the order
// state machine: transient remote failures, referential gaps, invariant
// violations and business shortfalls.
package reconcile
