// Package mirror holds the reconcile adapters of the mirrored kinds.
//
// Customers become Target companies, addresses become company addresses and
// products (with their variants flattened) become parts. The reconcile engine
// drives paging, sweeping and push selection; each adapter only knows how its
// kind is listed, stored and created.
//
// Customers whose (first name, last name, email) already exists locally get a
// " (n)" suffix on their last name when inserted; the suffix is kept when the
// Source record is updated later.
package mirror
