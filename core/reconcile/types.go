package reconcile

// Kind names a mirrored entity collection.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindAddress  Kind = "address"
	KindProduct  Kind = "product"
	// KindOrder is linked through the store like the mirrored kinds but has no
	// mirror adapter; orders are assembled and pushed by the fulfillment flow.
	KindOrder Kind = "order"
)

// Record is one normalized Source record of some kind.
type Record interface {
	// SourceID returns the record's id in Source.
	SourceID() string
}

// Page is one page of Source records.
type Page struct {
	// Records are the normalized records of the page, possibly more or fewer
	// than were listed (flattened variants, skipped entries).
	Records []Record
	// Fetched is the number of raw items the listing returned; a value below the
	// requested limit ends the pull.
	Fetched int
}

// Result summarizes one Sync of a kind.
type Result struct {
	Kind Kind `json:"kind"`

	// Pull
	Fetched      int  `json:"fetched"`
	Created      int  `json:"created"`
	Updated      int  `json:"updated"`
	Skipped      int  `json:"skipped"`
	Failed       int  `json:"failed"`
	Swept        int  `json:"swept"`
	SweepSkipped bool `json:"sweep_skipped"`

	// Push
	Pushed     int `json:"pushed"`
	PushFailed int `json:"push_failed"`
	Dropped    int `json:"dropped"`
}

// Counts returns the result as outcome -> count.
func (r *Result) Counts() map[string]int {
	return map[string]int{
		"fetched":     r.Fetched,
		"created":     r.Created,
		"updated":     r.Updated,
		"skipped":     r.Skipped,
		"failed":      r.Failed,
		"swept":       r.Swept,
		"pushed":      r.Pushed,
		"push_failed": r.PushFailed,
		"dropped":     r.Dropped,
	}
}
