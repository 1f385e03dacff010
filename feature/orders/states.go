package orders

import (
	"fmt"
	"strings"

	"inventree-connect/core/reconcile"
	"inventree-connect/feature/store"
)

// Rank is the canonical fulfillment stage of an order in either system.
type Rank int

const (
	Pending Rank = iota + 1
	InProgress
	Complete
	// Cancelled is outside the Pending < InProgress < Complete order.
	Cancelled
)

// translation maps the raw state names of both systems to ranks.
var translation = map[string]Rank{
	"Pending":        Pending,
	"Offen":          Pending,
	"Open":           Pending,
	"In Progress":    InProgress,
	"In Bearbeitung": InProgress,
	"Complete":       Complete,
	"Abgeschlossen":  Complete,
	"Shipped":        Complete,
	"Cancelled":      Cancelled,
	"Abgebrochen":    Cancelled,
}

// ParseState translates a raw state name. Unknown names are an error.
func ParseState(raw string) (Rank, error) {
	if r, ok := translation[strings.TrimSpace(raw)]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("%w: %q", reconcile.ErrUnknownState, raw)
}

// String returns the Target name of the rank.
func (r Rank) String() string {
	switch r {
	case Pending:
		return "Pending"
	case InProgress:
		return "In Progress"
	case Complete:
		return "Complete"
	case Cancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("Rank(%d)", int(r))
	}
}

// Terminal reports whether no further transition can follow.
func (r Rank) Terminal() bool {
	return r == Complete || r == Cancelled
}

// MonotonicGuard refuses to replace the stored target state with next when that
// would move the order backwards, out of Cancelled or from Complete to Cancelled.
func MonotonicGuard(next Rank) store.StateGuard {
	return func(current *string) error {
		if current == nil {
			return nil
		}
		cur, err := ParseState(*current)
		if err != nil {
			return fmt.Errorf("stored target state: %w", err)
		}
		switch {
		case cur == next:
			return nil
		case cur == Cancelled:
			return fmt.Errorf("%w: cancelled order cannot become %s", reconcile.ErrInvariant, next)
		case next == Cancelled && cur == Complete:
			return fmt.Errorf("%w: complete order cannot become cancelled", reconcile.ErrInvariant)
		case next != Cancelled && next < cur:
			return fmt.Errorf("%w: target state %s cannot regress to %s", reconcile.ErrInvariant, cur, next)
		}
		return nil
	}
}
