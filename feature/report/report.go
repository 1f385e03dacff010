package report

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Status is the overall outcome of a cycle.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Section holds the outcome of one concern of a cycle, e.g. "customers".
type Section struct {
	Name   string         `json:"name"`
	Counts map[string]int `json:"counts,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Report summarizes one reconciliation cycle.
type Report struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     Status    `json:"status"`
	Sections   []Section `json:"sections"`
}

// New starts the report of a cycle.
func New(cycleID string, startedAt time.Time) *Report {
	return &Report{CycleID: cycleID, StartedAt: startedAt.UTC()}
}

// Add records a concern. counts may be nil when the concern failed early.
func (r *Report) Add(name string, counts map[string]int, err error) {
	s := Section{Name: name, Counts: counts}
	if err != nil {
		s.Error = err.Error()
	}
	r.Sections = append(r.Sections, s)
}

// Section returns the named section.
func (r *Report) Section(name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Finish sets the finish time and derives the status: failed when every
// section failed, partial when some did.
func (r *Report) Finish(at time.Time) {
	r.FinishedAt = at.UTC()
	failed := 0
	for _, s := range r.Sections {
		if s.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		r.Status = StatusSuccess
	case failed == len(r.Sections):
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}

// Duration is the time the cycle took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Log writes one summary line per section and a closing line for the cycle.
func (r *Report) Log(l *zap.Logger) {
	for _, s := range r.Sections {
		fields := make([]zap.Field, 0, len(s.Counts)+2)
		fields = append(fields, zap.String("concern", s.Name))
		keys := make([]string, 0, len(s.Counts))
		for k := range s.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s.Counts[k] != 0 {
				fields = append(fields, zap.Int(k, s.Counts[k]))
			}
		}
		if s.Error != "" {
			l.Warn("Concern finished with errors", append(fields, zap.String("error", s.Error))...)
			continue
		}
		l.Info("Concern finished", fields...)
	}
	l.Info("Cycle finished",
		zap.String("status", string(r.Status)),
		zap.Duration("duration", r.Duration()),
	)
}
