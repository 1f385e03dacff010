package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the daemon's Prometheus collectors on a private registry.
type Registry struct {
	reg *prometheus.Registry

	Outcomes      *prometheus.CounterVec
	Cycles        *prometheus.CounterVec
	CycleDuration prometheus.Histogram
	LastCycle     prometheus.Gauge
	Running       prometheus.Gauge
}

// NewRegistry creates and registers all collectors.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventree_connect_outcomes_total",
		Help: "Per-record outcomes by concern.",
	}, []string{"concern", "outcome"})
	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventree_connect_cycles_total",
		Help: "Completed reconciliation cycles by status.",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventree_connect_cycle_duration_seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
	last := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventree_connect_last_cycle_timestamp_seconds",
	})
	running := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventree_connect_cycle_running",
	})

	r.MustRegister(outcomes, cycles, duration, last, running)
	return &Registry{
		reg:           r,
		Outcomes:      outcomes,
		Cycles:        cycles,
		CycleDuration: duration,
		LastCycle:     last,
		Running:       running,
	}
}

// Observe adds the counts of one concern.
func (r *Registry) Observe(concern string, counts map[string]int) {
	for outcome, n := range counts {
		if n > 0 {
			r.Outcomes.WithLabelValues(concern, outcome).Add(float64(n))
		}
	}
}

// CycleStarted flags a cycle as running.
func (r *Registry) CycleStarted() {
	r.Running.Set(1)
}

// CycleFinished records a cycle's duration and status.
func (r *Registry) CycleFinished(d time.Duration, status string, at time.Time) {
	r.Running.Set(0)
	r.Cycles.WithLabelValues(status).Inc()
	r.CycleDuration.Observe(d.Seconds())
	r.LastCycle.Set(float64(at.Unix()))
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
