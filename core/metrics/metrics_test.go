package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Observe(t *testing.T) {
	r := NewRegistry()
	r.Observe("customers", map[string]int{"created": 2, "failed": 0})
	r.Observe("customers", map[string]int{"created": 1})

	assert.Equal(t, 3.0, testutil.ToFloat64(r.Outcomes.WithLabelValues("customers", "created")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.Outcomes))
}

func TestRegistry_Cycle(t *testing.T) {
	r := NewRegistry()
	r.CycleStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Running))

	at := time.Unix(1700000000, 0)
	r.CycleFinished(3*time.Second, "success", at)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.Running))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Cycles.WithLabelValues("success")))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(r.LastCycle))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.CycleFinished(time.Second, "partial", time.Now())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `inventree_connect_cycles_total{status="partial"} 1`))
}
