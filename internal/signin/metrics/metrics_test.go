package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLookupLatency(time.Second)
		m.IncrementLookupOutcome("found")
		m.IncrementLookupTimeout()
		m.IncrementLookupError("timeout")
		m.IncrementCompletion("core")
		m.IncrementForbidden("staff")
		m.IncrementTrnInUse()
		m.IncrementSupportTicket("trn_pending", "raised")
		m.IncrementStateConflict()
	})
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementLookupOutcome("pending")
	m.IncrementLookupOutcome("pending")
	m.IncrementCompletion("trn")
	m.IncrementTrnInUse()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LookupOutcomes.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions.WithLabelValues("trn")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrnInUse))
}
