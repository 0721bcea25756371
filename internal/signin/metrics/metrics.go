package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the sign-in journey.
type Metrics struct {
	// TRN lookup latency and outcomes
	LookupLatency  prometheus.Histogram
	LookupOutcomes *prometheus.CounterVec
	LookupTimeouts prometheus.Counter
	LookupErrors   *prometheus.CounterVec

	// Journey lifecycle
	Completions    *prometheus.CounterVec
	Forbidden      *prometheus.CounterVec
	TrnInUse       prometheus.Counter
	SupportTickets *prometheus.CounterVec
	StateConflicts prometheus.Counter
}

// New registers the journey metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LookupLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "signin_trn_lookup_duration_seconds",
			Help:    "Duration of calls to the teacher records matcher",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		LookupOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_trn_lookup_outcomes_total",
			Help: "TRN lookup outcomes by resolved status",
		}, []string{"status"}),
		LookupTimeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "signin_trn_lookup_timeouts_total",
			Help: "TRN lookups that exceeded their timeout and were treated as no match",
		}),
		LookupErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_trn_lookup_errors_total",
			Help: "TRN lookup failures by error category",
		}, []string{"category"}),
		Completions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_journey_completions_total",
			Help: "Journeys that redirected back to the client, by journey kind",
		}, []string{"kind"}),
		Forbidden: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_journey_forbidden_total",
			Help: "Verification outcomes rejected for an incompatible account type, by journey kind",
		}, []string{"kind"}),
		TrnInUse: f.NewCounter(prometheus.CounterOpts{
			Name: "signin_trn_in_use_total",
			Help: "Journeys redirected because the matched TRN belongs to another account",
		}),
		SupportTickets: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signin_support_tickets_total",
			Help: "Support tickets raised for manual TRN resolution",
		}, []string{"reason", "result"}),
		StateConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "signin_state_version_conflicts_total",
			Help: "Journey state saves rejected because another request wrote first",
		}),
	}
}

func (m *Metrics) ObserveLookupLatency(d time.Duration) {
	if m != nil {
		m.LookupLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementLookupOutcome(status string) {
	if m != nil {
		m.LookupOutcomes.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementLookupTimeout() {
	if m != nil {
		m.LookupTimeouts.Inc()
	}
}

func (m *Metrics) IncrementLookupError(category string) {
	if m != nil {
		m.LookupErrors.WithLabelValues(category).Inc()
	}
}

func (m *Metrics) IncrementCompletion(kind string) {
	if m != nil {
		m.Completions.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementForbidden(kind string) {
	if m != nil {
		m.Forbidden.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementTrnInUse() {
	if m != nil {
		m.TrnInUse.Inc()
	}
}

// IncrementSupportTicket records a ticket attempt; result is "raised" or "failed".
func (m *Metrics) IncrementSupportTicket(reason, result string) {
	if m != nil {
		m.SupportTickets.WithLabelValues(reason, result).Inc()
	}
}

func (m *Metrics) IncrementStateConflict() {
	if m != nil {
		m.StateConflicts.Inc()
	}
}
