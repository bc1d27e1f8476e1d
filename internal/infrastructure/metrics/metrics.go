package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the underwriting workflow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Lifecycle calls by action and result (ok, forbidden, not_found, ...)
	Transitions *prometheus.CounterVec

	// Risk scores recorded at decision time, by insurance line
	RiskScore *prometheus.HistogramVec

	// Post-commit side effects that failed (notify, publish_audit, document_content)
	SideEffectFailures *prometheus.CounterVec

	// Idempotency middleware outcomes (stored, replayed, conflict)
	Idempotency *prometheus.CounterVec
}

// New registers on the default registry.
func New() *Metrics { return NewWithRegistry(prometheus.DefaultRegisterer) }

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "underwriting_transitions_total",
			Help: "Application lifecycle calls by action and result",
		}, []string{"action", "result"}),

		RiskScore: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "underwriting_risk_score",
			Help:    "Risk score at underwriter decision time",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}, []string{"type"}),

		SideEffectFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "underwriting_side_effect_failures_total",
			Help: "Best-effort post-commit side effects that failed",
		}, []string{"effect"}),

		Idempotency: f.NewCounterVec(prometheus.CounterOpts{
			Name: "underwriting_idempotency_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncTransition(action, result string) {
	if m != nil {
		m.Transitions.WithLabelValues(action, result).Inc()
	}
}

func (m *Metrics) ObserveRiskScore(insType string, score float64) {
	if m != nil {
		m.RiskScore.WithLabelValues(insType).Observe(score)
	}
}

func (m *Metrics) IncSideEffectFailure(effect string) {
	if m != nil {
		m.SideEffectFailures.WithLabelValues(effect).Inc()
	}
}

func (m *Metrics) IncIdempotency(outcome string) {
	if m != nil {
		m.Idempotency.WithLabelValues(outcome).Inc()
	}
}
