package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics exposes counters/histograms for the safety engine.
type EngineMetrics struct {
	evaluationsTotal  *prometheus.CounterVec
	ruleFailures      *prometheus.CounterVec
	alertsRaised      *prometheus.CounterVec
	evaluationLatency *prometheus.HistogramVec
	interactionChecks *prometheus.CounterVec
	unitsConsumed     prometheus.Counter
}

// NewEngineMetrics builds the collector set. A nil registerer leaves the
// collectors unregistered.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		evaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cliniccore",
			Subsystem: "rules",
			Name:      "evaluations_total",
			Help:      "Total rule catalog evaluations",
		}, []string{"trigger"}),
		ruleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cliniccore",
			Subsystem: "rules",
			Name:      "rule_failures_total",
			Help:      "Rules skipped because their predicate or template failed",
		}, []string{"rule_id"}),
		alertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cliniccore",
			Subsystem: "rules",
			Name:      "alerts_raised_total",
			Help:      "Alerts produced by rule evaluation",
		}, []string{"severity", "category"}),
		evaluationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cliniccore",
			Subsystem: "rules",
			Name:      "evaluation_latency_seconds",
			Help:      "Latency of one full catalog evaluation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"trigger"}),
		interactionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cliniccore",
			Subsystem: "medications",
			Name:      "interaction_checks_total",
			Help:      "Drug interaction lookups by highest severity found",
		}, []string{"result"}),
		unitsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cliniccore",
			Subsystem: "authorizations",
			Name:      "units_consumed_total",
			Help:      "Authorization units consumed by completed appointments",
		}),
	}
	if reg == nil {
		// Collectors still count; they are just not scraped anywhere.
		return m
	}
	reg.MustRegister(
		m.evaluationsTotal,
		m.ruleFailures,
		m.alertsRaised,
		m.evaluationLatency,
		m.interactionChecks,
		m.unitsConsumed,
	)
	return m
}

func (m *EngineMetrics) ObserveEvaluation(trigger string, seconds float64) {
	if m == nil {
		return
	}
	m.evaluationsTotal.WithLabelValues(trigger).Inc()
	m.evaluationLatency.WithLabelValues(trigger).Observe(seconds)
}

func (m *EngineMetrics) ObserveRuleFailure(ruleID string) {
	if m == nil {
		return
	}
	m.ruleFailures.WithLabelValues(ruleID).Inc()
}

func (m *EngineMetrics) ObserveAlertRaised(severity, category string) {
	if m == nil {
		return
	}
	m.alertsRaised.WithLabelValues(severity, category).Inc()
}

func (m *EngineMetrics) ObserveInteractionCheck(result string) {
	if m == nil {
		return
	}
	m.interactionChecks.WithLabelValues(result).Inc()
}

func (m *EngineMetrics) ObserveUnitsConsumed(units int) {
	if m == nil || units <= 0 {
		return
	}
	m.unitsConsumed.Add(float64(units))
}
