package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics exposes counters/histograms for the booking-option wizard.
type WizardMetrics struct {
	stepSubmissions *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	draftCacheOps   *prometheus.CounterVec
}

func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	m := &WizardMetrics{
		stepSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extranet",
			Subsystem: "wizard",
			Name:      "step_submissions_total",
			Help:      "Total wizard step submissions",
		}, []string{"step", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "extranet",
			Subsystem: "wizard",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of booking API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		draftCacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extranet",
			Subsystem: "wizard",
			Name:      "draft_cache_ops_total",
			Help:      "Draft cache reads and writes by result",
		}, []string{"op", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.stepSubmissions, m.upstreamLatency, m.draftCacheOps)
	return m
}

func (m *WizardMetrics) ObserveStepSubmission(step, status string) {
	if m == nil {
		return
	}
	m.stepSubmissions.WithLabelValues(step, status).Inc()
}

func (m *WizardMetrics) ObserveUpstream(endpoint string, seconds float64, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.upstreamLatency.WithLabelValues(endpoint, status).Observe(seconds)
}

func (m *WizardMetrics) ObserveDraftCache(op, result string) {
	if m == nil {
		return
	}
	m.draftCacheOps.WithLabelValues(op, result).Inc()
}
