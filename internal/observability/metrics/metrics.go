package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for message processing.
type PipelineMetrics struct {
	messagesTotal   *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "pipeline",
			Name:      "messages_total",
			Help:      "Total inbound messages processed",
		}, []string{"decision_source", "is_scam"}),
		pipelineLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "pipeline",
			Name:      "latency_seconds",
			Help:      "End-to-end latency of one pipeline run",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.pipelineLatency)
	return m
}

func (m *PipelineMetrics) ObserveMessage(decisionSource string, isScam bool) {
	if m == nil {
		return
	}
	label := "false"
	if isScam {
		label = "true"
	}
	m.messagesTotal.WithLabelValues(decisionSource, label).Inc()
}

func (m *PipelineMetrics) ObserveLatency(channel string, seconds float64) {
	if m == nil {
		return
	}
	m.pipelineLatency.WithLabelValues(channel).Observe(seconds)
}

// CallbackMetrics exposes counters/histograms for final-callback delivery.
type CallbackMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	deliveriesTotal *prometheus.CounterVec
	deliveryLatency prometheus.Histogram
}

func NewCallbackMetrics(reg prometheus.Registerer) *CallbackMetrics {
	m := &CallbackMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "attempts_total",
			Help:      "Delivery attempts by outcome",
		}, []string{"outcome"}),
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "deliveries_total",
			Help:      "Dispatch results per SendIfNeeded call",
		}, []string{"result"}),
		deliveryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "delivery_latency_seconds",
			Help:      "Latency of the full delivery cycle including retries",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.deliveriesTotal, m.deliveryLatency)
	return m
}

func (m *CallbackMetrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *CallbackMetrics) ObserveDelivery(result string, seconds float64) {
	if m == nil {
		return
	}
	m.deliveriesTotal.WithLabelValues(result).Inc()
	m.deliveryLatency.Observe(seconds)
}
