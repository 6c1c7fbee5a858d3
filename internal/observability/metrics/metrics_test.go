package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPipelineMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)
	m.ObserveMessage("rule", true)
	m.ObserveMessage("ml", false)
	m.ObserveLatency("SMS", 0.05)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	var found *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "honeypot_pipeline_messages_total" {
			found = mf
		}
	}
	if found == nil {
		t.Fatal("messages_total not registered")
	}
	if len(found.GetMetric()) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(found.GetMetric()))
	}
}

func TestCallbackMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCallbackMetrics(reg)
	m.ObserveAttempt("success")
	m.ObserveAttempt("non_2xx")
	m.ObserveDelivery("delivered", 0.3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["honeypot_callback_attempts_total"] || !names["honeypot_callback_delivery_latency_seconds"] {
		t.Fatalf("expected callback metrics registered, got %v", names)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var p *PipelineMetrics
	var c *CallbackMetrics
	p.ObserveMessage("rule", true)
	p.ObserveLatency("SMS", 0.1)
	c.ObserveAttempt("success")
	c.ObserveDelivery("skipped", 0)
}
