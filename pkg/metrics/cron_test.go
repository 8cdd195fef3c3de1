package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsCountRunsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCronJobMetrics(reg)

	metrics.ObserveDuration("transaction-ttl", 250*time.Millisecond)
	metrics.IncSuccess("transaction-ttl")
	metrics.IncSuccess("transaction-ttl")
	metrics.IncFailure("retention")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterValue(mfs, "cron_job_runs_total", map[string]string{"job": "transaction-ttl", "result": "success"}); got != 2 {
		t.Fatalf("expected 2 successes, got %f", got)
	}
	if got := counterValue(mfs, "cron_job_runs_total", map[string]string{"job": "retention", "result": "failure"}); got != 1 {
		t.Fatalf("expected 1 failure, got %f", got)
	}
	if got := histogramSum(mfs, "cron_job_duration_seconds", map[string]string{"job": "transaction-ttl"}); got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCronJobMetricsNopWithoutRegistry(t *testing.T) {
	metrics := NewCronJobMetrics(nil)
	// Must not panic.
	metrics.ObserveDuration("transaction-ttl", time.Second)
	metrics.IncSuccess("transaction-ttl")
	metrics.IncFailure("transaction-ttl")
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	for _, metric := range metricsFor(mfs, name, labels) {
		return metric.GetCounter().GetValue()
	}
	return 0
}

func histogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	for _, metric := range metricsFor(mfs, name, labels) {
		return metric.GetHistogram().GetSampleSum()
	}
	return 0
}

func metricsFor(mfs []*dto.MetricFamily, name string, labels map[string]string) []*dto.Metric {
	var out []*dto.Metric
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if labelsMatch(metric.GetLabel(), labels) {
				out = append(out, metric)
			}
		}
	}
	return out
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	seen := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		seen[pair.GetName()] = pair.GetValue()
	}
	for k, v := range want {
		if seen[k] != v {
			return false
		}
	}
	return true
}
