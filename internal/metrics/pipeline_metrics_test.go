package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewPipelineMetrics(t *testing.T) {
	metrics := newPipelineMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newPipelineMetricsWithRegisterer should not return nil")
	}

	if metrics.ordersReceived == nil {
		t.Error("ordersReceived counter should not be nil")
	}

	if metrics.ordersDiscarded == nil {
		t.Error("ordersDiscarded counter should not be nil")
	}

	if metrics.lockNotAcquired == nil {
		t.Error("lockNotAcquired counter should not be nil")
	}

	if metrics.attemptsStarted == nil {
		t.Error("attemptsStarted counter should not be nil")
	}

	if metrics.attemptsSucceeded == nil {
		t.Error("attemptsSucceeded counter should not be nil")
	}

	if metrics.attemptsFailed == nil {
		t.Error("attemptsFailed counter vec should not be nil")
	}

	if metrics.retriesScheduled == nil {
		t.Error("retriesScheduled counter should not be nil")
	}

	if metrics.terminalFailures == nil {
		t.Error("terminalFailures counter should not be nil")
	}

	if metrics.attemptDuration == nil {
		t.Error("attemptDuration histogram should not be nil")
	}

	if metrics.stageDuration == nil {
		t.Error("stageDuration histogram vec should not be nil")
	}

	if metrics.inflightOrders == nil {
		t.Error("inflightOrders gauge should not be nil")
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newPipelineMetricsWithRegisterer(reg)
	second := newPipelineMetricsWithRegisterer(reg)

	// Повторная регистрация возвращает существующие коллекторы.
	if first.ordersReceived != second.ordersReceived {
		t.Error("repeated registration should reuse the existing counter")
	}
	if first.attemptsFailed != second.attemptsFailed {
		t.Error("repeated registration should reuse the existing counter vec")
	}
	if first.inflightOrders != second.inflightOrders {
		t.Error("repeated registration should reuse the existing gauge")
	}
}

func TestRecordAttemptLifecycle(t *testing.T) {
	metrics := newPipelineMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordAttemptStarted() // inflight: 1
	metrics.RecordAttemptStarted() // inflight: 2
	metrics.RecordAttemptStarted() // inflight: 3

	metrics.RecordAttemptSucceeded()
	metrics.RecordAttemptFinished() // inflight: 2
	metrics.RecordAttemptSucceeded()
	metrics.RecordAttemptFinished() // inflight: 1

	gaugeMetric := &dto.Metric{}
	if err := metrics.inflightOrders.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected 1 inflight order, got %f", gaugeMetric.Gauge.GetValue())
	}

	startedMetric := &dto.Metric{}
	if err := metrics.attemptsStarted.Write(startedMetric); err != nil {
		t.Fatalf("failed to write started metric: %v", err)
	}

	if startedMetric.Counter.GetValue() != 3.0 {
		t.Errorf("expected 3 started attempts, got %f", startedMetric.Counter.GetValue())
	}

	succeededMetric := &dto.Metric{}
	if err := metrics.attemptsSucceeded.Write(succeededMetric); err != nil {
		t.Fatalf("failed to write succeeded metric: %v", err)
	}

	if succeededMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 succeeded attempts, got %f", succeededMetric.Counter.GetValue())
	}
}

func TestRecordAttemptFailed(t *testing.T) {
	metrics := newPipelineMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordAttemptFailed("client_inactive")
	metrics.RecordAttemptFailed("client_inactive")
	metrics.RecordAttemptFailed("persistence_error")

	inactiveMetric := &dto.Metric{}
	counter, err := metrics.attemptsFailed.GetMetricWithLabelValues("client_inactive")
	if err != nil {
		t.Fatalf("failed to get counter: %v", err)
	}
	if err := counter.Write(inactiveMetric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if inactiveMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 client_inactive failures, got %f", inactiveMetric.Counter.GetValue())
	}
}

func TestRecordAttemptDuration(t *testing.T) {
	metrics := newPipelineMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordAttemptDuration(100 * time.Millisecond)
	metrics.RecordAttemptDuration(500 * time.Millisecond)
	metrics.RecordAttemptDuration(1 * time.Second)

	metric := &dto.Metric{}
	if err := metrics.attemptDuration.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}

	// Check sum is approximately correct (0.1 + 0.5 + 1.0 = 1.6)
	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Errorf("expected sum around 1.6, got %f", sum)
	}
}

func TestRecordStageDuration(t *testing.T) {
	metrics := newPipelineMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordStageDuration("enrich", 50*time.Millisecond)
	metrics.RecordStageDuration("validate_client", 100*time.Millisecond)
	metrics.RecordStageDuration("persist", 25*time.Millisecond)

	enrichMetric := &dto.Metric{}
	observer, err := metrics.stageDuration.GetMetricWithLabelValues("enrich")
	if err != nil {
		t.Fatalf("failed to get histogram: %v", err)
	}
	if err := observer.(prometheus.Histogram).Write(enrichMetric); err != nil {
		t.Fatalf("failed to write enrich metric: %v", err)
	}

	if enrichMetric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 sample for enrich, got %d", enrichMetric.Histogram.GetSampleCount())
	}
}

func TestRecordRetryAndTerminalCounters(t *testing.T) {
	metrics := newPipelineMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordRetryScheduled()
	metrics.RecordRetryScheduled()
	metrics.RecordTerminalFailure()

	retriesMetric := &dto.Metric{}
	if err := metrics.retriesScheduled.Write(retriesMetric); err != nil {
		t.Fatalf("failed to write retries metric: %v", err)
	}

	if retriesMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 scheduled retries, got %f", retriesMetric.Counter.GetValue())
	}

	terminalMetric := &dto.Metric{}
	if err := metrics.terminalFailures.Write(terminalMetric); err != nil {
		t.Fatalf("failed to write terminal metric: %v", err)
	}

	if terminalMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 terminal failure, got %f", terminalMetric.Counter.GetValue())
	}
}

func TestRecordIntakeCounters(t *testing.T) {
	metrics := newPipelineMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordOrderReceived()
	metrics.RecordOrderReceived()
	metrics.RecordOrderDiscarded()
	metrics.RecordLockNotAcquired()

	receivedMetric := &dto.Metric{}
	if err := metrics.ordersReceived.Write(receivedMetric); err != nil {
		t.Fatalf("failed to write received metric: %v", err)
	}

	if receivedMetric.Counter.GetValue() != 2.0 {
		t.Errorf("expected 2 received orders, got %f", receivedMetric.Counter.GetValue())
	}

	discardedMetric := &dto.Metric{}
	if err := metrics.ordersDiscarded.Write(discardedMetric); err != nil {
		t.Fatalf("failed to write discarded metric: %v", err)
	}

	if discardedMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 discarded order, got %f", discardedMetric.Counter.GetValue())
	}

	lockMetric := &dto.Metric{}
	if err := metrics.lockNotAcquired.Write(lockMetric); err != nil {
		t.Fatalf("failed to write lock metric: %v", err)
	}

	if lockMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected 1 lock miss, got %f", lockMetric.Counter.GetValue())
	}
}
