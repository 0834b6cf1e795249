package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics содержит метрики обработки заказов.
type PipelineMetrics struct {
	// Счётчики входного потока
	ordersReceived  prometheus.Counter
	ordersDiscarded prometheus.Counter
	lockNotAcquired prometheus.Counter

	// Счётчики попыток пайплайна
	attemptsStarted   prometheus.Counter
	attemptsSucceeded prometheus.Counter
	attemptsFailed    *prometheus.CounterVec

	// Счётчики retry-механизма
	retriesScheduled prometheus.Counter
	terminalFailures prometheus.Counter

	// Гистограммы времени выполнения
	attemptDuration prometheus.Histogram
	stageDuration   *prometheus.HistogramVec

	// Gauge для заказов в обработке
	inflightOrders prometheus.Gauge
}

// NewPipelineMetrics создаёт новый экземпляр метрик пайплайна.
func NewPipelineMetrics() *PipelineMetrics {
	return newPipelineMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPipelineMetricsWithRegisterer(registerer prometheus.Registerer) *PipelineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PipelineMetrics{
		ordersReceived: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_worker_orders_received_total",
			Help: "Total number of order messages received from the broker",
		}),
		ordersDiscarded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_worker_orders_discarded_total",
			Help: "Total number of malformed or invalid orders discarded before the pipeline",
		}),
		lockNotAcquired: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_worker_lock_not_acquired_total",
			Help: "Total number of processing attempts dropped because the order lock was busy",
		}),
		attemptsStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_worker_attempts_started_total",
			Help: "Total number of pipeline attempts started",
		}),
		attemptsSucceeded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_worker_attempts_succeeded_total",
			Help: "Total number of pipeline attempts that reached Succeeded",
		}),
		attemptsFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "order_worker_attempts_failed_total",
			Help: "Total number of pipeline attempts that failed, by reason",
		}, []string{"reason"}),
		retriesScheduled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_worker_retries_scheduled_total",
			Help: "Total number of delayed retries scheduled",
		}),
		terminalFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "order_worker_terminal_failures_total",
			Help: "Total number of orders marked permanently failed after exhausting retries",
		}),
		attemptDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "order_worker_attempt_duration_seconds",
			Help:    "Duration of pipeline attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stageDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "order_worker_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"stage"}),
		inflightOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "order_worker_inflight_orders",
			Help: "Number of orders currently being processed",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderReceived увеличивает счётчик принятых сообщений.
func (m *PipelineMetrics) RecordOrderReceived() {
	m.ordersReceived.Inc()
}

// RecordOrderDiscarded увеличивает счётчик отброшенных невалидных заказов.
func (m *PipelineMetrics) RecordOrderDiscarded() {
	m.ordersDiscarded.Inc()
}

// RecordLockNotAcquired увеличивает счётчик попыток, отброшенных из-за занятой блокировки.
func (m *PipelineMetrics) RecordLockNotAcquired() {
	m.lockNotAcquired.Inc()
}

// RecordAttemptStarted увеличивает счётчик запущенных попыток и количество заказов в обработке.
func (m *PipelineMetrics) RecordAttemptStarted() {
	m.attemptsStarted.Inc()
	m.inflightOrders.Inc()
}

// RecordAttemptFinished уменьшает количество заказов в обработке.
func (m *PipelineMetrics) RecordAttemptFinished() {
	m.inflightOrders.Dec()
}

// RecordAttemptSucceeded увеличивает счётчик успешных попыток.
func (m *PipelineMetrics) RecordAttemptSucceeded() {
	m.attemptsSucceeded.Inc()
}

// RecordAttemptFailed увеличивает счётчик неуспешных попыток с меткой причины.
func (m *PipelineMetrics) RecordAttemptFailed(reason string) {
	m.attemptsFailed.WithLabelValues(reason).Inc()
}

// RecordRetryScheduled увеличивает счётчик запланированных повторов.
func (m *PipelineMetrics) RecordRetryScheduled() {
	m.retriesScheduled.Inc()
}

// RecordTerminalFailure увеличивает счётчик окончательно неуспешных заказов.
func (m *PipelineMetrics) RecordTerminalFailure() {
	m.terminalFailures.Inc()
}

// RecordAttemptDuration записывает длительность попытки.
func (m *PipelineMetrics) RecordAttemptDuration(duration time.Duration) {
	m.attemptDuration.Observe(duration.Seconds())
}

// RecordStageDuration записывает длительность этапа пайплайна.
func (m *PipelineMetrics) RecordStageDuration(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}
