package pipeline

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/domain"
	"github.com/victorcov/order-worker/internal/metrics"
)

// SchedulerConfig — конфигурация retry-механизма.
type SchedulerConfig struct {
	MaxAttempts       int64
	BackoffBase       time.Duration
	BackoffMultiplier float64
}

// DefaultSchedulerConfig возвращает конфигурацию по умолчанию:
// пять попыток с задержками 1s, 2s, 4s, 8s, 16s.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxAttempts:       5,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Scheduler планирует отложенные повторы отказавших заказов.
// Каждый повтор — полный перезапуск пайплайна от этапа обогащения,
// с повторным получением блокировки.
type Scheduler struct {
	retries domain.RetryStateStore
	journal domain.FailureJournal
	config  SchedulerConfig
	clock   clockwork.Clock
	logger  *log.Entry
	metrics *metrics.PipelineMetrics

	processor Orchestrator

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewScheduler создаёт планировщик повторов. journal может быть nil —
// тогда терминальные отказы фиксируются только в логах и метриках.
// clock позволяет подменить время в тестах; nil означает реальные часы.
func NewScheduler(
	retries domain.RetryStateStore,
	journal domain.FailureJournal,
	config SchedulerConfig,
	clock clockwork.Clock,
	logger *log.Entry,
) *Scheduler {
	s := newScheduler(retries, journal, config, clock, logger)
	s.metrics = metrics.NewPipelineMetrics()
	return s
}

// NewSchedulerWithoutMetrics создаёт планировщик без метрик (для тестов).
func NewSchedulerWithoutMetrics(
	retries domain.RetryStateStore,
	journal domain.FailureJournal,
	config SchedulerConfig,
	clock clockwork.Clock,
	logger *log.Entry,
) *Scheduler {
	return newScheduler(retries, journal, config, clock, logger)
}

func newScheduler(
	retries domain.RetryStateStore,
	journal domain.FailureJournal,
	config SchedulerConfig,
	clock clockwork.Clock,
	logger *log.Entry,
) *Scheduler {
	if logger == nil {
		logger = log.New().WithField("component", "retry-scheduler")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		retries: retries,
		journal: journal,
		config:  config,
		clock:   clock,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]struct{}),
	}
}

// Bind привязывает оркестратор, которому будут передаваться повторы.
// Вызывается один раз при сборке зависимостей, до первого OnFailure.
func (s *Scheduler) Bind(processor Orchestrator) {
	s.processor = processor
}

// OnFailure принимает отказавшую попытку. Вызов неблокирующий:
// инкремент счётчика, ожидание задержки и перезапуск пайплайна
// выполняются в отдельной горутине.
func (s *Scheduler) OnFailure(order domain.Order, reason error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.handleFailure(order, reason)
	}()
}

func (s *Scheduler) handleFailure(order domain.Order, reason error) {
	lg := s.logger.WithField("order_id", order.OrderID).WithField("reason", domain.ReasonLabel(reason))

	attempt, err := s.retries.Increment(s.ctx, order.OrderID)
	if err != nil {
		// Счётчик недоступен: цикл повтора теряется, восстановление —
		// за повторной доставкой сообщения.
		lg.WithError(err).Error("failed to increment retry counter, dropping retry cycle")
		return
	}

	if attempt > s.config.MaxAttempts {
		s.markPermanentlyFailed(order, reason, attempt-1)
		return
	}

	delay := s.backoffDelay(attempt)
	lg.WithFields(log.Fields{
		"attempt": attempt,
		"delay":   delay,
	}).Info("scheduling order retry")
	if s.metrics != nil {
		s.metrics.RecordRetryScheduled()
	}

	s.trackPending(order.OrderID)
	defer s.untrackPending(order.OrderID)

	select {
	case <-s.clock.After(delay):
	case <-s.ctx.Done():
		lg.Debug("scheduler stopped, abandoning retry")
		return
	}

	lg.WithField("attempt", attempt).Info("retrying order")
	s.processor.Process(s.ctx, &order)
}

// backoffDelay вычисляет экспоненциальную задержку для номера попытки:
// base * multiplier^(attempt-1), то есть 1s, 2s, 4s, ... при настройках по умолчанию.
func (s *Scheduler) backoffDelay(attempt int64) time.Duration {
	factor := math.Pow(s.config.BackoffMultiplier, float64(attempt-1))
	return time.Duration(float64(s.config.BackoffBase) * factor)
}

// markPermanentlyFailed фиксирует терминальный отказ заказа. Счётчик попыток
// не удаляется и остаётся маркером в хранилище. Дальнейшие повторы не планируются.
func (s *Scheduler) markPermanentlyFailed(order domain.Order, reason error, attempts int64) {
	s.logger.WithFields(log.Fields{
		"order_id":     order.OrderID,
		"max_attempts": s.config.MaxAttempts,
		"reason":       domain.ReasonLabel(reason),
	}).Error("max retry attempts reached for order, marking permanently failed")

	if s.metrics != nil {
		s.metrics.RecordTerminalFailure()
	}

	if s.journal == nil {
		return
	}
	failure := domain.FailedOrder{
		OrderID:  order.OrderID,
		Reason:   domain.ReasonLabel(reason),
		Attempts: attempts,
		FailedAt: s.clock.Now().UTC(),
	}
	if err := s.journal.Record(s.ctx, failure); err != nil {
		s.logger.WithError(err).WithField("order_id", order.OrderID).Error("failed to record terminal failure")
	}
}

func (s *Scheduler) trackPending(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[orderID] = struct{}{}
}

func (s *Scheduler) untrackPending(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, orderID)
}

// HasPending сообщает, ожидает ли заказ отложенного повтора.
func (s *Scheduler) HasPending(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[orderID]
	return ok
}

// PendingRetries возвращает отсортированный список заказов с ожидающими повторами.
func (s *Scheduler) PendingRetries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop отменяет ожидающие повторы и дожидается завершения горутин.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

var _ FailureHandler = (*Scheduler)(nil)
