package kafka

import (
	"context"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/metrics"
	"github.com/victorcov/order-worker/internal/service/pipeline"
)

// OrderIntake — приёмный шлюз входного потока заказов: парсит сообщение,
// проверяет форму заказа и отдаёт его пайплайну. Обработка запускается
// fire-and-forget: для вызывающего исходы только «принято» и «отброшено»,
// результат попытки наблюдается через логи, метрики и терминальный маркер.
type OrderIntake struct {
	processor pipeline.Orchestrator
	logger    *log.Entry
	metrics   *metrics.PipelineMetrics
	wg        sync.WaitGroup
}

// NewOrderIntake создаёт шлюз входного потока.
func NewOrderIntake(processor pipeline.Orchestrator, m *metrics.PipelineMetrics, logger *log.Entry) *OrderIntake {
	if logger == nil {
		logger = log.WithField("component", "order-intake")
	}
	return &OrderIntake{
		processor: processor,
		logger:    logger,
		metrics:   m,
	}
}

// Handle реализует MessageHandler для входного топика заказов.
// Невалидные сообщения отбрасываются с предупреждением, не доходя до
// пайплайна и не трогая ни блокировку, ни счётчик повторов.
func (i *OrderIntake) Handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	if i.metrics != nil {
		i.metrics.RecordOrderReceived()
	}

	order, err := ParseOrderMessage(message.Value)
	if err != nil {
		i.logger.WithError(err).WithField("payload", string(message.Value)).Warn("discarded invalid message")
		if i.metrics != nil {
			i.metrics.RecordOrderDiscarded()
		}
		return nil
	}

	if errs := order.Validate(); len(errs) > 0 {
		i.logger.WithFields(log.Fields{
			"order_id": order.OrderID,
			"errors":   errs,
		}).Warn("discarded invalid order")
		if i.metrics != nil {
			i.metrics.RecordOrderDiscarded()
		}
		return nil
	}

	// Попытка не должна обрываться rebalance-ом consumer session:
	// её время жизни ограничивают таймауты этапов и lease блокировки.
	attemptCtx := context.WithoutCancel(ctx)

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.processor.Process(attemptCtx, &order)
	}()
	return nil
}

// Drain дожидается завершения запущенных попыток обработки.
func (i *OrderIntake) Drain() {
	i.wg.Wait()
}
