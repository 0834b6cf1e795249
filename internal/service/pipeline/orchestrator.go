package pipeline

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/domain"
	"github.com/victorcov/order-worker/internal/metrics"
)

// Orchestrator описывает интерфейс запуска обработки заказа.
// Process не возвращает результат вызывающему: исход попытки наблюдается
// через логи, метрики и терминальный маркер отказа.
type Orchestrator interface {
	Process(ctx context.Context, order *domain.Order)
}

// FailureHandler принимает отказавшие попытки для отложенного повтора.
type FailureHandler interface {
	OnFailure(order domain.Order, reason error)
}

// orchestrator реализует цепочку этапов: Enriching → ValidatingClient → Persisting.
// Каждая попытка выполняется под распределённой блокировкой по OrderID;
// блокировка снимается в конце попытки независимо от исхода.
type orchestrator struct {
	products domain.ProductCatalog
	clients  domain.ClientDirectory
	orders   domain.OrderRepository
	locks    domain.LockCoordinator
	retries  domain.RetryStateStore
	failures FailureHandler

	waitTimeout  time.Duration
	leaseTimeout time.Duration

	logger  *log.Entry
	metrics *metrics.PipelineMetrics
}

// NewOrchestrator создаёт рабочий экземпляр оркестратора.
func NewOrchestrator(
	products domain.ProductCatalog,
	clients domain.ClientDirectory,
	orders domain.OrderRepository,
	locks domain.LockCoordinator,
	retries domain.RetryStateStore,
	failures FailureHandler,
	waitTimeout, leaseTimeout time.Duration,
	logger *log.Entry,
) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "pipeline")
	}
	return &orchestrator{
		products:     products,
		clients:      clients,
		orders:       orders,
		locks:        locks,
		retries:      retries,
		failures:     failures,
		waitTimeout:  waitTimeout,
		leaseTimeout: leaseTimeout,
		logger:       logger,
		metrics:      metrics.NewPipelineMetrics(),
	}
}

// NewOrchestratorWithoutMetrics создаёт оркестратор без метрик (для тестов).
func NewOrchestratorWithoutMetrics(
	products domain.ProductCatalog,
	clients domain.ClientDirectory,
	orders domain.OrderRepository,
	locks domain.LockCoordinator,
	retries domain.RetryStateStore,
	failures FailureHandler,
	waitTimeout, leaseTimeout time.Duration,
	logger *log.Entry,
) Orchestrator {
	if logger == nil {
		logger = log.New().WithField("component", "pipeline")
	}
	return &orchestrator{
		products:     products,
		clients:      clients,
		orders:       orders,
		locks:        locks,
		retries:      retries,
		failures:     failures,
		waitTimeout:  waitTimeout,
		leaseTimeout: leaseTimeout,
		logger:       logger,
		metrics:      nil, // Отключаем метрики для тестов
	}
}

// Process выполняет одну попытку обработки заказа от этапа обогащения.
// Повтор после отказа всегда проходит цепочку заново: состояние коллабораторов
// могло измениться, а идемпотентный upsert делает повторное сохранение безопасным.
func (o *orchestrator) Process(ctx context.Context, order *domain.Order) {
	lg := o.logger.WithField("order_id", order.OrderID)

	lease, err := o.locks.Acquire(ctx, order.OrderID, o.waitTimeout, o.leaseTimeout)
	if err != nil {
		// Попытка отбрасывается без расхода retry-слота; сообщение будет
		// доставлено повторно внешним механизмом.
		if errors.Is(err, domain.ErrLockNotAcquired) {
			lg.Warn("could not acquire lock for order")
		} else {
			lg.WithError(err).Warn("lock store unavailable, dropping attempt")
		}
		if o.metrics != nil {
			o.metrics.RecordLockNotAcquired()
		}
		return
	}

	start := time.Now()
	if o.metrics != nil {
		o.metrics.RecordAttemptStarted()
	}
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordAttemptDuration(time.Since(start))
			o.metrics.RecordAttemptFinished()
		}
	}()

	reason := o.runStages(ctx, order)

	if err := o.locks.Release(ctx, lease); err != nil {
		lg.WithError(err).Warn("failed to release order lock")
	}

	if reason == nil {
		if err := o.retries.Clear(ctx, order.OrderID); err != nil {
			lg.WithError(err).Warn("failed to clear retry state after success")
		}
		lg.Info("order processed successfully")
		if o.metrics != nil {
			o.metrics.RecordAttemptSucceeded()
		}
		return
	}

	lg.WithError(reason).Warn("order processing attempt failed")
	if o.metrics != nil {
		o.metrics.RecordAttemptFailed(domain.ReasonLabel(reason))
	}
	o.failures.OnFailure(*order, reason)
}

// runStages прогоняет заказ по этапам. Любая ошибка этапа перехватывается
// и возвращается как причина отказа, наружу ничего не пробрасывается.
func (o *orchestrator) runStages(ctx context.Context, order *domain.Order) error {
	if err := o.runStage(domain.StageEnrich, func() error { return o.enrichProducts(ctx, order) }); err != nil {
		return err
	}
	if err := o.runStage(domain.StageValidateClient, func() error { return o.validateClient(ctx, order) }); err != nil {
		return err
	}
	return o.runStage(domain.StagePersist, func() error { return o.persistOrder(ctx, order) })
}

func (o *orchestrator) runStage(stage domain.PipelineStage, fn func() error) error {
	start := time.Now()
	err := fn()
	if o.metrics != nil {
		o.metrics.RecordStageDuration(string(stage), time.Since(start))
	}
	return err
}

// enrichProducts запрашивает каталог и заменяет позиции заказа полными
// записями товаров. Запрошенные, но не найденные позиции отбрасываются
// с предупреждением; пустой или ошибочный ответ фатален для попытки.
func (o *orchestrator) enrichProducts(ctx context.Context, order *domain.Order) error {
	lg := o.logger.WithField("order_id", order.OrderID)
	requested := order.ProductIDs()

	products, err := o.products.FetchByIDs(ctx, requested)
	if err != nil {
		lg.WithError(err).Warn("product catalog request failed")
		return domain.ErrProductNotFound
	}
	if len(products) == 0 {
		lg.Warn("no products found for order")
		return domain.ErrProductNotFound
	}

	returned := make(map[string]struct{}, len(products))
	for _, p := range products {
		returned[p.ProductID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := returned[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		lg.WithField("product_ids", missing).Warn("products not found for order, will be ignored")
	}

	order.Products = products
	lg.Debug("product data enriched for order")
	return nil
}

// validateClient проверяет существование и активность клиента заказа.
func (o *orchestrator) validateClient(ctx context.Context, order *domain.Order) error {
	lg := o.logger.WithField("order_id", order.OrderID).WithField("customer_id", order.CustomerID)

	client, err := o.clients.FindByID(ctx, order.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			lg.Warn("client not found")
			return domain.ErrClientNotFound
		}
		lg.WithError(err).Warn("client directory unavailable")
		return domain.ErrClientUnavailable
	}
	if !client.IsActive {
		lg.Warn("client is inactive")
		return domain.ErrClientInactive
	}

	lg.Debug("client validated for order")
	return nil
}

// persistOrder сохраняет обогащённый заказ идемпотентным upsert по OrderID.
func (o *orchestrator) persistOrder(ctx context.Context, order *domain.Order) error {
	if err := o.orders.Upsert(ctx, *order); err != nil {
		o.logger.WithError(err).WithField("order_id", order.OrderID).Error("failed to persist order")
		return domain.ErrPersistence
	}
	o.logger.WithField("order_id", order.OrderID).Debug("order saved")
	return nil
}

var _ Orchestrator = (*orchestrator)(nil)
