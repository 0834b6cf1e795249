package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/domain"
)

const retryKeyPrefix = "order:retry:"

// defaultRetryTTL ограничивает жизнь счётчика, чтобы терминальные маркеры
// и счётчики брошенных заказов не копились вечно.
const defaultRetryTTL = 24 * time.Hour

// RetryStateStore хранит счётчики попыток в Redis. INCR атомарен на стороне
// хранилища, поэтому конкурирующие воркеры не теряют инкременты.
type RetryStateStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Entry
}

// NewRetryStateStore создаёт хранилище счётчиков попыток.
func NewRetryStateStore(client *redis.Client, logger *log.Entry) *RetryStateStore {
	if logger == nil {
		logger = log.WithField("component", "retry-store")
	}
	return &RetryStateStore{
		client: client,
		ttl:    defaultRetryTTL,
		logger: logger,
	}
}

// Increment атомарно увеличивает счётчик попыток и продлевает его TTL.
func (s *RetryStateStore) Increment(ctx context.Context, orderID string) (int64, error) {
	key := retryKeyPrefix + orderID

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("retry store incr: %w", err)
	}
	return incr.Val(), nil
}

// Attempts возвращает текущее значение счётчика; 0 — если записи нет.
func (s *RetryStateStore) Attempts(ctx context.Context, orderID string) (int64, error) {
	val, err := s.client.Get(ctx, retryKeyPrefix+orderID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("retry store get: %w", err)
	}
	return val, nil
}

// Clear удаляет счётчик после успешной обработки заказа.
func (s *RetryStateStore) Clear(ctx context.Context, orderID string) error {
	if err := s.client.Del(ctx, retryKeyPrefix+orderID).Err(); err != nil {
		return fmt.Errorf("retry store del: %w", err)
	}
	return nil
}

var _ domain.RetryStateStore = (*RetryStateStore)(nil)
