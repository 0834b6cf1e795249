package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/domain"
)

const lockKeyPrefix = "order:lock:"

// defaultPollInterval — шаг опроса при ожидании занятой блокировки.
const defaultPollInterval = 100 * time.Millisecond

// releaseScript удаляет ключ только если токен совпадает с владельцем.
// Так снятие чужой или уже истёкшей блокировки остаётся no-op.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// LockCoordinator реализует распределённую блокировку per-order поверх Redis.
// Захват — атомарный SET NX PX; истечение lease обеспечивает само хранилище,
// что ограничивает последствия падения воркера-владельца.
type LockCoordinator struct {
	client       *redis.Client
	pollInterval time.Duration
	logger       *log.Entry
}

// NewLockCoordinator создаёт координатор блокировок.
func NewLockCoordinator(client *redis.Client, logger *log.Entry) *LockCoordinator {
	if logger == nil {
		logger = log.WithField("component", "lock-coordinator")
	}
	return &LockCoordinator{
		client:       client,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

// Acquire ждёт до wait, опрашивая блокировку заказа. Ожидание не занимает
// выделенный поток: между попытками горутина спит на pollInterval.
func (c *LockCoordinator) Acquire(ctx context.Context, orderID string, wait, lease time.Duration) (domain.Lease, error) {
	key := lockKeyPrefix + orderID
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := c.client.SetNX(ctx, key, token, lease).Result()
		if err != nil {
			return domain.Lease{}, fmt.Errorf("lock store setnx: %w", err)
		}
		if ok {
			c.logger.WithField("order_id", orderID).Debug("order lock acquired")
			return domain.Lease{
				Key:          key,
				HolderToken:  token,
				LeaseTimeout: lease,
			}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return domain.Lease{}, domain.ErrLockNotAcquired
		}
		sleep := c.pollInterval
		if sleep > remaining {
			sleep = remaining
		}
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return domain.Lease{}, domain.ErrLockNotAcquired
		}
	}
}

// Release снимает блокировку, если токен всё ещё принадлежит вызывающему.
// Истёкшая или уже снятая lease — no-op.
func (c *LockCoordinator) Release(ctx context.Context, lease domain.Lease) error {
	if lease.Key == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, c.client, []string{lease.Key}, lease.HolderToken).Err(); err != nil {
		return fmt.Errorf("lock store release: %w", err)
	}
	return nil
}

var _ domain.LockCoordinator = (*LockCoordinator)(nil)
