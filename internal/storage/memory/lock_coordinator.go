package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/victorcov/order-worker/internal/domain"
)

// lockEntry описывает удерживаемую блокировку с моментом истечения.
type lockEntry struct {
	token     string
	expiresAt time.Time
}

// lockCoordinatorInMemory — in-memory реализация LockCoordinator для
// локальной разработки и тестов. Повторяет семантику Redis-варианта:
// эксклюзивность per-key, автоистечение lease, идемпотентный Release.
type lockCoordinatorInMemory struct {
	mu           sync.Mutex
	locks        map[string]lockEntry
	pollInterval time.Duration
}

// NewLockCoordinator возвращает in-memory координатор блокировок.
func NewLockCoordinator() domain.LockCoordinator {
	return &lockCoordinatorInMemory{
		locks:        make(map[string]lockEntry),
		pollInterval: 5 * time.Millisecond,
	}
}

// Acquire пытается захватить блокировку, опрашивая её до истечения wait.
func (c *lockCoordinatorInMemory) Acquire(ctx context.Context, orderID string, wait, lease time.Duration) (domain.Lease, error) {
	key := "order:lock:" + orderID
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		if c.tryAcquire(key, token, lease) {
			return domain.Lease{
				Key:          key,
				HolderToken:  token,
				LeaseTimeout: lease,
			}, nil
		}

		if time.Now().After(deadline) {
			return domain.Lease{}, domain.ErrLockNotAcquired
		}
		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return domain.Lease{}, domain.ErrLockNotAcquired
		}
	}
}

func (c *lockCoordinatorInMemory) tryAcquire(key, token string, lease time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, held := c.locks[key]; held && time.Now().Before(entry.expiresAt) {
		return false
	}
	c.locks[key] = lockEntry{
		token:     token,
		expiresAt: time.Now().Add(lease),
	}
	return true
}

// Release снимает блокировку, только если токен совпадает с владельцем.
func (c *lockCoordinatorInMemory) Release(ctx context.Context, lease domain.Lease) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, held := c.locks[lease.Key]; held && entry.token == lease.HolderToken {
		delete(c.locks, lease.Key)
	}
	return nil
}

var _ domain.LockCoordinator = (*lockCoordinatorInMemory)(nil)
