package memory

import (
	"context"
	"sync"

	"github.com/victorcov/order-worker/internal/domain"
)

// retryStateStoreInMemory — in-memory реализация RetryStateStore.
type retryStateStoreInMemory struct {
	mu       sync.Mutex
	attempts map[string]int64

	// FailIncrement моделирует недоступность хранилища в тестах.
	FailIncrement error
}

// NewRetryStateStore возвращает in-memory хранилище счётчиков попыток.
func NewRetryStateStore() *retryStateStoreInMemory {
	return &retryStateStoreInMemory{
		attempts: make(map[string]int64),
	}
}

// Increment увеличивает счётчик попыток и возвращает новое значение.
func (s *retryStateStoreInMemory) Increment(ctx context.Context, orderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailIncrement != nil {
		return 0, s.FailIncrement
	}
	s.attempts[orderID]++
	return s.attempts[orderID], nil
}

// Attempts возвращает текущее значение счётчика (0, если записи нет).
func (s *retryStateStoreInMemory) Attempts(ctx context.Context, orderID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[orderID], nil
}

// Clear удаляет счётчик.
func (s *retryStateStoreInMemory) Clear(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, orderID)
	return nil
}

var _ domain.RetryStateStore = (*retryStateStoreInMemory)(nil)
