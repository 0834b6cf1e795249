package memory

import (
	"context"
	"sync"

	"github.com/victorcov/order-worker/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu     sync.RWMutex
	items  map[string]domain.Order
	writes map[string]int

	// FailUpsert моделирует ошибку хранилища в тестах.
	FailUpsert error
}

// NewOrderRepository возвращает in-memory репозиторий для локальной
// разработки и тестов.
func NewOrderRepository() *orderRepositoryInMemory {
	return &orderRepositoryInMemory{
		items:  make(map[string]domain.Order),
		writes: make(map[string]int),
	}
}

// Upsert сохраняет заказ по OrderID, перезаписывая существующий документ.
func (r *orderRepositoryInMemory) Upsert(ctx context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailUpsert != nil {
		return r.FailUpsert
	}
	// Сохраняем копию списка позиций, чтобы избежать мутаций извне.
	stored := order
	stored.Products = append([]domain.Product(nil), order.Products...)
	r.items[order.OrderID] = stored
	r.writes[order.OrderID]++
	return nil
}

// Get возвращает сохранённый заказ и признак его наличия.
func (r *orderRepositoryInMemory) Get(orderID string) (domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.items[orderID]
	return order, ok
}

// UpsertCount возвращает количество записей заказа, для проверки идемпотентности.
func (r *orderRepositoryInMemory) UpsertCount(orderID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes[orderID]
}

// Len возвращает количество сохранённых заказов.
func (r *orderRepositoryInMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
