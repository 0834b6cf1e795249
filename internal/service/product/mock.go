package product

import (
	"context"

	"github.com/victorcov/order-worker/internal/domain"
)

// MockCatalog — конфигурируемая заглушка ProductCatalog для тестов.
type MockCatalog struct {
	Products []domain.Product
	Err      error

	FetchCalls int
	LastIDs    []string
}

// NewMockCatalog возвращает mock с пустым каталогом по умолчанию.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{}
}

// FetchByIDs возвращает заранее настроенный результат и считает вызовы.
func (m *MockCatalog) FetchByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	m.FetchCalls++
	m.LastIDs = ids
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Products, nil
}

var _ domain.ProductCatalog = (*MockCatalog)(nil)
