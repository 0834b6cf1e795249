package client

import (
	"context"

	"github.com/victorcov/order-worker/internal/domain"
)

// MockDirectory — конфигурируемая заглушка ClientDirectory для тестов.
type MockDirectory struct {
	Client domain.Client
	Err    error

	FindCalls int
	LastID    string
}

// NewMockDirectory возвращает mock с активным клиентом по умолчанию.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		Client: domain.Client{
			CustomerID: "customer-001",
			Name:       "Test Customer",
			Email:      "customer@example.com",
			IsActive:   true,
		},
	}
}

// FindByID возвращает заранее настроенный результат и считает вызовы.
func (m *MockDirectory) FindByID(ctx context.Context, customerID string) (domain.Client, error) {
	m.FindCalls++
	m.LastID = customerID
	if m.Err != nil {
		return domain.Client{}, m.Err
	}
	return m.Client, nil
}

var _ domain.ClientDirectory = (*MockDirectory)(nil)
