package memory

import (
	"context"
	"testing"

	"github.com/victorcov/order-worker/internal/domain"
)

func TestOrderRepository_UpsertIsIdempotentByKey(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := domain.Order{
		OrderID:    "order-1",
		CustomerID: "customer-1",
		Products:   []domain.Product{{ProductID: "p-1", Name: "First", Price: 1.0}},
	}
	if err := repo.Upsert(ctx, order); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Повторное сохранение перезаписывает документ данными последней попытки.
	order.Products = []domain.Product{{ProductID: "p-1", Name: "Updated", Price: 2.0}}
	if err := repo.Upsert(ctx, order); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if repo.Len() != 1 {
		t.Fatalf("expected one stored order, got %d", repo.Len())
	}
	stored, ok := repo.Get("order-1")
	if !ok {
		t.Fatal("expected order to exist")
	}
	if stored.Products[0].Name != "Updated" || stored.Products[0].Price != 2.0 {
		t.Fatalf("expected latest attempt data, got %+v", stored.Products[0])
	}
	if repo.UpsertCount("order-1") != 2 {
		t.Fatalf("expected 2 writes, got %d", repo.UpsertCount("order-1"))
	}
}

func TestOrderRepository_StoresCopyOfProducts(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := domain.Order{
		OrderID:    "order-1",
		CustomerID: "customer-1",
		Products:   []domain.Product{{ProductID: "p-1"}},
	}
	if err := repo.Upsert(ctx, order); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	order.Products[0].ProductID = "mutated"

	stored, _ := repo.Get("order-1")
	if stored.Products[0].ProductID != "p-1" {
		t.Fatal("stored order must not observe caller-side mutations")
	}
}
