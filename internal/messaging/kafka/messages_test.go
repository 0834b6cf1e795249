package kafka

import (
	"testing"
)

func TestParseOrderMessage(t *testing.T) {
	payload := []byte(`{
		"orderId": "order-009",
		"customerId": "customer-001",
		"products": [
			{"productId": "product-101"},
			{"productId": "product-1002"}
		]
	}`)

	order, err := ParseOrderMessage(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if order.OrderID != "order-009" {
		t.Errorf("unexpected orderId: %s", order.OrderID)
	}
	if order.CustomerID != "customer-001" {
		t.Errorf("unexpected customerId: %s", order.CustomerID)
	}
	if len(order.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(order.Products))
	}
	if order.Products[0].ProductID != "product-101" || order.Products[1].ProductID != "product-1002" {
		t.Errorf("unexpected products: %+v", order.Products)
	}
}

func TestParseOrderMessage_InvalidJSON(t *testing.T) {
	if _, err := ParseOrderMessage([]byte(`{"orderId": `)); err == nil {
		t.Fatal("expected error on malformed payload")
	}
}

func TestParseOrderMessage_EmptyProducts(t *testing.T) {
	order, err := ParseOrderMessage([]byte(`{"orderId":"order-001","customerId":"customer-001","products":[]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(order.Products) != 0 {
		t.Fatalf("expected no products, got %d", len(order.Products))
	}
	if errs := order.Validate(); len(errs) == 0 {
		t.Fatal("order without products must fail validation")
	}
}
