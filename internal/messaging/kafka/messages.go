package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/victorcov/order-worker/internal/domain"
)

// Topics для Kafka
const (
	// TopicOrders — входной топик с заказами, доставка at-least-once.
	TopicOrders = "orders_topic"
	// TopicFailedOrders — терминальные маркеры заказов, исчерпавших повторы.
	TopicFailedOrders = "orders_failed_topic"
)

// ConsumerGroup — группа воркеров, разделяющих входной поток заказов.
const ConsumerGroup = "order_group"

// OrderMessage — формат входящего сообщения с заказом.
type OrderMessage struct {
	OrderID    string           `json:"orderId"`
	CustomerID string           `json:"customerId"`
	Products   []ProductMessage `json:"products"`
}

// ProductMessage — позиция заказа во входящем сообщении; несёт только productId.
type ProductMessage struct {
	ProductID string `json:"productId"`
}

// FailedOrderEvent — событие терминального отказа, публикуемое в TopicFailedOrders.
type FailedOrderEvent struct {
	OrderID  string    `json:"order_id"`
	Reason   string    `json:"reason"`
	Attempts int64     `json:"attempts"`
	FailedAt time.Time `json:"failed_at"`
}

// ParseOrderMessage десериализует payload сообщения в доменный заказ.
func ParseOrderMessage(payload []byte) (domain.Order, error) {
	var msg OrderMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.Order{}, fmt.Errorf("failed to unmarshal order message: %w", err)
	}
	return msg.ToDomain(), nil
}

// ToDomain преобразует сообщение в доменную модель.
func (m OrderMessage) ToDomain() domain.Order {
	order := domain.Order{
		OrderID:    m.OrderID,
		CustomerID: m.CustomerID,
		Products:   make([]domain.Product, 0, len(m.Products)),
	}
	for _, p := range m.Products {
		order.Products = append(order.Products, domain.Product{ProductID: p.ProductID})
	}
	return order
}
