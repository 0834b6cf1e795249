package mongo

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/victorcov/order-worker/internal/domain"
)

const ordersCollection = "orders"

// orderDocument — представление заказа в коллекции orders.
type orderDocument struct {
	OrderID    string            `bson:"orderId"`
	CustomerID string            `bson:"customerId"`
	Products   []productDocument `bson:"products"`
	UpdatedAt  time.Time         `bson:"updatedAt"`
}

type productDocument struct {
	ProductID string  `bson:"productId"`
	Name      string  `bson:"name"`
	Price     float64 `bson:"price"`
}

// OrderRepository хранит заказы в MongoDB. Сохранение — идемпотентный upsert
// по бизнес-ключу orderId: повтор после частичного успеха перезаписывает
// документ данными последней попытки, не создавая дубликатов.
type OrderRepository struct {
	collection *mongo.Collection
	logger     *log.Entry
}

// NewOrderRepository создаёт репозиторий поверх базы данных.
func NewOrderRepository(db *mongo.Database, logger *log.Entry) *OrderRepository {
	if logger == nil {
		logger = log.WithField("component", "mongo-orders")
	}
	return &OrderRepository{
		collection: db.Collection(ordersCollection),
		logger:     logger,
	}
}

// Upsert сохраняет заказ по orderId.
func (r *OrderRepository) Upsert(ctx context.Context, order domain.Order) error {
	doc := orderDocument{
		OrderID:    order.OrderID,
		CustomerID: order.CustomerID,
		Products:   make([]productDocument, 0, len(order.Products)),
		UpdatedAt:  time.Now().UTC(),
	}
	for _, p := range order.Products {
		doc.Products = append(doc.Products, productDocument{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
		})
	}

	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"orderId": order.OrderID},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", order.OrderID, err)
	}

	r.logger.WithFields(log.Fields{
		"order_id": order.OrderID,
		"inserted": res.UpsertedCount > 0,
	}).Debug("order upserted")
	return nil
}

// EnsureIndexes создаёт коллекцию orders (если её нет) и уникальный индекс
// по orderId. Одноразовая операция инициализации, вне горячего пути.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	db := r.collection.Database()

	names, err := db.ListCollectionNames(ctx, bson.M{"name": ordersCollection})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(names) == 0 {
		if err := db.CreateCollection(ctx, ordersCollection); err != nil {
			return fmt.Errorf("create collection %s: %w", ordersCollection, err)
		}
	}

	_, err = r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure orderId index: %w", err)
	}

	r.logger.Info("orders collection and indexes ensured")
	return nil
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
