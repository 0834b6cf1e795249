package main

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongostore "github.com/victorcov/order-worker/internal/storage/mongo"
)

// init-store выполняет одноразовую инициализацию хранилища документов:
// создание коллекции orders и уникального индекса по orderId.
func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	uri := os.Getenv("ORDER_WORKER_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	database := os.Getenv("ORDER_WORKER_MONGO_DB")
	if database == "" {
		database = "orders"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.WithError(err).Fatal("не удалось подключиться к MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("failed to disconnect mongo client")
		}
	}()

	repo := mongostore.NewOrderRepository(client.Database(database), nil)
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("не удалось инициализировать коллекцию orders")
	}

	log.WithField("database", database).Info("хранилище заказов инициализировано")
}
