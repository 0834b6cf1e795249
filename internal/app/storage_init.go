package app

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// redisPinger и mongoPinger нужны health-проверкам, чтобы не тянуть в HTTP-слой
// конкретные клиенты хранилищ.
type redisPinger interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type mongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// initRedis подключается к Redis, проверяя доступность с экспоненциальным
// backoff в пределах ConnectTimeout.
func initRedis(ctx context.Context, cfg Config, logger *log.Entry) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(cfg.ConnectTimeout),
	), ctx)

	err := backoff.Retry(func() error {
		return client.Ping(ctx).Err()
	}, policy)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.WithField("addr", cfg.RedisAddr).Info("redis connected")
	return client, nil
}

// initMongo подключается к MongoDB и возвращает клиента вместе с базой данных.
func initMongo(ctx context.Context, cfg Config, logger *log.Entry) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(cfg.ConnectTimeout),
	), ctx)

	err = backoff.Retry(func() error {
		return client.Ping(ctx, readpref.Primary())
	}, policy)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.WithField("database", cfg.MongoDatabase).Info("mongo connected")
	return client, client.Database(cfg.MongoDatabase), nil
}
