package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/app"
)

// setupLogger настраивает формат и уровень логирования для воркера.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if os.Getenv("ORDER_WORKER_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
}

// readConfig формирует конфигурацию воркера, позволяя переопределить
// адреса и таймауты через переменные окружения.
func readConfig() app.Config {
	cfg := app.DefaultConfig()
	if v := os.Getenv("ORDER_WORKER_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ORDER_WORKER_ORDERS_TOPIC"); v != "" {
		cfg.OrdersTopic = v
	}
	if v := os.Getenv("ORDER_WORKER_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("ORDER_WORKER_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("ORDER_WORKER_MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("ORDER_WORKER_MONGO_DB"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := os.Getenv("ORDER_WORKER_PRODUCT_API_URL"); v != "" {
		cfg.ProductAPIURL = v
	}
	if v := os.Getenv("ORDER_WORKER_CLIENT_API_URL"); v != "" {
		cfg.ClientAPIURL = v
	}
	if v := os.Getenv("ORDER_WORKER_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("ORDER_WORKER_WAIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WaitTimeout = d
		}
	}
	if v := os.Getenv("ORDER_WORKER_LEASE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LeaseTimeout = d
		}
	}
	return cfg
}

func main() {
	setupLogger()
	cfg := readConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"kafka_brokers": cfg.KafkaBrokers,
		"orders_topic":  cfg.OrdersTopic,
		"metrics_addr":  cfg.MetricsAddr,
	}).Info("запускаем Order Worker")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("воркер завершился с ошибкой")
	}

	log.Info("Order Worker остановлен")
}
