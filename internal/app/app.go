package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/victorcov/order-worker/internal/health"
	"github.com/victorcov/order-worker/internal/messaging/kafka"
	"github.com/victorcov/order-worker/internal/metrics"
	"github.com/victorcov/order-worker/internal/service/client"
	"github.com/victorcov/order-worker/internal/service/pipeline"
	"github.com/victorcov/order-worker/internal/service/product"
	mongostore "github.com/victorcov/order-worker/internal/storage/mongo"
	redisstore "github.com/victorcov/order-worker/internal/storage/redis"
	"github.com/victorcov/order-worker/internal/version"
)

// Config описывает настройки запуска воркера.
type Config struct {
	KafkaBrokers  []string
	OrdersTopic   string
	FailedTopic   string
	ConsumerGroup string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	ProductAPIURL string
	ClientAPIURL  string

	MetricsAddr string

	// Параметры распределённой блокировки и retry-механизма.
	WaitTimeout       time.Duration
	LeaseTimeout      time.Duration
	MaxAttempts       int64
	BackoffBase       time.Duration
	BackoffMultiplier float64

	// CollaboratorTimeout ограничивает каждый запрос к внешнему сервису.
	// Должен быть строго меньше LeaseTimeout, иначе lease может истечь
	// посреди этапа.
	CollaboratorTimeout time.Duration

	// ConnectTimeout ограничивает стартовое подключение к хранилищам.
	ConnectTimeout time.Duration
}

// DefaultConfig возвращает базовую конфигурацию воркера.
func DefaultConfig() Config {
	return Config{
		KafkaBrokers:  []string{"localhost:9092"},
		OrdersTopic:   kafka.TopicOrders,
		FailedTopic:   kafka.TopicFailedOrders,
		ConsumerGroup: kafka.ConsumerGroup,

		RedisAddr: "localhost:6379",

		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "orders",

		ProductAPIURL: "http://localhost:8081/products",
		ClientAPIURL:  "http://localhost:8082/clients",

		MetricsAddr: ":9090",

		WaitTimeout:       5 * time.Second,
		LeaseTimeout:      10 * time.Second,
		MaxAttempts:       5,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,

		CollaboratorTimeout: 3 * time.Second,
		ConnectTimeout:      30 * time.Second,
	}
}

// SchedulerConfig возвращает настройки retry-механизма из конфигурации.
func (c Config) SchedulerConfig() pipeline.SchedulerConfig {
	return pipeline.SchedulerConfig{
		MaxAttempts:       c.MaxAttempts,
		BackoffBase:       c.BackoffBase,
		BackoffMultiplier: c.BackoffMultiplier,
	}
}

// Run собирает зависимости и запускает воркер до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	redisClient, err := initRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("failed to close redis client")
		}
	}()

	mongoClient, mongoDB, err := initMongo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.WithError(err).Warn("failed to disconnect mongo client")
		}
	}()

	orders := mongostore.NewOrderRepository(mongoDB, logger.WithField("layer", "storage"))
	if err := orders.EnsureIndexes(ctx); err != nil {
		return err
	}

	locks := redisstore.NewLockCoordinator(redisClient, logger.WithField("layer", "storage"))
	retries := redisstore.NewRetryStateStore(redisClient, logger.WithField("layer", "storage"))

	products := product.NewClient(cfg.ProductAPIURL, cfg.CollaboratorTimeout, logger.WithField("layer", "collaborator"))
	clients := client.NewClient(cfg.ClientAPIURL, cfg.CollaboratorTimeout, logger.WithField("layer", "collaborator"))

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		return err
	}
	defer closeKafkaProducer(producer, logger)

	journal := kafka.NewFailureJournal(producer)

	pipelineMetrics := metrics.NewPipelineMetrics()

	scheduler := pipeline.NewScheduler(retries, journal, cfg.SchedulerConfig(), nil, logger.WithField("layer", "pipeline"))
	orchestrator := pipeline.NewOrchestrator(
		products,
		clients,
		orders,
		locks,
		retries,
		scheduler,
		cfg.WaitTimeout,
		cfg.LeaseTimeout,
		logger.WithField("layer", "pipeline"),
	)
	scheduler.Bind(orchestrator)

	intake := kafka.NewOrderIntake(orchestrator, pipelineMetrics, logger.WithField("layer", "intake"))

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, []string{cfg.OrdersTopic}, intake.Handle)
	if err != nil {
		return err
	}
	if err := consumer.Start(ctx); err != nil {
		return err
	}

	httpServer := newHTTPServer(cfg, redisClient, mongoClient, logger)

	<-ctx.Done()
	logger.Info("shutdown requested")

	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop kafka consumer")
	}
	intake.Drain()
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("failed to shut down http server")
	}

	return ctx.Err()
}

// newHTTPServer поднимает /metrics и /healthz на отдельном адресе.
func newHTTPServer(cfg Config, redisPing redisPinger, mongoPing mongoPinger, logger *log.Entry) *http.Server {
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("redis", healthcheck.NewPingChecker("redis", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return redisPing.Ping(ctx).Err()
	}))
	healthHandler.RegisterChecker("mongo", healthcheck.NewPingChecker("mongo", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return mongoPing.Ping(ctx, nil)
	}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)

	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server failed")
		}
	}()
	logger.WithField("addr", cfg.MetricsAddr).Info("metrics and health endpoints started")
	return server
}
