package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/domain"
	"github.com/victorcov/order-worker/internal/service/client"
	"github.com/victorcov/order-worker/internal/service/product"
	"github.com/victorcov/order-worker/internal/storage/memory"
)

// Dependencies содержит портовые зависимости пайплайна.
type Dependencies struct {
	Products domain.ProductCatalog
	Clients  domain.ClientDirectory
	Orders   domain.OrderRepository
	Locks    domain.LockCoordinator
	Retries  domain.RetryStateStore
	Journal  domain.FailureJournal
	Logger   *log.Entry
}

// NewDependencies возвращает набор in-memory зависимостей для локальной
// разработки и тестов. В production воркер собирается в Run поверх
// Redis/Mongo/Kafka и HTTP-коллабораторов.
func NewDependencies(logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	catalog := product.NewMockCatalog()
	catalog.Products = []domain.Product{
		{ProductID: "product-101", Name: "Sample Product", Price: 9.99},
	}

	return &Dependencies{
		Products: catalog,
		Clients:  client.NewMockDirectory(),
		Orders:   memory.NewOrderRepository(),
		Locks:    memory.NewLockCoordinator(),
		Retries:  memory.NewRetryStateStore(),
		Journal:  memory.NewFailureJournal(),
		Logger:   logger,
	}
}
