package domain

import (
	"context"
	"time"
)

// ProductCatalog описывает взаимодействие с сервисом данных о товарах.
type ProductCatalog interface {
	// FetchByIDs возвращает найденные товары по списку идентификаторов.
	// Частичный и пустой результат допустимы.
	FetchByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// ClientDirectory описывает взаимодействие со справочником клиентов.
type ClientDirectory interface {
	// FindByID возвращает клиента или ErrClientNotFound / ErrClientUnavailable.
	FindByID(ctx context.Context, customerID string) (Client, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Upsert сохраняет заказ по бизнес-ключу OrderID. Повторный вызов с тем
	// же ключом перезаписывает документ, не создавая дубликат.
	Upsert(ctx context.Context, order Order) error
}

// Lease — запись об эксклюзивном владении блокировкой заказа.
// Действительна не дольше LeaseTimeout с момента получения.
type Lease struct {
	Key          string
	HolderToken  string
	LeaseTimeout time.Duration
}

// LockCoordinator выдаёт и снимает распределённые блокировки по ключу заказа.
// Гарантия: в любой момент существует не более одной действующей lease на ключ.
type LockCoordinator interface {
	// Acquire ждёт до wait, пытаясь захватить блокировку заказа.
	// Возвращает ErrLockNotAcquired, если окно ожидания истекло.
	Acquire(ctx context.Context, orderID string, wait, lease time.Duration) (Lease, error)
	// Release снимает блокировку. Идемпотентен: снятие истёкшей или уже
	// снятой lease не является ошибкой.
	Release(ctx context.Context, lease Lease) error
}

// RetryStateStore хранит счётчики попыток по ключу заказа.
// Инкременты атомарны на стороне хранилища.
type RetryStateStore interface {
	// Increment увеличивает счётчик попыток и возвращает новое значение
	// (1 при первом отказе).
	Increment(ctx context.Context, orderID string) (int64, error)
	// Attempts возвращает текущее значение счётчика (0, если записи нет).
	Attempts(ctx context.Context, orderID string) (int64, error)
	// Clear удаляет счётчик после успешной обработки.
	Clear(ctx context.Context, orderID string) error
}

// PipelineStage задаёт константы этапов пайплайна для метрик/логов.
type PipelineStage string

const (
	StageEnrich         PipelineStage = "enrich"
	StageValidateClient PipelineStage = "validate_client"
	StagePersist        PipelineStage = "persist"
)

// FailedOrder — терминальная запись об исчерпании лимита повторов.
type FailedOrder struct {
	OrderID  string
	Reason   string
	Attempts int64
	FailedAt time.Time
}

// FailureJournal фиксирует окончательно неуспешные заказы как наблюдаемый
// терминальный маркер.
type FailureJournal interface {
	Record(ctx context.Context, failure FailedOrder) error
}
