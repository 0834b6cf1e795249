package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order_id is required")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrProductsRequired = errors.New("order must contain at least one product")
	// Ошибка отсутствующего идентификатора товара в позиции заказа.
	ErrProductIDRequired = errors.New("product_id is required for every product")

	// ErrLockNotAcquired возвращается, если блокировку заказа не удалось
	// получить за отведённое время ожидания. Попытка отбрасывается и
	// полагается на повторную доставку сообщения.
	ErrLockNotAcquired = errors.New("order lock not acquired")

	// ErrProductNotFound — каталог не вернул ни одного товара по заказу.
	ErrProductNotFound = errors.New("products not found for order")
	// ErrClientNotFound — клиент не найден в справочнике.
	ErrClientNotFound = errors.New("client not found")
	// ErrClientInactive — клиент найден, но деактивирован.
	ErrClientInactive = errors.New("client is inactive")
	// ErrClientUnavailable — транспортная ошибка при обращении к справочнику клиентов.
	ErrClientUnavailable = errors.New("client service unavailable")
	// ErrPersistence — ошибка при сохранении заказа в хранилище документов.
	ErrPersistence = errors.New("order persistence failed")

	// ErrRetryCeilingExceeded — исчерпан лимит повторов, заказ помечен
	// как окончательно неуспешный.
	ErrRetryCeilingExceeded = errors.New("retry ceiling exceeded")
)

// IsRetryable сообщает, подлежит ли ошибка повторной обработке через
// механизм отложенных повторов.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrClientNotFound),
		errors.Is(err, ErrClientInactive),
		errors.Is(err, ErrClientUnavailable),
		errors.Is(err, ErrPersistence):
		return true
	}
	return false
}

// ReasonLabel возвращает короткую метку причины отказа для логов и метрик.
func ReasonLabel(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrClientNotFound):
		return "client_not_found"
	case errors.Is(err, ErrClientInactive):
		return "client_inactive"
	case errors.Is(err, ErrClientUnavailable):
		return "client_unavailable"
	case errors.Is(err, ErrPersistence):
		return "persistence_error"
	case errors.Is(err, ErrLockNotAcquired):
		return "lock_not_acquired"
	case errors.Is(err, ErrRetryCeilingExceeded):
		return "retry_ceiling_exceeded"
	}
	return "unknown"
}
