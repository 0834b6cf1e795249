package domain

// Order агрегирует данные заказа, проходящего через пайплайн обработки.
// Ключом для блокировки и учёта повторов служит OrderID.
type Order struct {
	OrderID    string
	CustomerID string
	Products   []Product
}

// Product представляет позицию заказа. Из входящего сообщения приходит
// только ProductID; Name и Price заполняются на этапе обогащения.
type Product struct {
	ProductID string
	Name      string
	Price     float64
}

// Client описывает ответ справочника клиентов.
type Client struct {
	CustomerID string
	Name       string
	Email      string
	IsActive   bool
}

// ProductIDs возвращает список идентификаторов товаров заказа.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ProductID)
	}
	return ids
}

// Validate проверяет форму входящего заказа и возвращает список замечаний.
// Невалидный заказ отбрасывается до пайплайна и не трогает ни блокировку,
// ни счётчик повторов.
func (o *Order) Validate() []error {
	var errs []error

	if o.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Products) == 0 {
		errs = append(errs, ErrProductsRequired)
	}
	for _, p := range o.Products {
		if p.ProductID == "" {
			errs = append(errs, ErrProductIDRequired)
			break
		}
	}

	return errs
}
