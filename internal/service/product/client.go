package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/domain"
)

// productPayload — формат ответа Product API.
type productPayload struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// Client — HTTP-клиент сервиса данных о товарах.
// Таймаут запроса обязан быть строго меньше leaseTimeout блокировки,
// иначе lease может истечь, пока этап логически ещё выполняется.
type Client struct {
	http   *resty.Client
	logger *log.Entry
}

// NewClient создаёт клиента каталога товаров.
func NewClient(baseURL string, timeout time.Duration, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.WithField("component", "product-client")
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		logger: logger,
	}
}

// FetchByIDs запрашивает товары по списку идентификаторов.
// Частичный результат допустим: API возвращает только найденные позиции.
func (c *Client) FetchByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	c.logger.WithField("product_ids", ids).Debug("sending request to product api")

	var payload []productPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetResult(&payload).
		Get("/by-ids")
	if err != nil {
		return nil, fmt.Errorf("product api request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("product api returned status %d", resp.StatusCode())
	}

	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, domain.Product{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
		})
	}
	return products, nil
}

var _ domain.ProductCatalog = (*Client)(nil)
