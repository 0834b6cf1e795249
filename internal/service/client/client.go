package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/victorcov/order-worker/internal/domain"
)

// clientPayload — формат ответа Client API.
type clientPayload struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsActive   bool   `json:"isActive"`
}

// Client — HTTP-клиент справочника клиентов.
type Client struct {
	http   *resty.Client
	logger *log.Entry
}

// NewClient создаёт клиента справочника.
func NewClient(baseURL string, timeout time.Duration, logger *log.Entry) *Client {
	if logger == nil {
		logger = log.WithField("component", "client-directory")
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		logger: logger,
	}
}

// FindByID возвращает клиента по идентификатору. Ответы 4xx трактуются как
// ErrClientNotFound, транспортные и серверные ошибки — как ErrClientUnavailable.
func (c *Client) FindByID(ctx context.Context, customerID string) (domain.Client, error) {
	c.logger.WithField("customer_id", customerID).Debug("sending request to client api")

	var payload clientPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/" + customerID)
	if err != nil {
		return domain.Client{}, fmt.Errorf("%w: %v", domain.ErrClientUnavailable, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest && resp.StatusCode() < http.StatusInternalServerError {
		return domain.Client{}, domain.ErrClientNotFound
	}
	if resp.IsError() {
		return domain.Client{}, fmt.Errorf("%w: client api returned status %d", domain.ErrClientUnavailable, resp.StatusCode())
	}

	return domain.Client{
		CustomerID: payload.CustomerID,
		Name:       payload.Name,
		Email:      payload.Email,
		IsActive:   payload.IsActive,
	}, nil
}

var _ domain.ClientDirectory = (*Client)(nil)
