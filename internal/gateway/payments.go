package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// CreatePaymentIntent is idempotent per order on the backend: asking again for an order that
// already has a payment returns the existing intent's secret.
func (c *Client) CreatePaymentIntent(ctx context.Context, orderID int64) (*domain.PaymentSession, error) {
	var resp struct {
		ClientSecret string `json:"client_secret"`
	}
	err := c.do(ctx, http.MethodPost, "/api/payment/create-intent", CreatePaymentIntentRequest{OrderID: orderID}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ClientSecret == "" {
		return nil, &APIError{
			Method:     http.MethodPost,
			Path:       "/api/payment/create-intent",
			StatusCode: http.StatusBadGateway,
			Message:    "payment intent response without client secret",
		}
	}
	return &domain.PaymentSession{ClientSecret: resp.ClientSecret, OrderID: orderID}, nil
}

func (c *Client) GetPaymentByOrder(ctx context.Context, orderID int64) (*domain.Payment, error) {
	path := fmt.Sprintf("/api/payment/order/%d", orderID)
	var resp struct {
		Payment *domain.Payment `json:"payment"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Payment == nil {
		return nil, &APIError{Method: http.MethodGet, Path: path, StatusCode: http.StatusNotFound, Message: "payment not found"}
	}
	return resp.Payment, nil
}
