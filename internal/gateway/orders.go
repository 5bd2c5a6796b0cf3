package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type CreatePaymentIntentRequest struct {
	OrderID int64 `json:"order_id"`
}

// CreateOrder asks the backend to turn its copy of the cart into an order.
func (c *Client) CreateOrder(ctx context.Context) (*domain.Order, error) {
	var resp struct {
		Order *domain.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, &APIError{
			Method:     http.MethodPost,
			Path:       "/api/orders",
			StatusCode: http.StatusBadGateway,
			Message:    "order response without order",
		}
	}
	return resp.Order, nil
}

func (c *Client) GetOrders(ctx context.Context) ([]domain.Order, error) {
	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Orders == nil {
		return []domain.Order{}, nil
	}
	return resp.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	path := fmt.Sprintf("/api/orders/%d", orderID)
	var resp struct {
		Order *domain.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Order == nil {
		return nil, &APIError{Method: http.MethodGet, Path: path, StatusCode: http.StatusNotFound, Message: "order not found"}
	}
	return resp.Order, nil
}
