package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AddToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateCartLineRequest struct {
	Quantity int `json:"quantity"`
}

type lineResponse struct {
	Item *domain.CartLine `json:"item"`
}

// GetCart accepts both {"cart":{"items":[...]}} and {"items":[...]} envelopes.
func (c *Client) GetCart(ctx context.Context) ([]domain.CartLine, error) {
	var resp struct {
		Cart *struct {
			Items []domain.CartLine `json:"items"`
		} `json:"cart"`
		Items []domain.CartLine `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Cart != nil && resp.Cart.Items != nil {
		return resp.Cart.Items, nil
	}
	if resp.Items != nil {
		return resp.Items, nil
	}
	return []domain.CartLine{}, nil
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (*domain.CartLine, error) {
	var resp lineResponse
	err := c.do(ctx, http.MethodPost, "/api/cart/items", AddToCartRequest{ProductID: productID, Quantity: quantity}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Item, nil
}

func (c *Client) UpdateCartLine(ctx context.Context, lineID int64, quantity int) (*domain.CartLine, error) {
	var resp lineResponse
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/cart/items/%d", lineID), UpdateCartLineRequest{Quantity: quantity}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Item, nil
}

func (c *Client) RemoveCartLine(ctx context.Context, lineID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", lineID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, nil)
}
