package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ProductPage struct {
	Products   []domain.Product `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

func (c *Client) GetProducts(ctx context.Context, query domain.ProductQuery) (*ProductPage, error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(query.PerPage))
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	path := "/api/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp struct {
		ProductPage
		Data []domain.Product `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	page := resp.ProductPage
	if page.Products == nil {
		page.Products = resp.Data
	}
	if page.Products == nil {
		page.Products = []domain.Product{}
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	path := fmt.Sprintf("/api/products/%d", productID)
	var resp struct {
		Product *domain.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, &APIError{Method: http.MethodGet, Path: path, StatusCode: http.StatusNotFound, Message: "product not found"}
	}
	return resp.Product, nil
}

func (c *Client) SearchProducts(ctx context.Context, q string) ([]domain.Product, error) {
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/products/search?q="+url.QueryEscape(q), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Products == nil {
		return []domain.Product{}, nil
	}
	return resp.Products, nil
}
