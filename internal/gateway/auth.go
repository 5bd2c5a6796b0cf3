package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login posts credentials and, on success, stores the returned bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return c.authenticate(ctx, "/api/auth/login", LoginRequest{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return c.authenticate(ctx, "/api/auth/register", RegisterRequest{Email: email, Password: password, Name: name})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*domain.User, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, &APIError{
			Method:     http.MethodPost,
			Path:       path,
			StatusCode: http.StatusBadGateway,
			Message:    "auth response without token or user",
		}
	}
	if err := c.saveToken(ctx, resp.Token); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout forgets the bearer token. There is no backend call.
func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.ClearToken(ctx, c.key)
}

// HasToken reports whether a bearer credential is stored, and its expiry when readable.
func (c *Client) HasToken(ctx context.Context) (present bool, expired bool, err error) {
	token, err := c.tokens.LoadToken(ctx, c.key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if exp, ok := TokenExpiry(token); ok && !exp.After(timeNow()) {
		return true, true, nil
	}
	return true, false, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{
			Method:     http.MethodGet,
			Path:       "/api/auth/me",
			StatusCode: http.StatusBadGateway,
			Message:    "profile response without user",
		}
	}
	return resp.User, nil
}
