// Package store holds the client-state synchronization core: one credential, cart and checkout
// store per browser session. Stores cache what the backend last said and never hold their
// lock across a backend call.
package store

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrNotRehydrated   = errors.New("session not rehydrated yet")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNoCurrentOrder  = errors.New("no order in checkout")
	ErrEmptyResponse   = errors.New("backend returned no data")
)

// AuthAPI is the part of the backend gateway the credential store needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Logout(ctx context.Context) error
	HasToken(ctx context.Context) (present bool, expired bool, err error)
	GetCurrentUser(ctx context.Context) (*domain.User, error)
}

type CartAPI interface {
	GetCart(ctx context.Context) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (*domain.CartLine, error)
	UpdateCartLine(ctx context.Context, lineID int64, quantity int) (*domain.CartLine, error)
	RemoveCartLine(ctx context.Context, lineID int64) error
	ClearCart(ctx context.Context) error
}

type CheckoutAPI interface {
	CreateOrder(ctx context.Context) (*domain.Order, error)
	CreatePaymentIntent(ctx context.Context, orderID int64) (*domain.PaymentSession, error)
	GetPaymentByOrder(ctx context.Context, orderID int64) (*domain.Payment, error)
}
