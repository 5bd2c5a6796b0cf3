package storage

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// SessionStore persists the identity half of a browser session, keyed by workspace id.
type SessionStore interface {
	LoadSession(ctx context.Context, key string) (*domain.PersistedSession, error)
	SaveSession(ctx context.Context, key string, session *domain.PersistedSession) error
	ClearSession(ctx context.Context, key string) error
}

// TokenStore persists the bearer credential the gateway attaches to requests.
type TokenStore interface {
	LoadToken(ctx context.Context, key string) (string, error)
	SaveToken(ctx context.Context, key, token string) error
	ClearToken(ctx context.Context, key string) error
}

// Store is the full durable client storage.
type Store interface {
	SessionStore
	TokenStore
}

var ErrNotFound = errors.New("not found in storage")
