package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sirupsen/logrus"
)

// CartStore caches the backend cart. Every mutation is followed by a full re-fetch rather than
// patching the cache locally, so stock limits enforced by the backend are always reflected.
type CartStore struct {
	api CartAPI
	log logrus.FieldLogger

	mu      sync.RWMutex
	lines   []domain.CartLine
	summary domain.CartSummary
	loading bool
}

func NewCartStore(api CartAPI, log logrus.FieldLogger) *CartStore {
	return &CartStore{
		api:   api,
		log:   log.WithField("component", "cart_store"),
		lines: []domain.CartLine{},
	}
}

// FetchCart replaces the cache with the backend's line list. On failure the cache is left as is.
func (s *CartStore) FetchCart(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)
	return s.fetch(ctx)
}

func (s *CartStore) fetch(ctx context.Context) error {
	lines, err := s.api.GetCart(ctx)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}

	s.mu.Lock()
	s.lines = lines
	s.calculateTotalsLocked()
	s.mu.Unlock()
	return nil
}

func (s *CartStore) AddItem(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.api.AddToCart(ctx, productID, quantity); err != nil {
		return fmt.Errorf("add product %d to cart: %w", productID, err)
	}
	return s.fetch(ctx)
}

// UpdateItemQuantity sets a line's quantity. Setting zero is a removal and must go through RemoveItem.
func (s *CartStore) UpdateItemQuantity(ctx context.Context, lineID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.api.UpdateCartLine(ctx, lineID, quantity); err != nil {
		return fmt.Errorf("update cart line %d: %w", lineID, err)
	}
	return s.fetch(ctx)
}

func (s *CartStore) RemoveItem(ctx context.Context, lineID int64) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.RemoveCartLine(ctx, lineID); err != nil {
		return fmt.Errorf("remove cart line %d: %w", lineID, err)
	}
	return s.fetch(ctx)
}

// ClearCart empties the backend cart and then the cache directly; emptiness needs no re-fetch.
func (s *CartStore) ClearCart(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.mu.Lock()
	s.lines = []domain.CartLine{}
	s.calculateTotalsLocked()
	s.mu.Unlock()
	return nil
}

// Reset drops the cached cart without touching the backend, for when the session changes hands.
func (s *CartStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = []domain.CartLine{}
	s.calculateTotalsLocked()
	s.loading = false
}

// CalculateTotals recomputes the summary from the cached lines.
func (s *CartStore) CalculateTotals() domain.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateTotalsLocked()
	return s.summary
}

func (s *CartStore) calculateTotalsLocked() {
	s.summary = domain.Summarize(s.lines)
}

// Lines returns a copy of the cached lines.
func (s *CartStore) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]domain.CartLine, len(s.lines))
	for i, line := range s.lines {
		if line.Product != nil {
			snapshot := *line.Product
			line.Product = &snapshot
		}
		lines[i] = line
	}
	return lines
}

func (s *CartStore) Summary() domain.CartSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *CartStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

func (s *CartStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *CartStore) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}
