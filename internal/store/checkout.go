package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sirupsen/logrus"
)

// CheckoutSnapshot is a consistent view of the checkout state.
type CheckoutSnapshot struct {
	Order        *domain.Order   `json:"order,omitempty"`
	Payment      *domain.Payment `json:"payment,omitempty"`
	ClientSecret string          `json:"client_secret,omitempty"`
	Loading      bool            `json:"loading"`
}

// CheckoutStore turns the cart into an order plus a payment session. A cached order is reused
// on re-entry so repeated initialization never creates a second order.
type CheckoutStore struct {
	api CheckoutAPI
	log logrus.FieldLogger

	mu           sync.RWMutex
	order        *domain.Order
	payment      *domain.Payment
	clientSecret string
	loading      bool
}

func NewCheckoutStore(api CheckoutAPI, log logrus.FieldLogger) *CheckoutStore {
	return &CheckoutStore{
		api: api,
		log: log.WithField("component", "checkout_store"),
	}
}

func (s *CheckoutStore) CreateOrder(ctx context.Context) (*domain.Order, error) {
	s.setLoading(true)
	defer s.setLoading(false)
	return s.createOrder(ctx)
}

func (s *CheckoutStore) createOrder(ctx context.Context) (*domain.Order, error) {
	order, err := s.api.CreateOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("create order: %w", ErrEmptyResponse)
	}

	s.mu.Lock()
	s.order = order
	s.mu.Unlock()

	s.log.WithField("order_id", order.ID).Info("order created")
	return copyOrder(order), nil
}

func (s *CheckoutStore) CreatePaymentIntent(ctx context.Context, orderID int64) (*domain.PaymentSession, error) {
	s.setLoading(true)
	defer s.setLoading(false)
	return s.createPaymentIntent(ctx, orderID)
}

func (s *CheckoutStore) createPaymentIntent(ctx context.Context, orderID int64) (*domain.PaymentSession, error) {
	session, err := s.api.CreatePaymentIntent(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("create payment intent for order %d: %w", orderID, err)
	}
	if session == nil {
		return nil, fmt.Errorf("create payment intent for order %d: %w", orderID, ErrEmptyResponse)
	}

	s.mu.Lock()
	s.clientSecret = session.ClientSecret
	s.mu.Unlock()

	copied := *session
	return &copied, nil
}

// Initialize creates or resumes checkout. With an order already cached only the payment
// intent is requested; otherwise the order is created first. A failed intent leaves the new
// order cached so the next call resumes it.
func (s *CheckoutStore) Initialize(ctx context.Context) (*domain.Order, *domain.PaymentSession, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	s.mu.RLock()
	order := copyOrder(s.order)
	s.mu.RUnlock()

	if order == nil {
		var err error
		if order, err = s.createOrder(ctx); err != nil {
			return nil, nil, err
		}
	} else {
		s.log.WithField("order_id", order.ID).Debug("resuming checkout for cached order")
	}

	session, err := s.createPaymentIntent(ctx, order.ID)
	if err != nil {
		return order, nil, err
	}
	return order, session, nil
}

// GetPayment looks up the payment status of an order without changing checkout progress.
func (s *CheckoutStore) GetPayment(ctx context.Context, orderID int64) (*domain.Payment, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	payment, err := s.api.GetPaymentByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get payment for order %d: %w", orderID, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("get payment for order %d: %w", orderID, ErrEmptyResponse)
	}

	s.mu.Lock()
	s.payment = payment
	s.mu.Unlock()

	copied := *payment
	return &copied, nil
}

// ResetCheckout forgets the order, payment and client secret together.
func (s *CheckoutStore) ResetCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.payment = nil
	s.clientSecret = ""
	s.loading = false
}

func (s *CheckoutStore) Snapshot() CheckoutSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := CheckoutSnapshot{
		Order:        copyOrder(s.order),
		ClientSecret: s.clientSecret,
		Loading:      s.loading,
	}
	if s.payment != nil {
		payment := *s.payment
		snapshot.Payment = &payment
	}
	return snapshot
}

// CurrentOrder returns the cached order or ErrNoCurrentOrder.
func (s *CheckoutStore) CurrentOrder() (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.order == nil {
		return nil, ErrNoCurrentOrder
	}
	return copyOrder(s.order), nil
}

func (s *CheckoutStore) HasCurrentOrder() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order != nil
}

func (s *CheckoutStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *CheckoutStore) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func copyOrder(order *domain.Order) *domain.Order {
	if order == nil {
		return nil
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied
}
