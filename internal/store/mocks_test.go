package store

import (
	"context"
	"errors"
	"io"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/sirupsen/logrus"
)

var errLineNotFound = errors.New("cart line not found")

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// MockAuthAPI implements AuthAPI for testing. It keeps its token in a storage.TokenStore the
// way the real gateway does.
type MockAuthAPI struct {
	Tokens storage.TokenStore
	Key    string

	User         *domain.User
	Token        string
	LoginErr     error
	MeErr        error
	TokenExpired bool
	// OnMe runs before GetCurrentUser answers; used to simulate the 401 hook.
	OnMe func()

	LoginCalls int
	MeCalls    int
}

func (m *MockAuthAPI) Login(ctx context.Context, _, _ string) (*domain.User, error) {
	m.LoginCalls++
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	if err := m.Tokens.SaveToken(ctx, m.Key, m.Token); err != nil {
		return nil, err
	}
	return m.User, nil
}

func (m *MockAuthAPI) Register(ctx context.Context, email, password, _ string) (*domain.User, error) {
	return m.Login(ctx, email, password)
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	return m.Tokens.ClearToken(ctx, m.Key)
}

func (m *MockAuthAPI) HasToken(ctx context.Context) (bool, bool, error) {
	_, err := m.Tokens.LoadToken(ctx, m.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, m.TokenExpired, nil
}

func (m *MockAuthAPI) GetCurrentUser(_ context.Context) (*domain.User, error) {
	m.MeCalls++
	if m.OnMe != nil {
		m.OnMe()
	}
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	return m.User, nil
}

// MockCartAPI implements CartAPI as a tiny in-memory backend.
type MockCartAPI struct {
	Lines    []domain.CartLine
	Products map[int64]domain.ProductSnapshot
	nextID   int64

	GetErr    error
	AddErr    error
	UpdateErr error
	RemoveErr error
	ClearErr  error

	GetCalls int
}

func (m *MockCartAPI) GetCart(_ context.Context) ([]domain.CartLine, error) {
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return append([]domain.CartLine(nil), m.Lines...), nil
}

func (m *MockCartAPI) AddToCart(_ context.Context, productID int64, quantity int) (*domain.CartLine, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	for i := range m.Lines {
		if m.Lines[i].ProductID == productID {
			m.Lines[i].Quantity += quantity
			line := m.Lines[i]
			return &line, nil
		}
	}
	m.nextID++
	line := domain.CartLine{ID: m.nextID, ProductID: productID, Quantity: quantity}
	if snapshot, ok := m.Products[productID]; ok {
		line.Product = &snapshot
	}
	m.Lines = append(m.Lines, line)
	return &line, nil
}

func (m *MockCartAPI) UpdateCartLine(_ context.Context, lineID int64, quantity int) (*domain.CartLine, error) {
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	for i := range m.Lines {
		if m.Lines[i].ID == lineID {
			m.Lines[i].Quantity = quantity
			line := m.Lines[i]
			return &line, nil
		}
	}
	return nil, errLineNotFound
}

func (m *MockCartAPI) RemoveCartLine(_ context.Context, lineID int64) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for i := range m.Lines {
		if m.Lines[i].ID == lineID {
			m.Lines = append(m.Lines[:i], m.Lines[i+1:]...)
			return nil
		}
	}
	return errLineNotFound
}

func (m *MockCartAPI) ClearCart(_ context.Context) error {
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Lines = nil
	return nil
}

// MockCheckoutAPI implements CheckoutAPI for testing.
type MockCheckoutAPI struct {
	Cart      *MockCartAPI
	nextOrder int64

	OrderErr   error
	IntentErr  error
	Payment    *domain.Payment
	PaymentErr error

	OrderCalls  int
	IntentCalls int
	IntentFor   []int64
}

func (m *MockCheckoutAPI) CreateOrder(_ context.Context) (*domain.Order, error) {
	m.OrderCalls++
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	m.nextOrder++
	order := &domain.Order{ID: m.nextOrder, OrderNumber: "ORD-TEST", Status: domain.OrderStatusPending}
	if m.Cart != nil {
		order.TotalAmount = domain.Summarize(m.Cart.Lines).TotalAmount
	}
	return order, nil
}

func (m *MockCheckoutAPI) CreatePaymentIntent(_ context.Context, orderID int64) (*domain.PaymentSession, error) {
	m.IntentCalls++
	m.IntentFor = append(m.IntentFor, orderID)
	if m.IntentErr != nil {
		return nil, m.IntentErr
	}
	return &domain.PaymentSession{ClientSecret: "pi_secret", OrderID: orderID}, nil
}

func (m *MockCheckoutAPI) GetPaymentByOrder(_ context.Context, _ int64) (*domain.Payment, error) {
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	return m.Payment, nil
}
