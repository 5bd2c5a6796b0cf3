package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
)

// fakeBackend is a minimal in-memory version of the storefront backend API.
type fakeBackend struct {
	mu            sync.Mutex
	products      map[int64]domain.Product
	lines         []domain.CartLine
	nextLine      int64
	orders        []domain.Order
	paymentStatus domain.PaymentStatus
	rejectAll     bool
	// failIntents makes the next n payment intent calls answer 500.
	failIntents int

	orderCalls  int
	intentCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: map[int64]domain.Product{
			10: {ID: 10, Name: "Kettle", Price: 1000, Stock: 5, Category: "kitchen"},
			20: {ID: 20, Name: "Mug", Price: 500, Stock: 50, Category: "kitchen"},
		},
		paymentStatus: domain.PaymentStatusPending,
	}
}

func (b *fakeBackend) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (b *fakeBackend) fail(w http.ResponseWriter, status int, message string) {
	b.writeJSON(w, status, map[string]string{"error": message})
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := r.URL.Path
	public := strings.HasPrefix(path, "/api/auth/login") || strings.HasPrefix(path, "/api/auth/register") ||
		strings.HasPrefix(path, "/api/products")
	if !public && (b.rejectAll || r.Header.Get("Authorization") != "Bearer tok-1") {
		b.fail(w, http.StatusUnauthorized, "invalid token")
		return
	}

	switch {
	case path == "/api/auth/login" || path == "/api/auth/register":
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret" {
			b.fail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		user := domain.User{ID: 1, Email: req["email"], Name: "Jane"}
		if req["email"] == "bob@example.com" {
			user = domain.User{ID: 2, Email: req["email"], Name: "Bob"}
		}
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"token": "tok-1", "user": user})
	case path == "/api/auth/me":
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"user": domain.User{ID: 1, Email: "jane@example.com", Name: "Jane"}})

	case path == "/api/products/search":
		var found []domain.Product
		for _, p := range b.products {
			if strings.Contains(strings.ToLower(p.Name), strings.ToLower(r.URL.Query().Get("q"))) {
				found = append(found, p)
			}
		}
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"products": found})
	case path == "/api/products":
		all := []domain.Product{b.products[10], b.products[20]}
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"products": all, "total": len(all), "page": 1, "per_page": 20})
	case strings.HasPrefix(path, "/api/products/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/api/products/"), 10, 64)
		p, ok := b.products[id]
		if !ok {
			b.fail(w, http.StatusNotFound, "product not found")
			return
		}
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"product": p})

	case path == "/api/cart" && r.Method == http.MethodGet:
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"cart": map[string]interface{}{"items": b.lines}})
	case path == "/api/cart" && r.Method == http.MethodDelete:
		b.lines = nil
		b.writeJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
	case path == "/api/cart/items" && r.Method == http.MethodPost:
		var req struct {
			ProductID int64 `json:"product_id"`
			Quantity  int   `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.addLine(w, req.ProductID, req.Quantity)
	case strings.HasPrefix(path, "/api/cart/items/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/api/cart/items/"), 10, 64)
		b.changeLine(w, r, id)

	case path == "/api/orders" && r.Method == http.MethodPost:
		b.orderCalls++
		if len(b.lines) == 0 {
			b.fail(w, http.StatusBadRequest, "cart is empty")
			return
		}
		order := domain.Order{
			ID:          int64(len(b.orders) + 1),
			OrderNumber: "ORD-" + strconv.Itoa(len(b.orders)+1),
			TotalAmount: domain.Summarize(b.lines).TotalAmount,
			Status:      domain.OrderStatusPending,
		}
		b.orders = append(b.orders, order)
		b.lines = nil
		b.writeJSON(w, http.StatusCreated, map[string]interface{}{"order": order})
	case path == "/api/orders":
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"orders": b.orders})
	case strings.HasPrefix(path, "/api/orders/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/api/orders/"), 10, 64)
		if id < 1 || int(id) > len(b.orders) {
			b.fail(w, http.StatusNotFound, "order not found")
			return
		}
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"order": b.orders[id-1]})

	case path == "/api/payment/create-intent":
		b.intentCalls++
		if b.failIntents > 0 {
			b.failIntents--
			b.fail(w, http.StatusInternalServerError, "payment processor unavailable")
			return
		}
		var req struct {
			OrderID int64 `json:"order_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.writeJSON(w, http.StatusOK, map[string]string{"client_secret": "pi_" + strconv.FormatInt(req.OrderID, 10) + "_secret"})
	case strings.HasPrefix(path, "/api/payment/order/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(path, "/api/payment/order/"), 10, 64)
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"payment": domain.Payment{
			ID: id, OrderID: id, Amount: b.orders[id-1].TotalAmount, Currency: "usd", Status: b.paymentStatus,
		}})

	default:
		b.fail(w, http.StatusNotFound, "not found")
	}
}

func (b *fakeBackend) addLine(w http.ResponseWriter, productID int64, quantity int) {
	p, ok := b.products[productID]
	if !ok {
		b.fail(w, http.StatusNotFound, "product not found")
		return
	}
	for i := range b.lines {
		if b.lines[i].ProductID == productID {
			if b.lines[i].Quantity+quantity > p.Stock {
				b.fail(w, http.StatusBadRequest, "insufficient stock")
				return
			}
			b.lines[i].Quantity += quantity
			b.writeJSON(w, http.StatusOK, map[string]interface{}{"item": b.lines[i]})
			return
		}
	}
	if quantity > p.Stock {
		b.fail(w, http.StatusBadRequest, "insufficient stock")
		return
	}
	b.nextLine++
	line := domain.CartLine{ID: b.nextLine, ProductID: productID, Quantity: quantity, Product: &domain.ProductSnapshot{
		ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock,
	}}
	b.lines = append(b.lines, line)
	b.writeJSON(w, http.StatusCreated, map[string]interface{}{"item": line})
}

func (b *fakeBackend) changeLine(w http.ResponseWriter, r *http.Request, id int64) {
	for i := range b.lines {
		if b.lines[i].ID != id {
			continue
		}
		if r.Method == http.MethodDelete {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			b.writeJSON(w, http.StatusOK, map[string]string{"message": "removed"})
			return
		}
		var req struct {
			Quantity int `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.lines[i].Quantity = req.Quantity
		b.writeJSON(w, http.StatusOK, map[string]interface{}{"item": b.lines[i]})
		return
	}
	b.fail(w, http.StatusNotFound, "cart item not found")
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// recordingPublisher keeps published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
