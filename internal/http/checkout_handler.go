package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/store"
)

type CheckoutResponseDTO struct {
	Order        *domain.Order   `json:"order,omitempty"`
	Payment      *domain.Payment `json:"payment,omitempty"`
	ClientSecret string          `json:"client_secret,omitempty"`
	Loading      bool            `json:"loading"`
}

func checkoutResponse(snapshot store.CheckoutSnapshot) CheckoutResponseDTO {
	return CheckoutResponseDTO{
		Order:        snapshot.Order,
		Payment:      snapshot.Payment,
		ClientSecret: snapshot.ClientSecret,
		Loading:      snapshot.Loading,
	}
}

// GET /api/checkout
func (s *Server) GetCheckout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	respondJSON(w, http.StatusOK, checkoutResponse(ws.Checkout.Snapshot()))
}

// POST /api/checkout
// Creates the order and payment intent, or resumes the cached order. The backend empties the
// cart when it creates an order, so an empty cart only blocks a checkout with no order yet.
func (s *Server) StartCheckout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	log := loggerFromContext(r.Context())
	resuming := ws.Checkout.HasCurrentOrder()

	if !resuming {
		if err := ws.Cart.FetchCart(r.Context()); err != nil {
			handleError(w, r, err, "fetch cart before checkout")
			return
		}
		if ws.Cart.IsEmpty() {
			respondJSON(w, http.StatusConflict, ErrorResponse{
				Error:    "cart is empty",
				Code:     "cart_empty",
				Redirect: "/cart",
			})
			return
		}
	}

	// A failed payment intent still returns the order it created; that order is announced
	// here because the retry will resume it.
	order, _, err := ws.Checkout.Initialize(r.Context())
	if order != nil && !resuming {
		s.publish(r, events.Event{Type: events.TypeOrderCreated, OrderID: order.ID, Amount: order.TotalAmount})
		if err := ws.Cart.FetchCart(r.Context()); err != nil {
			log.WithField("error", err).Warn("failed to refresh cart after order creation")
		}
	}
	if err != nil {
		handleError(w, r, err, "initialize checkout")
		return
	}

	log.WithField("order_id", order.ID).WithField("resumed", resuming).Info("checkout initialized")
	respondJSON(w, http.StatusOK, checkoutResponse(ws.Checkout.Snapshot()))
}

// POST /api/checkout/complete
// Confirms with the backend that the payment went through, then forgets the checkout.
func (s *Server) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	order, err := ws.Checkout.CurrentOrder()
	if err != nil {
		handleError(w, r, err, "complete checkout")
		return
	}

	payment, err := ws.Checkout.GetPayment(r.Context(), order.ID)
	if err != nil {
		handleError(w, r, err, "confirm payment")
		return
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "payment not completed",
			Code:    "payment_not_completed",
			Details: string(payment.Status),
		})
		return
	}

	ws.Checkout.ResetCheckout()
	if err := ws.Cart.FetchCart(r.Context()); err != nil {
		loggerFromContext(r.Context()).WithField("error", err).Warn("failed to refresh cart after checkout")
	}

	s.publish(r, events.Event{Type: events.TypeCheckoutCompleted, OrderID: order.ID, Amount: payment.Amount})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order":   order,
		"payment": payment,
	})
}

// POST /api/checkout/cancel
// Leaving checkout keeps the order so the next entry resumes it instead of creating another.
func (s *Server) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"redirect": "/cart",
		"checkout": checkoutResponse(ws.Checkout.Snapshot()),
	})
}
