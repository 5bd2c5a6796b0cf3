package http

import (
	"net/http"
)

// GET /api/orders
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())

	orders, err := ws.Gateway.GetOrders(r.Context())
	if err != nil {
		handleError(w, r, err, "list orders")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// GET /api/orders/{id}
func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ws := workspaceFromContext(r.Context())

	order, err := ws.Gateway.GetOrder(r.Context(), orderID)
	if err != nil {
		handleError(w, r, err, "get order")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"order": order})
}

// GET /api/payments/{order_id}
func (s *Server) GetPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id")
	if !ok {
		return
	}
	ws := workspaceFromContext(r.Context())

	payment, err := ws.Checkout.GetPayment(r.Context(), orderID)
	if err != nil {
		handleError(w, r, err, "get payment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"payment": payment})
}
