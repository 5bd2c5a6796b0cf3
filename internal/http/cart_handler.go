package http

import (
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items   []domain.CartLine  `json:"items"`
	Summary domain.CartSummary `json:"summary"`
	Loading bool               `json:"loading"`
}

func (s *Server) cartResponse(r *http.Request) CartResponseDTO {
	ws := workspaceFromContext(r.Context())
	return CartResponseDTO{
		Items:   ws.Cart.Lines(),
		Summary: ws.Cart.Summary(),
		Loading: ws.Cart.IsLoading(),
	}
}

// GET /api/cart
func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	if err := ws.Cart.FetchCart(r.Context()); err != nil {
		handleError(w, r, err, "fetch cart")
		return
	}
	respondJSON(w, http.StatusOK, s.cartResponse(r))
}

// POST /api/cart/items
func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, s.maxBodySize, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	if err := ws.Cart.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		handleError(w, r, err, "add cart item")
		return
	}
	respondJSON(w, http.StatusCreated, s.cartResponse(r))
}

// PUT /api/cart/items/{id}
// A quantity of zero removes the line.
func (s *Server) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, s.maxBodySize, &req) {
		return
	}

	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	var err error
	if req.Quantity == 0 {
		err = ws.Cart.RemoveItem(r.Context(), lineID)
	} else {
		err = ws.Cart.UpdateItemQuantity(r.Context(), lineID, req.Quantity)
	}
	if err != nil {
		handleError(w, r, err, "update cart item")
		return
	}
	respondJSON(w, http.StatusOK, s.cartResponse(r))
}

// DELETE /api/cart/items/{id}
func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	if err := ws.Cart.RemoveItem(r.Context(), lineID); err != nil {
		handleError(w, r, err, "remove cart item")
		return
	}
	respondJSON(w, http.StatusOK, s.cartResponse(r))
}

// DELETE /api/cart
func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	if err := ws.Cart.ClearCart(r.Context()); err != nil {
		handleError(w, r, err, "clear cart")
		return
	}
	respondJSON(w, http.StatusOK, s.cartResponse(r))
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+param, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}
