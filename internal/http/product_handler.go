package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const maxPerPage = 100

// GET /api/products?page=&per_page=&category=
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.ProductQuery{Category: q.Get("category")}

	var ok bool
	if query.Page, ok = queryInt(w, q.Get("page"), "page"); !ok {
		return
	}
	if query.PerPage, ok = queryInt(w, q.Get("per_page"), "per_page"); !ok {
		return
	}
	if query.PerPage > maxPerPage {
		query.PerPage = maxPerPage
	}

	ws := workspaceFromContext(r.Context())
	page, err := ws.Gateway.GetProducts(r.Context(), query)
	if err != nil {
		handleError(w, r, err, "list products")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// GET /api/products/search?q=
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondError(w, http.StatusBadRequest, "invalid_query", "q is required")
		return
	}

	ws := workspaceFromContext(r.Context())
	products, err := ws.Gateway.SearchProducts(r.Context(), term)
	if err != nil {
		handleError(w, r, err, "search products")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// GET /api/products/{id}
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ws := workspaceFromContext(r.Context())
	product, err := ws.Gateway.GetProduct(r.Context(), productID)
	if err != nil {
		handleError(w, r, err, "get product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
