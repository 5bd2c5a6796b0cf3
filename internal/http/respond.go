package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithField("error", err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) bool {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleError maps store and gateway errors onto HTTP responses.
func handleError(w http.ResponseWriter, r *http.Request, err error, op string) {
	log := loggerFromContext(r.Context())
	wrapped := errors.Wrap(err, op)

	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, store.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, store.ErrNotRehydrated):
		respondError(w, http.StatusServiceUnavailable, "session_not_ready", err.Error())
	case errors.Is(err, store.ErrNoCurrentOrder):
		respondError(w, http.StatusConflict, "no_current_order", err.Error())
	case errors.Is(err, gateway.ErrUnauthorized):
		log.WithField("error", wrapped).Info("backend rejected session")
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:    "session expired, please log in again",
			Code:     "unauthenticated",
			Redirect: "/login",
		})
	case errors.As(err, &apiErr) && apiErr.IsValidation():
		code := apiErr.Code
		if code == "" {
			code = "backend_rejected"
		}
		respondError(w, apiErr.StatusCode, code, apiErr.Message)
	case errors.As(err, &apiErr):
		log.WithField("error", wrapped).Error("backend error")
		respondError(w, http.StatusBadGateway, "backend_error", apiErr.Message)
	case errors.Is(err, store.ErrEmptyResponse):
		log.WithField("error", wrapped).Error("backend returned no data")
		respondError(w, http.StatusBadGateway, "backend_error", "backend returned no data")
	case errors.Is(err, context.DeadlineExceeded):
		log.WithField("error", wrapped).Warn("request timed out")
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, gateway.ErrTransport):
		log.WithField("error", wrapped).Error("backend unavailable")
		respondError(w, http.StatusBadGateway, "backend_unavailable", "backend unavailable")
	default:
		log.WithField("error", wrapped).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
