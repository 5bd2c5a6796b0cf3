package http

import (
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/pkg/errors"
)

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// GET /api/session
// A restored session is re-validated against the backend before it is reported.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())

	if ws.Credentials.Phase() == domain.PhaseRestored {
		ws.Lock()
		if ws.Credentials.Phase() == domain.PhaseRestored {
			if user, err := ws.Credentials.FetchCurrentUser(r.Context()); err != nil {
				loggerFromContext(r.Context()).WithField("error", err).Info("restored session failed validation")
			} else {
				ws.SignedIn(user.ID)
			}
		}
		ws.Unlock()
	}

	session, err := ws.Credentials.Current()
	if err != nil {
		handleError(w, r, err, "read session")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// POST /api/session/login
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if !decodeJSON(w, r, s.maxBodySize, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_credentials", "email and password are required")
		return
	}

	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	user, err := ws.Credentials.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		handleError(w, r, err, "login")
		return
	}
	s.afterLogin(r, user)

	session, _ := ws.Credentials.Current()
	respondJSON(w, http.StatusOK, session)
}

// POST /api/session/register
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequestDTO
	if !decodeJSON(w, r, s.maxBodySize, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "invalid_registration", "email, password and name are required")
		return
	}

	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	user, err := ws.Credentials.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		handleError(w, r, err, "register")
		return
	}
	s.afterLogin(r, user)

	session, _ := ws.Credentials.Current()
	respondJSON(w, http.StatusCreated, session)
}

// afterLogin loads the user's cart and announces the login. A cart failure does not fail the login.
func (s *Server) afterLogin(r *http.Request, user *domain.User) {
	ws := workspaceFromContext(r.Context())
	log := loggerFromContext(r.Context()).WithField("user_id", user.ID)

	ws.SignedIn(user.ID)

	if err := ws.Cart.FetchCart(r.Context()); err != nil {
		log.WithField("error", err).Warn("failed to load cart after login")
	}
	s.publish(r, events.Event{Type: events.TypeLoggedIn, UserID: user.ID})
	log.Info("user logged in")
}

// POST /api/session/logout
// Logout also drops the cached cart and checkout so the next user of this browser starts clean.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	var userID int64
	if session, err := ws.Credentials.Current(); err == nil && session.User != nil {
		userID = session.User.ID
	}

	ws.Credentials.Logout(r.Context())
	ws.SignedOut()

	s.publish(r, events.Event{Type: events.TypeLoggedOut, UserID: userID})

	session, _ := ws.Credentials.Current()
	respondJSON(w, http.StatusOK, session)
}

// POST /api/session/refresh
func (s *Server) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFromContext(r.Context())
	ws.Lock()
	defer ws.Unlock()

	if !ws.Credentials.IsAuthenticated() {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:    "login required",
			Code:     "unauthenticated",
			Redirect: "/login",
		})
		return
	}

	user, err := ws.Credentials.FetchCurrentUser(r.Context())
	if err != nil {
		handleError(w, r, err, "refresh session")
		return
	}
	ws.SignedIn(user.ID)

	session, _ := ws.Credentials.Current()
	respondJSON(w, http.StatusOK, session)
}
