package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/workspace"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionCookie = "storefront_session"

type (
	ctxKeyLog       struct{}
	ctxKeyRequestID struct{}
	ctxKeyWorkspace struct{}
)

// RequestIDMiddleware keeps the caller's X-Request-ID or mints one, and forwards it to the backend.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, requestID)
		ctx = gateway.WithRequestID(ctx, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logHandler puts a request-scoped logger in the context and logs each request's outcome.
type logHandler struct {
	log  logrus.FieldLogger
	next http.Handler
}

func (lh *logHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	log := lh.log.WithFields(logrus.Fields{
		"http.req.path":   r.URL.Path,
		"http.req.method": r.Method,
		"http.req.id":     requestIDFromContext(ctx),
	})
	if ws, ok := ctx.Value(ctxKeyWorkspace{}).(*workspace.Workspace); ok {
		log = log.WithField("session", ws.ID)
	}
	log.Debug("request started")
	defer func() {
		log.WithFields(logrus.Fields{
			"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
			"http.resp.status":  ww.Status(),
			"http.resp.bytes":   ww.BytesWritten(),
		}).Debug("request complete")
	}()

	ctx = context.WithValue(ctx, ctxKeyLog{}, log)
	lh.next.ServeHTTP(ww, r.WithContext(ctx))
}

// ensureWorkspace resolves the session cookie to a workspace, issuing a new cookie when absent.
func (s *Server) ensureWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		c, err := r.Cookie(sessionCookie)
		if err == nil && c.Value != "" {
			if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
				sessionID = c.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(s.sessionTTL / time.Second),
				HttpOnly: true,
				Secure:   s.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ws := s.registry.Get(r.Context(), sessionID)
		ctx := context.WithValue(r.Context(), ctxKeyWorkspace{}, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth rejects requests from sessions that are not logged in.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFromContext(r.Context())
		session, err := ws.Credentials.Current()
		if err != nil {
			handleError(w, r, err, "read session")
			return
		}
		if !session.Authenticated {
			respondJSON(w, http.StatusUnauthorized, ErrorResponse{
				Error:    "login required",
				Code:     "unauthenticated",
				Redirect: "/login",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func workspaceFromContext(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(ctxKeyWorkspace{}).(*workspace.Workspace)
	return ws
}

func requestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ctxKeyRequestID{}).(string); ok {
		return requestID
	}
	return ""
}

func loggerFromContext(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(ctxKeyLog{}).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}
