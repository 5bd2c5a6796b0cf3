// Package http is the storefront's JSON surface: one workspace per session cookie, one handler
// per resource.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Options struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	SessionTTL         time.Duration
	CookieSecure       bool
}

type Server struct {
	registry     *workspace.Registry
	publisher    events.Publisher
	log          logrus.FieldLogger
	timeout      time.Duration
	maxBodySize  int64
	sessionTTL   time.Duration
	cookieSecure bool
}

func NewServer(registry *workspace.Registry, publisher events.Publisher, opts Options, log logrus.FieldLogger) *Server {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{
		registry:     registry,
		publisher:    publisher,
		log:          log,
		timeout:      opts.RequestTimeout,
		maxBodySize:  opts.MaxRequestBodySize,
		sessionTTL:   opts.SessionTTL,
		cookieSecure: opts.CookieSecure,
	}
}

// Router builds the chi router with every storefront route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.ensureWorkspace)
		r.Use(func(next http.Handler) http.Handler { return &logHandler{log: s.log, next: next} })

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Post("/login", s.Login)
			r.Post("/register", s.Register)
			r.Post("/logout", s.Logout)
			r.Post("/refresh", s.RefreshSession)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.ListProducts)
			r.Get("/search", s.SearchProducts)
			r.Get("/{id}", s.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.GetCart)
				r.Delete("/", s.ClearCart)
				r.Post("/items", s.AddItem)
				r.Put("/items/{id}", s.UpdateQuantity)
				r.Delete("/items/{id}", s.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", s.GetCheckout)
				r.Post("/", s.StartCheckout)
				r.Post("/complete", s.CompleteCheckout)
				r.Post("/cancel", s.CancelCheckout)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.ListOrders)
				r.Get("/{id}", s.GetOrder)
			})

			r.Get("/payments/{order_id}", s.GetPayment)
		})
	})

	return r
}

// publish sends an event after a successful operation. Failures are logged, never surfaced.
func (s *Server) publish(r *http.Request, event events.Event) {
	if ws := workspaceFromContext(r.Context()); ws != nil {
		event.Workspace = ws.ID
	}
	event.OccurredAt = time.Now().UTC()
	if err := s.publisher.Publish(context.WithoutCancel(r.Context()), event); err != nil {
		loggerFromContext(r.Context()).WithField("error", err).
			WithField("event_type", event.Type).
			Warn("failed to publish event")
	}
}
