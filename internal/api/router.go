package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ndquoc/library-notify/internal/auth"
	"github.com/ndquoc/library-notify/internal/engine"
	"github.com/ndquoc/library-notify/internal/metrics"
	"github.com/ndquoc/library-notify/internal/service"
	"github.com/ndquoc/library-notify/internal/store"
	"github.com/ndquoc/library-notify/internal/ws"
)

// Deps carries the constructed services and infrastructure the router
// wires into handlers. Everything is built once at process start and
// passed by reference; there is no global state.
type Deps struct {
	Books       *service.BookService
	Webhooks    *service.WebhookService
	Users       store.UserStore
	Deliveries  store.DeliveryLog
	Publisher   *engine.Publisher
	Tokens      *auth.Tokens
	Limiter     *engine.RateLimiter
	Idempotency *engine.IdempotencyCache
	Metrics     *metrics.Metrics
	Hub         *ws.Hub
	Logger      *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(corsMiddleware)

	authHandler := NewAuthHandler(d.Users, d.Tokens, d.Logger)
	bookHandler := NewBookHandler(d.Books, d.Idempotency, d.Logger)
	webhookHandler := NewWebhookHandler(d.Webhooks)
	deliveryHandler := NewDeliveryHandler(d.Deliveries)

	requireAuth := auth.RequireAuth(d.Tokens)

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit(d.Limiter, "register", 5, time.Minute)).Post("/register", authHandler.Register)
		r.With(rateLimit(d.Limiter, "login", 10, time.Minute)).Post("/login", authHandler.Login)
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", bookHandler.List)
		r.With(requireAuth).Post("/", bookHandler.Create)
		r.With(requireAuth).Delete("/{id}", bookHandler.Delete)

		r.Route("/webhooks", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", webhookHandler.Register)
			r.Get("/", webhookHandler.List)
		})
	})

	r.Get("/deliveries", deliveryHandler.List)
	r.Get("/health", HealthHandler(d.Publisher))
	r.Handle("/metrics", d.Metrics.Handler())
	r.Get("/ws", d.Hub.HandleWebSocket)

	return r
}

// corsMiddleware adds permissive CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
