// Package server assembles the HTTP router.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/certportal/internal/handlers"
	"github.com/vaughan-dsouza/certportal/internal/metrics"
	"github.com/vaughan-dsouza/certportal/internal/middleware"
	"github.com/vaughan-dsouza/certportal/internal/utils"
)

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Handler *handlers.Handler
	Tokens  middleware.TokenVerifier
	DB      Pinger
	Metrics *metrics.Metrics
	Docs    http.Handler
	Log     *zap.SugaredLogger

	// TrustProxy rewrites RemoteAddr from forwarding headers. Leave it off
	// unless a proxy in front sets them, or clients can pick their own
	// address for login throttling.
	TrustProxy bool

	// AllowedOrigins lists the browser origins allowed by CORS. Empty
	// allows none.
	AllowedOrigins []string
}

func NewRouter(o Options) http.Handler {
	log := o.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if o.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", health(o.DB))
	if o.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.Metrics.Handler())
	}
	if o.Docs != nil {
		r.Method(http.MethodGet, "/docs/openapi.json", o.Docs)
	}

	h := o.Handler
	authn := middleware.Authenticate(o.Tokens)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/certificates/lookup/{cpf}", h.Certificates.Lookup)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Get("/auth/me", h.Auth.Me)
			r.Get("/certificates", h.Certificates.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/certificates", h.Certificates.Create)
				r.Put("/certificates/{id}", h.Certificates.Update)
				r.Delete("/certificates/{id}", h.Certificates.Delete)

				r.Get("/users", h.Admins.List)
				r.Post("/users", h.Admins.Create)
				r.Patch("/users/{id}", h.Admins.Update)
				r.Delete("/users/{id}", h.Admins.Delete)
			})
		})
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
