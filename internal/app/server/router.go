package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"careroster/internal/platform/config"
	"careroster/internal/platform/metrics"
	"careroster/internal/transport/http/api"
	clientshandler "careroster/internal/transport/http/handlers/clients"
	documentshandler "careroster/internal/transport/http/handlers/documents"
	signuphandler "careroster/internal/transport/http/handlers/signup"
	staffhandler "careroster/internal/transport/http/handlers/staff"
	teamshandler "careroster/internal/transport/http/handlers/teams"
	usershandler "careroster/internal/transport/http/handlers/users"
	"careroster/internal/transport/http/middleware"
)

type Handlers struct {
	Users     *usershandler.Handler
	Staff     *staffhandler.Handler
	Clients   *clientshandler.Handler
	Teams     *teamshandler.Handler
	Documents *documentshandler.Handler
	SignUp    *signuphandler.Handler
}

// ReadyCheck reports whether a backing service answers.
type ReadyCheck func(ctx context.Context) error

func NewRouter(cfg config.Config, log *zap.Logger, collector *metrics.Collector, h Handlers, checks map[string]ReadyCheck) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.Logger(log, collector))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.Auth(cfg.AuthJWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				http.Error(w, name+" not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metricsz", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.WithLogger(log)))

		r.With(middleware.BodyLimit(cfg.MaxBodyBytes)).Group(h.SignUp.RegisterRoutes)

		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
				h.Users.RegisterRoutes(r)
				h.Staff.RegisterRoutes(r)
				h.Clients.RegisterRoutes(r)
				h.Teams.RegisterRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.BodyLimit(cfg.MaxUploadBytes))
				h.Documents.RegisterRoutes(r)
			})
		})
	})

	return router
}
