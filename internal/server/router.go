package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vanshika/skillgraph/backend/internal/metrics"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health         HealthService
	API            *APIHandlers
	Auth           Authenticator
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	// APIPrefix is where the JSON API is mounted, "/api" when empty.
	APIPrefix string
}

// NewRouter wires the HTTP routes exposed by the backend API.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(loggingMiddleware(logger))
	router.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		router.Use(metricsMiddleware(deps.Metrics))
	}
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/healthz", healthHandler(logger, deps.Health))
	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	if deps.API != nil {
		router.Route(apiPrefix(deps.APIPrefix), func(r chi.Router) {
			api := deps.API
			requireAuth := authMiddleware(deps.Auth)

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", api.register)
				r.Post("/login", api.login)
				r.With(requireAuth).Get("/me", api.me)
			})

			r.Get("/nodes", api.allNodes)
			r.Get("/nodes/{label}", api.nodesByLabel)

			r.Route("/services", func(r chi.Router) {
				r.Get("/", api.listServices)
				r.With(requireAuth).Post("/", api.createService)
				r.Get("/search/{name}", api.searchServices)
			})

			r.Route("/relationships", func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/offers", api.offer)
				r.Post("/uses", api.use)
			})
		})
	}

	return router
}

func healthHandler(logger *slog.Logger, health HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{
			"status": "ok",
		}

		if health != nil {
			if err := health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
			}
		}

		respondJSON(w, status, payload)
	}
}

func apiPrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/api"
	}
	return "/" + prefix
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}
