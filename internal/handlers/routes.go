package handlers

import (
	"net/http"

	"github.com/benvon/cinemate/internal/services/recommender"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Mount registers every route on r. rateLimit guards the session routes and may be nil.
func Mount(r *mux.Router, svc *recommender.Service, health *HealthChecker, rateLimit mux.MiddlewareFunc, logger *zap.Logger) {
	if health == nil {
		health = NewHealthChecker()
	}
	// Public routes, never rate limited
	health.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	NewOpenAPIHandler(nil).RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	NewDomainHandler(svc).RegisterRoutes(api.PathPrefix("/domains").Subrouter())

	sessions := api.PathPrefix("/sessions").Subrouter()
	if rateLimit != nil {
		sessions.Use(rateLimit)
	}
	NewSessionHandler(svc, logger).RegisterRoutes(sessions)

	// Preflight requests reach CORS even when no route allows OPTIONS
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
