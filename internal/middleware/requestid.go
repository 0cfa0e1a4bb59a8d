package middleware

import (
	"net/http"

	"github.com/benvon/cinemate/internal/logger"
	"github.com/benvon/cinemate/internal/request"
	"github.com/google/uuid"
)

// RequestID propagates an incoming X-Request-ID or assigns a new one
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logger.SanitizeID(r.Header.Get(request.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(request.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(request.WithRequestID(r.Context(), id)))
	})
}
