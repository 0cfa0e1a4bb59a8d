package middleware

import (
	"net/http"

	logpkg "github.com/benvon/cinemate/internal/logger"
	"github.com/benvon/cinemate/internal/request"
	"go.uber.org/zap"
)

// Audit logs rejected and throttled requests for monitoring
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusRecorder(w)
			next.ServeHTTP(wrapped, r)

			fields := func() []zap.Field {
				return []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
					zap.String("request_id", request.RequestID(r)),
				}
			}

			switch wrapped.statusCode {
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", fields()...)
			case http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
				logger.Warn("rejected_request", append(fields(), zap.Int("status_code", wrapped.statusCode))...)
			}
		})
	}
}
