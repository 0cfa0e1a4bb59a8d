package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout is used when no positive timeout is configured
const DefaultRequestTimeout = 30 * time.Second

// Timeout bounds handler run time. The handler's context is cancelled at the
// deadline and the client receives 503.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"success":false,"error":"Request Timeout","message":"The request took too long"}`)
	}
}
