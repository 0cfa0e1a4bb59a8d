package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/benvon/cinemate/internal/database"
	"github.com/benvon/cinemate/internal/request"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const defaultCORSMaxAge = 86400

// CorsSource supplies the stored CORS configuration; nil config means none stored
type CorsSource interface {
	Get(ctx context.Context) (*database.CorsConfig, error)
}

// CORSReloader wraps rs/cors and periodically reloads its options from a CorsSource.
// Without a source the fallback origins are used for the lifetime of the process.
type CORSReloader struct {
	next     http.Handler
	source   CorsSource
	fallback string
	log      *zap.Logger
	interval time.Duration
	mu       sync.RWMutex
	current  http.Handler
}

// NewCORSReloader creates the CORS middleware. source may be nil.
func NewCORSReloader(source CorsSource, fallbackOrigins string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	return &CORSReloader{
		source:   source,
		fallback: strings.TrimSpace(fallbackOrigins),
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware returns a middleware that wraps next with CORS and hot-reload.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.load(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *CORSReloader) Start(ctx context.Context) {
	if r.interval <= 0 || r.source == nil {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

func (r *CORSReloader) options(ctx context.Context) cors.Options {
	origins := database.AllowedOriginsSlice(r.fallback)
	allowCreds := false
	maxAge := defaultCORSMaxAge

	if r.source != nil {
		cfg, err := r.source.Get(ctx)
		switch {
		case err != nil:
			r.log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
		case cfg != nil:
			origins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
			allowCreds = cfg.AllowCredentials
			maxAge = cfg.MaxAge
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", request.RequestIDHeader},
		ExposedHeaders:   []string{request.RequestIDHeader, "Content-Disposition"},
	}
}

func (r *CORSReloader) load(ctx context.Context) {
	if r.next == nil {
		return
	}
	h := cors.New(r.options(ctx)).Handler(r.next)
	r.mu.Lock()
	r.current = h
	r.mu.Unlock()
}

// ServeHTTP implements http.Handler.
func (r *CORSReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	h := r.current
	r.mu.RUnlock()
	if h != nil {
		h.ServeHTTP(w, req)
		return
	}
	if r.next != nil {
		r.next.ServeHTTP(w, req)
	}
}
