package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/cinemate/internal/catalog"
	"github.com/benvon/cinemate/internal/config"
	"github.com/benvon/cinemate/internal/database"
	"github.com/benvon/cinemate/internal/export"
	"github.com/benvon/cinemate/internal/handlers"
	"github.com/benvon/cinemate/internal/logger"
	"github.com/benvon/cinemate/internal/middleware"
	"github.com/benvon/cinemate/internal/queue"
	"github.com/benvon/cinemate/internal/services/explain"
	"github.com/benvon/cinemate/internal/services/recommender"
	"github.com/benvon/cinemate/internal/session"
	"github.com/benvon/cinemate/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including LLM prompts")
	consoleFlag := flag.Bool("console", false, "Log human readable output instead of JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	newLogger := func() (*zap.Logger, error) { return logger.NewProductionLogger(telemetry.ServiceName, debugMode) }
	if *consoleFlag {
		newLogger = func() (*zap.Logger, error) { return logger.NewDevelopmentLogger(debugMode) }
	}
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("default_domain", cfg.DefaultDomain),
		zap.String("export_target", cfg.ExportTarget()),
		zap.Bool("llm_explanations", cfg.ExplanationsViaLLM()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(rootCtx, telemetry.Config{
				ServiceName: telemetry.ServiceName,
				Endpoint:    cfg.OTELEndpoint,
				Insecure:    cfg.OTELInsecure,
				SampleRatio: cfg.OTELSampleRatio,
			})
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	domains, err := catalog.Load(cfg.DomainsFile)
	if err != nil {
		zapLogger.Fatal("failed_to_load_domains", zap.Error(err), zap.String("file", cfg.DomainsFile))
	}
	if !domains.Has(cfg.DefaultDomain) {
		zapLogger.Fatal("default_domain_not_registered", zap.String("domain", cfg.DefaultDomain), zap.Strings("domains", domains.Names()))
	}
	zapLogger.Info("domains_loaded", zap.Strings("domains", domains.Names()))

	store, redisClient := newSessionStore(rootCtx, cfg, zapLogger)
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Warn("failed_to_close_session_store", zap.Error(err))
		}
	}()

	// Postgres only holds runtime configuration; without it the env values apply
	var (
		db        *database.DB
		corsSrc   middleware.CorsSource
		rateSrc   middleware.RateSource
		dbChecker handlers.CheckFunc
	)
	if cfg.DatabaseURL != "" {
		db, err = database.New(rootCtx, cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		if err := db.EnsureSchema(rootCtx); err != nil {
			zapLogger.Fatal("failed_to_ensure_schema", zap.Error(err))
		}
		corsSrc = database.NewCorsConfigRepository(db)
		rateSrc = database.NewRatelimitConfigRepository(db)
		dbChecker = db.HealthCheck
		zapLogger.Info("connected_to_database")
	}

	publisher := newPublisher(cfg, zapLogger)
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	sink, err := newSink(rootCtx, cfg)
	if err != nil {
		zapLogger.Fatal("failed_to_create_export_sink", zap.Error(err))
	}

	svc := recommender.New(recommender.Options{
		Domains:   domains,
		Sessions:  session.NewManager(store, zapLogger),
		Explainer: newExplainer(cfg, zapLogger, debugMode),
		Sink:      sink,
		Publisher: publisher,
		Logger:    zapLogger,
	})

	healthChecker := handlers.NewHealthChecker().
		WithCheck("session_store", store.Ping).
		WithCheck("database", dbChecker).
		WithCheck("queue", publisher.HealthCheck)

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, first registered is outermost
	if tracingEnabled {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsSrc, cfg.FrontendURL, zapLogger, cfg.RateLimitPoll)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(cfg.MaxRequestBytes))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Metrics)

	limiterStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	rateLimitReloader := middleware.NewRateLimitReloader(limiterStore, rateSrc, cfg.RateLimit, zapLogger, cfg.RateLimitPoll)

	handlers.Mount(r, svc, healthChecker, rateLimitReloader.Middleware(), zapLogger)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
		// Above the request timeout so the middleware answers first
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go corsReloader.Start(rootCtx)
	go rateLimitReloader.Start(rootCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// newSessionStore returns a Redis store when REDIS_URL is set, otherwise an
// in-memory store with its janitor running. The Redis client is shared with
// the rate limiter and is nil for the memory store.
func newSessionStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (session.Store, *redis.Client) {
	if cfg.RedisURL != "" {
		store, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		zapLogger.Info("connected_to_redis", zap.Duration("session_ttl", cfg.SessionTTL))
		return store, store.Client()
	}

	store := session.NewMemoryStore(cfg.SessionTTL, zapLogger)
	go func() {
		if err := store.StartJanitor(ctx, cfg.JanitorEvery); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("session_janitor_stopped_with_error", zap.Error(err))
		}
	}()
	zapLogger.Info("using_memory_session_store", zap.Duration("session_ttl", cfg.SessionTTL))
	return store, nil
}

// newPublisher connects to RabbitMQ with backoff. Events are best effort, so
// an unreachable broker downgrades to the no-op publisher instead of failing.
func newPublisher(cfg *config.Config, zapLogger *zap.Logger) queue.EventPublisher {
	if cfg.RabbitMQURL == "" {
		return queue.NoopPublisher{}
	}

	const maxRetries = 5
	const initialDelay = 2 * time.Second
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		bus, err := queue.NewRabbitMQBus(cfg.RabbitMQURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return bus
		}
		lastErr = err
		delay := min(initialDelay*time.Duration(1<<uint(attempt)), 30*time.Second)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	zapLogger.Error("rabbitmq_unavailable_events_disabled", zap.Error(lastErr))
	return queue.NoopPublisher{}
}

func newSink(ctx context.Context, cfg *config.Config) (export.Sink, error) {
	switch cfg.ExportTarget() {
	case config.ExportFile:
		return export.NewFileSink(cfg.ExportDir)
	case config.ExportS3:
		return export.NewS3Sink(ctx, cfg.ExportS3Bucket, cfg.AWSRegion, cfg.ExportS3Prefix)
	case config.ExportNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown export target %q", cfg.ExportTarget())
	}
}

func newExplainer(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) explain.Explainer {
	if !cfg.ExplanationsViaLLM() {
		return explain.NewTemplateExplainer()
	}
	return explain.NewOpenAIExplainer(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, explain.DefaultBreakerSettings(), zapLogger, debugMode)
}
