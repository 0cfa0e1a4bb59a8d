package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/cinemate/internal/config"
	"github.com/benvon/cinemate/internal/logger"
	"github.com/benvon/cinemate/internal/queue"
	"github.com/benvon/cinemate/internal/telemetry"
	"github.com/benvon/cinemate/internal/workers"
	"go.uber.org/zap"
)

const dlqGCInterval = time.Hour

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(telemetry.WorkerServiceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_not_configured")
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitPrefetch),
		zap.String("stats_schedule", cfg.StatsSchedule),
	)

	bus, err := queue.NewRabbitMQBus(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := bus.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq")

	stats := workers.NewStatsAggregator(zapLogger)
	scheduler, err := workers.NewScheduler(cfg.StatsSchedule, stats, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_stats_scheduler", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := bus.Consume(ctx, cfg.RabbitPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	scheduler.Start()

	dlqGC := queue.NewGarbageCollector(bus, dlqGCInterval, cfg.DLQRetention, zapLogger)
	go func() {
		if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()
	zapLogger.Info("started_dlq_garbage_collector",
		zap.Duration("interval", dlqGCInterval),
		zap.Duration("retention", cfg.DLQRetention),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		workers.Run(ctx, stats, msgChan, errChan, zapLogger)
	}()

	select {
	case <-sigChan:
		zapLogger.Info("shutdown_signal_received")
	case <-done:
		zapLogger.Warn("consumer_stopped")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		zapLogger.Warn("consumer_shutdown_timed_out")
	}
	scheduler.Stop()
	// Report what was counted since the last scheduled flush
	stats.Flush()

	zapLogger.Info("worker_stopped")
}
