package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dispenser-api/internal/config"
	"github.com/jwalitptl/dispenser-api/internal/handler"
	compartmentHandler "github.com/jwalitptl/dispenser-api/internal/handler/compartment"
	medicineLogHandler "github.com/jwalitptl/dispenser-api/internal/handler/medicinelog"
	webhookHandler "github.com/jwalitptl/dispenser-api/internal/handler/webhook"
	"github.com/jwalitptl/dispenser-api/internal/middleware"
	"github.com/jwalitptl/dispenser-api/internal/repository/postgres"
	"github.com/jwalitptl/dispenser-api/internal/router"
	compartmentService "github.com/jwalitptl/dispenser-api/internal/service/compartment"
	medicineLogService "github.com/jwalitptl/dispenser-api/internal/service/medicinelog"
	notificationService "github.com/jwalitptl/dispenser-api/internal/service/notification"
	webhookService "github.com/jwalitptl/dispenser-api/internal/service/webhook"
	"github.com/jwalitptl/dispenser-api/pkg/logger"
	"github.com/jwalitptl/dispenser-api/pkg/messaging"
	redisbroker "github.com/jwalitptl/dispenser-api/pkg/messaging/redis"
	"github.com/jwalitptl/dispenser-api/pkg/metrics"
	"github.com/jwalitptl/dispenser-api/pkg/validator"
	"github.com/jwalitptl/dispenser-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := validator.RegisterCustomRules(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validation rules")
	}

	// Repositories
	compartmentRepo := postgres.NewCompartmentRepository(db)
	medicineLogRepo := postgres.NewMedicineLogRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	notifier := notificationService.NewService(notificationService.Config{
		Enabled:  cfg.SMTP.Enabled,
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	}, appLogger)
	compartmentSvc := compartmentService.NewService(compartmentRepo, appLogger)
	medicineLogSvc := medicineLogService.NewService(medicineLogRepo)
	webhookSvc := webhookService.NewService(compartmentRepo, notifier, appLogger)

	// Handlers
	h := handler.NewHandler(db)
	compartmentH := compartmentHandler.NewHandler(compartmentSvc)
	medicineLogH := medicineLogHandler.NewHandler(medicineLogSvc)
	webhookH := webhookHandler.NewHandler(webhookSvc)

	r := router.NewRouter(compartmentH, medicineLogH, webhookH, h, router.RouterConfig{
		RateLimit:     cfg.RateLimit.RequestsPerSecond,
		RateBurst:     cfg.RateLimit.Burst,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "dispenser_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// The broker is optional: without Redis the outbox simply accumulates
	// until a broker comes back.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{URL: cfg.Redis.URL}, appLogger.Zerolog())
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, outbox publishing disabled")
		}
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if broker != nil {
		defer broker.Close()
		outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		}, appLogger, metrics.NewMetrics("dispenser", "worker"))
		go outboxProcessor.Start(workerCtx)
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server exited")
}
