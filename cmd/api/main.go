package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakpoint-health/clinic-core/cmd/mainconfig"
	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/internal/api/router"
	"github.com/oakpoint-health/clinic-core/internal/app/bootstrap"
	"github.com/oakpoint-health/clinic-core/internal/authorizations"
	appconfig "github.com/oakpoint-health/clinic-core/internal/config"
	"github.com/oakpoint-health/clinic-core/internal/events"
	"github.com/oakpoint-health/clinic-core/internal/medications"
	"github.com/oakpoint-health/clinic-core/internal/observability/metrics"
	"github.com/oakpoint-health/clinic-core/internal/rules"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-core API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	engineMetrics := metrics.NewEngineMetrics(registry)

	pool, err := bootstrap.BuildPgxPool(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	} else {
		logger.Warn("no DATABASE_URL configured, using in-memory stores")
	}
	sqlDB, err := bootstrap.BuildSQLDB(cfg)
	if err != nil {
		logger.Error("failed to open sql handle", "error", err)
		os.Exit(1)
	}
	if sqlDB != nil {
		defer func() { _ = sqlDB.Close() }()
	}

	stores := bootstrap.BuildStores(pool)

	catalog := medications.NewCatalog(medications.DefaultMedications())
	matrix := medications.NewMatrix(medications.DefaultInteractions())
	evaluator := rules.NewEvaluator(rules.DefaultCatalog(catalog, matrix), logger, engineMetrics)
	tracker := authorizations.NewTracker(logger, engineMetrics)

	evaluateHandler := rules.NewHandler(evaluator, stores.Patients, stores.Alerts, nil, logger)
	if stores.Outbox != nil {
		evaluateHandler = rules.NewHandler(evaluator, stores.Patients, stores.Alerts, stores.Outbox, logger)
	}

	routerCfg := &router.Config{
		Logger:                logger,
		EvaluateHandler:       evaluateHandler,
		AlertsHandler:         alerts.NewHandler(stores.Alerts, alerts.NewManager(), alerts.NewAuditStore(sqlDB), logger),
		MedicationsHandler:    medications.NewHandler(catalog, matrix, engineMetrics, logger),
		AuthorizationsHandler: authorizations.NewHandler(stores.Authorizations, tracker, logger),
		MetricsHandler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:       cfg.AdminJWTSecret,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		CORSAllowedHeaders:    cfg.CORSAllowedHeaders,
		RateLimitPerSecond:    cfg.RateLimitPerSecond,
		RateLimitBurst:        cfg.RateLimitBurst,
		RateLimitIdleEviction: cfg.RateLimitIdleEviction,
	}
	r := router.New(routerCfg)

	// The API process also drains the outbox so raised alerts reach the
	// event queue without a separate deployment.
	if stores.Outbox != nil && cfg.EventTopicQueueURL != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		publisher := events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.EventTopicQueueURL, logger)
		deliverer := events.NewDeliverer(stores.Outbox, publisher, logger)
		go deliverer.Start(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
