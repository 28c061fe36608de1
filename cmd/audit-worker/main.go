package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/oakpoint-health/clinic-core/cmd/mainconfig"
	"github.com/oakpoint-health/clinic-core/internal/app/bootstrap"
	"github.com/oakpoint-health/clinic-core/internal/authorizations"
	appconfig "github.com/oakpoint-health/clinic-core/internal/config"
	"github.com/oakpoint-health/clinic-core/internal/events"
	"github.com/oakpoint-health/clinic-core/internal/medications"
	"github.com/oakpoint-health/clinic-core/internal/notify"
	"github.com/oakpoint-health/clinic-core/internal/observability/metrics"
	"github.com/oakpoint-health/clinic-core/internal/rules"
	auditworker "github.com/oakpoint-health/clinic-core/internal/worker/audit"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

func main() {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting audit worker", "env", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	stores := bootstrap.BuildStores(pool)

	engineMetrics := metrics.NewEngineMetrics(nil)
	catalog := medications.NewCatalog(medications.DefaultMedications())
	matrix := medications.NewMatrix(medications.DefaultInteractions())
	evaluator := rules.NewEvaluator(rules.DefaultCatalog(catalog, matrix), logger, engineMetrics)
	tracker := authorizations.NewTracker(logger, engineMetrics)

	opts := []auditworker.WorkerOption{
		auditworker.WithWorkerCount(cfg.WorkerCount),
		auditworker.WithNotifier(notify.NewLogNotifier(logger)),
	}
	if stores.Outbox != nil {
		opts = append(opts, auditworker.WithOutbox(stores.Outbox))
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		opts = append(opts, auditworker.WithDedup(bootstrap.BuildDedupStore(redisClient, cfg)))
	}

	var worker *auditworker.Worker
	if cfg.UseMemoryQueue {
		logger.Warn("using in-memory audit queue")
		worker = auditworker.NewWorker(
			auditworker.NewMemoryQueue(64),
			stores.Authorizations, tracker, stores.Patients, evaluator, stores.Alerts,
			logger, opts...,
		)
	} else {
		awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		worker = auditworker.NewWorker(
			auditworker.NewSQSQueue(sqs.NewFromConfig(awsConfig), cfg.AuditQueueURL),
			stores.Authorizations, tracker, stores.Patients, evaluator, stores.Alerts,
			logger, opts...,
		)
	}
	worker.Start(ctx)

	// Drain the outbox alongside consumption so downstream events flow even
	// when the API runs without a database connection.
	if stores.Outbox != nil && cfg.EventTopicQueueURL != "" && !cfg.UseMemoryQueue {
		awsConfig, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		publisher := events.NewSQSPublisher(sqs.NewFromConfig(awsConfig), cfg.EventTopicQueueURL, logger)
		deliverer := events.NewDeliverer(stores.Outbox, publisher, logger).WithInterval(cfg.AuditPollInterval)
		go deliverer.Start(ctx)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down audit worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("audit worker stopped")
	case <-doneCtx.Done():
		logger.Error("audit worker shutdown timed out", "error", doneCtx.Err())
	}
}
