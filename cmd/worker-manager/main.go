// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lender-match-engine/internal/audit"
	"lender-match-engine/internal/catalog"
	"lender-match-engine/internal/common/aws"
	"lender-match-engine/internal/common/camunda"
	"lender-match-engine/internal/common/config"
	"lender-match-engine/internal/common/database"
	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/common/observability"
	"lender-match-engine/internal/match"
	"lender-match-engine/internal/notify"

	bdr "lender-match-engine/internal/workers/match/build-decision-record"
	ehm "lender-match-engine/internal/workers/match/evaluate-hard-money-path"
	rlm "lender-match-engine/internal/workers/match/run-lender-match"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// engineConfig maps the YAML engine section onto the match tunables,
// falling back to the shipped defaults for zero values.
func engineConfig(cfg config.EngineConfig) match.Config {
	engine := match.DefaultConfig()
	if cfg.StaleConfirmationDays > 0 {
		engine.StaleConfirmationDays = cfg.StaleConfirmationDays
	}
	if cfg.LeverageWarningBand > 0 {
		engine.LeverageWarningBand = cfg.LeverageWarningBand
	}
	if cfg.LoanSizeWarningRatio > 0 {
		engine.LoanSizeWarningRatio = cfg.LoanSizeWarningRatio
	}
	if cfg.MaxResultsPerSection > 0 {
		engine.MaxResultsPerSection = cfg.MaxResultsPerSection
	}
	return engine
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Shared Services ---

	catalogRepo := catalog.NewRepository(
		pg.DB, redis.Client,
		&catalog.Config{
			CacheTTL:       time.Duration(cfg.Catalog.CacheTTL) * time.Second,
			ValidateOnLoad: cfg.Catalog.ValidateOnLoad,
		},
		log,
	)

	var auditSink bdr.AuditSink
	if cfg.Audit.Enabled {
		auditSink = audit.NewIndexer(
			esClient.Client,
			&audit.Config{
				IndexPrefix: cfg.Audit.IndexPrefix,
				Timeout:     time.Duration(cfg.Audit.Timeout) * time.Millisecond,
			},
			log,
		)
	}

	// Escalations are optional: a scenario desk without SES/SNS access
	// still gets complete decision records, just no push alerts.
	var escalator bdr.Escalator
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		var snsClient notify.SMSPublisher
		if cfg.Notifications.SMS.Enabled {
			client, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("sns client init failed", zap.Error(err))
			}
			snsClient = client
		}
		escalator = notify.NewService(
			sesClient, snsClient,
			&notify.Config{
				Enabled:     true,
				FromEmail:   cfg.Notifications.Email.FromEmail,
				DeskEmail:   cfg.Notifications.Email.DeskEmail,
				SMSTopicARN: cfg.Notifications.SMS.TopicARN,
			},
			log,
		)
	}

	zapLog.Info("Shared services initialized")

	// --- Register Match Pipeline Workers ---

	if cfg.Workers[rlm.TaskType].Enabled {
		handler := rlm.NewHandler(
			&rlm.Config{
				Timeout: time.Duration(cfg.Workers[rlm.TaskType].Timeout) * time.Millisecond,
				Engine:  engineConfig(cfg.Engine),
			},
			catalogRepo, log,
		)
		startWorker(zeebeClient, rlm.TaskType, cfg.Workers[rlm.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ehm.TaskType].Enabled {
		handler := ehm.NewHandler(
			&ehm.Config{
				Timeout: time.Duration(cfg.Workers[ehm.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, ehm.TaskType, cfg.Workers[ehm.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[bdr.TaskType].Enabled {
		handler := bdr.NewHandler(
			&bdr.Config{
				Timeout: time.Duration(cfg.Workers[bdr.TaskType].Timeout) * time.Millisecond,
			},
			auditSink, catalogRepo, escalator, log,
		)
		startWorker(zeebeClient, bdr.TaskType, cfg.Workers[bdr.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All match pipeline workers registered")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "healthy"
			code := http.StatusOK
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = shutdownCtx

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
