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

	"taxdoc-workers/internal/common/camunda"
	"taxdoc-workers/internal/common/config"
	"taxdoc-workers/internal/common/database"
	"taxdoc-workers/internal/common/logger"
	"taxdoc-workers/internal/common/observability"
	"taxdoc-workers/internal/common/providers"
	"taxdoc-workers/internal/common/retry"
	"taxdoc-workers/pkg/registry"

	// Document Workers (4)
	cd "taxdoc-workers/internal/workers/document/classify-document"
	cdr "taxdoc-workers/internal/workers/document/create-document-record"
	edd "taxdoc-workers/internal/workers/document/extract-document-data"
	vn "taxdoc-workers/internal/workers/document/validate-names"

	// Data Access Workers (2)
	qd "taxdoc-workers/internal/workers/data-access/query-documents"
	sd "taxdoc-workers/internal/workers/data-access/search-documents"

	// Communication Workers (1)
	srn "taxdoc-workers/internal/workers/communication/send-review-notification"
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

	tracing, err := observability.NewTracing("worker-manager", os.Getenv("JAEGER_ENDPOINT"))
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx := context.Background()
	providerPolicy := retry.NewPolicy(cfg.Retry.MaxAttempts, cfg.Retry.InitialDelay, cfg.Retry.MaxDelay)

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
			RetryPolicy:            providerPolicy,
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
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Extraction Provider Clients ---
	docAIClient := providers.NewDocumentAIClient(cfg.Providers.DocumentAI, providerPolicy)
	genAIClient := providers.NewGenAIClient(cfg.Providers.GenAI, providerPolicy)
	zapLog.Info("Extraction provider clients initialized")

	// --- Load Activity Registry ---
	activityRegistry, err = registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("activity registry load failed, schema validation disabled", zap.Error(err))
	} else {
		zapLog.Info("Activity registry loaded", zap.Int("activities", len(activityRegistry.Activities)))
	}

	// --- START: Register ALL 7 Workers ---

	// --- 1. Document Workers (4) ---
	if cfg.Workers[cdr.TaskType].Enabled {
		handler := cdr.NewHandler(
			&cdr.Config{
				Timeout:   time.Duration(cfg.Workers[cdr.TaskType].Timeout) * time.Millisecond,
				IndexName: cfg.Database.Elasticsearch.DocumentIndex,
			},
			pg.DB, esClient.Client, log,
		)
		startWorker(zeebeClient, cdr.TaskType, cfg.Workers[cdr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[edd.TaskType].Enabled {
		handler := edd.NewHandler(
			&edd.Config{
				CacheTTL: 30 * time.Minute,
				Timeout:  time.Duration(cfg.Workers[edd.TaskType].Timeout) * time.Millisecond,
			},
			docAIClient, genAIClient, pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, edd.TaskType, cfg.Workers[edd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[cd.TaskType].Enabled {
		handler := cd.NewHandler(
			&cd.Config{
				Timeout:       time.Duration(cfg.Workers[cd.TaskType].Timeout) * time.Millisecond,
				MinConfidence: 0.6,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, cd.TaskType, cfg.Workers[cd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[vn.TaskType].Enabled {
		handler := vn.NewHandler(
			&vn.Config{
				CacheTTL: 10 * time.Minute,
				Timeout:  time.Duration(cfg.Workers[vn.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, redis.Client, log,
		)
		startWorker(zeebeClient, vn.TaskType, cfg.Workers[vn.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Data Access Workers (2) ---
	if cfg.Workers[qd.TaskType].Enabled {
		handler := qd.NewHandler(
			&qd.Config{
				Timeout: time.Duration(cfg.Workers[qd.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, qd.TaskType, cfg.Workers[qd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sd.TaskType].Enabled {
		handler := sd.NewHandler(
			&sd.Config{
				Timeout:   time.Duration(cfg.Workers[sd.TaskType].Timeout) * time.Millisecond,
				IndexName: cfg.Database.Elasticsearch.DocumentIndex,
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, sd.TaskType, cfg.Workers[sd.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Communication Workers (1) ---
	if cfg.Workers[srn.TaskType].Enabled {
		handler, err := srn.NewHandler(
			&srn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[srn.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-review-notification handler", zap.Error(err))
		}
		startWorker(zeebeClient, srn.TaskType, cfg.Workers[srn.TaskType], handler.Handle, zapLog)
	}
	zapLog.Info("All 7 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			checkCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := camundaClient.HealthCheck(checkCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
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
	for _, w := range jobWorkers {
		w.Stop()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

var (
	jobWorkers       []*camunda.CamundaWorker
	activityRegistry *registry.ActivityRegistry
)

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandlerFunc, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	handlerFunc = withInputValidation(taskType, handlerFunc, log)
	jobWorkers = append(jobWorkers,
		camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, time.Duration(wcfg.Timeout)*time.Millisecond, handlerFunc, log))
}

// withInputValidation checks job variables against the activity's registered
// input schema before the handler runs. Violations are logged, not fatal, so
// a stale registry cannot take the pipeline down.
func withInputValidation(taskType string, next camunda.JobHandlerFunc, log *zap.Logger) camunda.JobHandlerFunc {
	if activityRegistry == nil {
		return next
	}
	activity, err := activityRegistry.FindByTaskType(taskType)
	if err != nil {
		log.Warn("no registry entry for task type, schema validation skipped",
			zap.String("taskType", taskType))
		return next
	}

	return func(client worker.JobClient, job entities.Job) {
		var vars map[string]interface{}
		if err := json.Unmarshal([]byte(job.Variables), &vars); err == nil {
			if err := activity.ValidateInput(vars); err != nil {
				log.Warn("job input failed schema validation",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Error(err),
				)
			}
		}
		next(client, job)
	}
}
