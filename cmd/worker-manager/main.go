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

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"petfood-workers/internal/classifier"
	"petfood-workers/internal/common/aws"
	"petfood-workers/internal/common/camunda"
	"petfood-workers/internal/common/catalog"
	"petfood-workers/internal/common/config"
	"petfood-workers/internal/common/database"
	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/observability"
	"petfood-workers/internal/keywords"

	// Catalog Workers (3)
	fpt "petfood-workers/internal/workers/catalog/fetch-product-text"
	ip "petfood-workers/internal/workers/catalog/index-product"
	sp "petfood-workers/internal/workers/catalog/search-products"

	// Classification Workers (5)
	ai "petfood-workers/internal/workers/classification/analyze-ingredients"
	ca "petfood-workers/internal/workers/classification/classify-attributes"
	dbr "petfood-workers/internal/workers/classification/detect-brand"
	en "petfood-workers/internal/workers/classification/extract-nutrients"
	rp "petfood-workers/internal/workers/classification/reprocess-products"

	// Scoring Workers (2)
	cbs "petfood-workers/internal/workers/scoring/calculate-base-score"
	cfs "petfood-workers/internal/workers/scoring/calculate-final-score"

	// Review Workers (2)
	rmr "petfood-workers/internal/workers/review/route-manual-review"
	srd "petfood-workers/internal/workers/review/send-review-digest"
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
	zapLog.Info("Starting worker manager...")

	// CONFIG_FILE pins one explicit file; otherwise the search paths and
	// the APP_ENVIRONMENT overlay apply.
	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Rebuild with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	if cfg.App.TracingEndpoint != "" {
		if err := obs.InitTracing(cfg.App.TracingEndpoint); err != nil {
			zapLog.Warn("tracing init failed, continuing without it", zap.Error(err))
		}
	}

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
		return esClient.Ping(ctx)
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

	// --- Init External Service Clients ---
	catalogClient := catalog.NewClient(cfg.Catalog)

	var snsClient *aws.SNSClient
	if cfg.Review.SNS.Enabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Review.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
	}

	var sesClient *aws.SESClient
	if cfg.Review.SES.Enabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Review.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
	}

	zapLog.Info("All external service clients initialized")

	// --- Compile the classifier pipeline ---
	lib := keywords.Default()
	if cfg.Keywords.TablePath != "" {
		lib, err = keywords.Load(cfg.Keywords.TablePath)
		if err != nil {
			zapLog.Fatal("keyword tables load failed", zap.Error(err))
		}
	}
	pipeline := classifier.NewPipeline(lib, cfg.Scoring.ProcessorVersion)
	zapLog.Info("classifier pipeline compiled",
		zap.String("keywordVersion", lib.Version),
		zap.String("processorVersion", pipeline.Version()),
	)

	var jobWorkers []*camunda.Worker

	// --- 1. Catalog Workers (3) ---
	if cfg.Workers[fpt.TaskType].Enabled {
		handler := fpt.NewHandler(
			&fpt.Config{
				Timeout: config.GetDuration(cfg.Workers[fpt.TaskType].Timeout),
			},
			pg.DB, catalogClient, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, fpt.TaskType, cfg.Workers[fpt.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[ip.TaskType].Enabled {
		handler := ip.NewHandler(
			&ip.Config{
				Timeout:   config.GetDuration(cfg.Workers[ip.TaskType].Timeout),
				IndexName: cfg.Search.ProductIndex,
			},
			pg.DB, esClient.Client, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, ip.TaskType, cfg.Workers[ip.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[sp.TaskType].Enabled {
		handler := sp.NewHandler(
			&sp.Config{
				Timeout:     config.GetDuration(cfg.Workers[sp.TaskType].Timeout),
				IndexName:   cfg.Search.ProductIndex,
				MaxPageSize: cfg.Search.MaxPageSize,
			},
			esClient.Client, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, sp.TaskType, cfg.Workers[sp.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	// --- 2. Classification Workers (5) ---
	if cfg.Workers[ca.TaskType].Enabled {
		handler := ca.NewHandler(
			&ca.Config{
				Timeout: config.GetDuration(cfg.Workers[ca.TaskType].Timeout),
			},
			pg.DB, redis.Client, pipeline, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, ca.TaskType, cfg.Workers[ca.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[dbr.TaskType].Enabled {
		handler := dbr.NewHandler(
			&dbr.Config{
				Timeout: config.GetDuration(cfg.Workers[dbr.TaskType].Timeout),
			},
			pg.DB, pipeline, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, dbr.TaskType, cfg.Workers[dbr.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[ai.TaskType].Enabled {
		handler := ai.NewHandler(
			&ai.Config{
				Timeout: config.GetDuration(cfg.Workers[ai.TaskType].Timeout),
			},
			pg.DB, pipeline, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, ai.TaskType, cfg.Workers[ai.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[en.TaskType].Enabled {
		handler := en.NewHandler(
			&en.Config{
				Timeout:          config.GetDuration(cfg.Workers[en.TaskType].Timeout),
				ProcessorVersion: pipeline.Version(),
			},
			pg.DB, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, en.TaskType, cfg.Workers[en.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[rp.TaskType].Enabled {
		handler := rp.NewHandler(
			&rp.Config{
				Timeout:     config.GetDuration(cfg.Workers[rp.TaskType].Timeout),
				Concurrency: cfg.Scoring.BatchConcurrency,
				ProgressTTL: time.Duration(cfg.Scoring.BatchProgressTTL) * time.Second,
			},
			pg.DB, redis.Client, pipeline, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, rp.TaskType, cfg.Workers[rp.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	// --- 3. Scoring Workers (2) ---
	if cfg.Workers[cbs.TaskType].Enabled {
		handler := cbs.NewHandler(
			&cbs.Config{
				Timeout:        config.GetDuration(cfg.Workers[cbs.TaskType].Timeout),
				CacheTTL:       time.Duration(cfg.Scoring.AttributeCacheTTL) * time.Second,
				ForceRecompute: cfg.Scoring.ForceRecompute,
			},
			pg.DB, redis.Client, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, cbs.TaskType, cfg.Workers[cbs.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[cfs.TaskType].Enabled {
		handler := cfs.NewHandler(
			&cfs.Config{
				Timeout:  config.GetDuration(cfg.Workers[cfs.TaskType].Timeout),
				CacheTTL: time.Duration(cfg.Scoring.AttributeCacheTTL) * time.Second,
			},
			pg.DB, redis.Client, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, cfs.TaskType, cfg.Workers[cfs.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	// --- 4. Review Workers (2) ---
	if cfg.Workers[rmr.TaskType].Enabled {
		var snsSvc rmr.SNSService
		if snsClient != nil {
			snsSvc = snsClient
		}
		handler := rmr.NewHandler(
			&rmr.Config{
				Timeout:  config.GetDuration(cfg.Workers[rmr.TaskType].Timeout),
				TopicARN: cfg.Review.SNS.TopicARN,
			},
			pg.DB, snsSvc, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, rmr.TaskType, cfg.Workers[rmr.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	if cfg.Workers[srd.TaskType].Enabled {
		var sesSvc srd.SESService
		if sesClient != nil {
			sesSvc = sesClient
		}
		handler := srd.NewHandler(
			&srd.Config{
				Timeout:    config.GetDuration(cfg.Workers[srd.TaskType].Timeout),
				FromEmail:  cfg.Review.SES.FromEmail,
				Recipients: cfg.Review.SES.Recipients,
				MaxItems:   50,
			},
			pg.DB, sesSvc, log,
		)
		jobWorkers = append(jobWorkers, startWorker(zeebeClient, srd.TaskType, cfg.Workers[srd.TaskType], handler.Handle, obs.ObserveJob, zapLog))
	}

	zapLog.Info("worker fleet registered", zap.Int("workers", len(jobWorkers)))

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
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "unavailable",
					"reason": "zeebe: " + err.Error(),
				})
				return
			}
			if err := pg.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "unavailable",
					"reason": "postgres: " + err.Error(),
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
		w.Close()
	}
	for _, w := range jobWorkers {
		w.AwaitClose()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandlerFunc, observe camunda.JobObserver, log *zap.Logger) *camunda.Worker {
	return camunda.NewWorker(client, taskType, wcfg.MaxJobsActive, time.Duration(wcfg.Timeout)*time.Millisecond, handlerFunc, observe, log)
}
