// cmd/loan-orchestrator/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"loan-orchestrator/internal/api"
	"loan-orchestrator/internal/common/aws"
	"loan-orchestrator/internal/common/camunda"
	"loan-orchestrator/internal/common/config"
	"loan-orchestrator/internal/common/database"
	apperrors "loan-orchestrator/internal/common/errors"
	apphttp "loan-orchestrator/internal/common/http"
	"loan-orchestrator/internal/common/lock"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/observability"
	"loan-orchestrator/internal/common/resilience"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/events"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/orchestrator"
	"loan-orchestrator/internal/repository"
	"loan-orchestrator/internal/search"
	"loan-orchestrator/internal/underwriting"
	"loan-orchestrator/pkg/registry"

	alc "loan-orchestrator/internal/workers/loan/add-loan-condition"
	cla "loan-orchestrator/internal/workers/loan/create-loan-application"
	fl "loan-orchestrator/internal/workers/loan/fund-loan"
	rld "loan-orchestrator/internal/workers/loan/request-loan-document"
	rud "loan-orchestrator/internal/workers/loan/record-underwriting-decision"
	su "loan-orchestrator/internal/workers/loan/start-underwriting"
	sla "loan-orchestrator/internal/workers/loan/submit-loan-application"
	ulc "loan-orchestrator/internal/workers/loan/update-loan-condition"
	uld "loan-orchestrator/internal/workers/loan/update-loan-document"
	wla "loan-orchestrator/internal/workers/loan/withdraw-loan-application"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	// Job variables carry amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan orchestrator...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name, observability.TracingOptions{
		Enabled:           cfg.Tracing.Enabled,
		CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
	}, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.UsePlaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		ConnectRetries:         cfg.Camunda.ConnectRetries,
		ConnectRetryWait:       config.GetDuration(cfg.Camunda.ConnectRetryWait),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
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

	// --- Redis (application locks) ---
	var locker *lock.Locker
	var redis *database.RedisClient
	if cfg.Locking.Enabled {
		redis = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		locker = lock.New(redis.Client, cfg.Locking.Prefix, config.GetDuration(cfg.Locking.TTL))
		zapLog.Info("Redis connected successfully")
	}

	// --- Change listeners ---
	var listeners []orchestrator.ChangeListener

	if cfg.Search.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		listeners = append(listeners, search.NewIndexer(es.Client, cfg.Search.Index, log))
		zapLog.Info("Elasticsearch connected successfully")
	}

	if cfg.Notifications.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		listeners = append(listeners, events.NewSNSPublisher(snsClient, cfg.Notifications.SNS.TopicARN, log))
		zapLog.Info("SNS publisher initialized", zap.String("topicArn", cfg.Notifications.SNS.TopicARN))
	}

	// --- Downstream services ---
	exec := resilience.NewExecutor(resilience.FromConfig(cfg.Resilience), log)
	svc := cfg.Services

	orch := orchestrator.New(orchestrator.Dependencies{
		Store:      repository.NewApplicationStore(pg.DB),
		Customers:  gateway.NewCustomerClient(apphttp.NewClient(svc.Customer.BaseURL, config.GetDuration(svc.Customer.Timeout)), exec, log),
		Properties: gateway.NewPropertyClient(apphttp.NewClient(svc.Property.BaseURL, config.GetDuration(svc.Property.Timeout)), exec, log),
		Loans:      gateway.NewLoanClient(apphttp.NewClient(svc.Loan.BaseURL, config.GetDuration(svc.Loan.Timeout)), exec, log),
		Payments:   gateway.NewPaymentClient(apphttp.NewClient(svc.Payment.BaseURL, config.GetDuration(svc.Payment.Timeout)), exec, log),
		Engine:     underwriting.NewEngine(underwriting.PolicyFromConfig(cfg.Underwriting)),
		Listeners:  listeners,
		Obs:        obs,
	}, log)

	// --- Activity registry and input validation ---
	reg := registry.Default()
	if cfg.RegistryPath != "" {
		reg, err = registry.LoadRegistry(cfg.RegistryPath)
		if err != nil {
			zapLog.Fatal("activity registry load failed", zap.Error(err))
		}
	}
	validator, err := validation.NewValidator(reg.InputSchemas())
	if err != nil {
		zapLog.Fatal("activity input schemas invalid", zap.Error(err))
	}

	errorHandler := apperrors.NewErrorHandler(log, config.GetDuration(cfg.Camunda.RetryBackoff))
	newRunner := func(taskType string, timeout time.Duration) *camunda.Runner {
		return &camunda.Runner{
			TaskType:  taskType,
			Timeout:   timeout,
			Validator: validator,
			Locker:    locker,
			Errors:    errorHandler,
			Obs:       obs,
			Logger:    log.WithFields(map[string]interface{}{"taskType": taskType}),
		}
	}

	// --- Workers ---
	if c := cla.LoadConfig(cfg); config.IsWorkerEnabled(cfg, cla.TaskType) {
		h := cla.NewHandler(orch, newRunner(cla.TaskType, c.Timeout), log)
		startWorker(zeebe, cla.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := sla.LoadConfig(cfg); config.IsWorkerEnabled(cfg, sla.TaskType) {
		h := sla.NewHandler(orch, newRunner(sla.TaskType, c.Timeout), log)
		startWorker(zeebe, sla.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := su.LoadConfig(cfg); config.IsWorkerEnabled(cfg, su.TaskType) {
		h := su.NewHandler(orch, newRunner(su.TaskType, c.Timeout), log)
		startWorker(zeebe, su.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := rud.LoadConfig(cfg); config.IsWorkerEnabled(cfg, rud.TaskType) {
		h := rud.NewHandler(orch, newRunner(rud.TaskType, c.Timeout), log)
		startWorker(zeebe, rud.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := fl.LoadConfig(cfg); config.IsWorkerEnabled(cfg, fl.TaskType) {
		h := fl.NewHandler(orch, newRunner(fl.TaskType, c.Timeout), log)
		startWorker(zeebe, fl.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := wla.LoadConfig(cfg); config.IsWorkerEnabled(cfg, wla.TaskType) {
		h := wla.NewHandler(orch, newRunner(wla.TaskType, c.Timeout), log)
		startWorker(zeebe, wla.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := alc.LoadConfig(cfg); config.IsWorkerEnabled(cfg, alc.TaskType) {
		h := alc.NewHandler(orch, newRunner(alc.TaskType, c.Timeout), log)
		startWorker(zeebe, alc.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := ulc.LoadConfig(cfg); config.IsWorkerEnabled(cfg, ulc.TaskType) {
		h := ulc.NewHandler(orch, newRunner(ulc.TaskType, c.Timeout), log)
		startWorker(zeebe, ulc.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := rld.LoadConfig(cfg); config.IsWorkerEnabled(cfg, rld.TaskType) {
		h := rld.NewHandler(orch, newRunner(rld.TaskType, c.Timeout), log)
		startWorker(zeebe, rld.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	if c := uld.LoadConfig(cfg); config.IsWorkerEnabled(cfg, uld.TaskType) {
		h := uld.NewHandler(orch, newRunner(uld.TaskType, c.Timeout), log)
		startWorker(zeebe, uld.TaskType, c.MaxJobsActive, c.Timeout, h.Handle, zapLog)
	}
	zapLog.Info("Loan workers registered")

	// --- Health, Metrics & Read API Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		checks := map[string]string{"zeebe": "ok", "postgres": "ok"}
		code := http.StatusOK
		if err := zeebe.HealthCheck(ctx); err != nil {
			checks["zeebe"], code = err.Error(), http.StatusServiceUnavailable
		}
		if err := pg.Ping(ctx); err != nil {
			checks["postgres"], code = err.Error(), http.StatusServiceUnavailable
		}
		if redis != nil {
			checks["redis"] = "ok"
			if err := redis.Ping(ctx); err != nil {
				checks["redis"], code = err.Error(), http.StatusServiceUnavailable
			}
		}
		status := "ready"
		if code != http.StatusOK {
			status = "not ready"
		}
		writeStatus(w, code, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())
	api.NewHandler(orch, log).Register(mux)

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}

	zapLog.Info("Loan orchestrator stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, maxJobsActive int, timeout time.Duration, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if maxJobsActive <= 0 {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}
	client.Open(taskType, maxJobsActive, timeout, handlerFunc)
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
