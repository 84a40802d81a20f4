// cmd/worker-manager/main.go
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	commonaws "inventory-workers/internal/common/aws"
	"inventory-workers/internal/common/camunda"
	"inventory-workers/internal/common/config"
	"inventory-workers/internal/common/database"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/observability"
	"inventory-workers/internal/inventory/engine"

	ssa "inventory-workers/internal/workers/communication/send-stock-alert"
	fer "inventory-workers/internal/workers/inventory/fetch-exchange-rate"
	ii "inventory-workers/internal/workers/inventory/ingest-inventory"
	lir "inventory-workers/internal/workers/inventory/load-inventory-report"
	qi "inventory-workers/internal/workers/inventory/query-inventory"
	ser "inventory-workers/internal/workers/inventory/set-exchange-rate"
	si "inventory-workers/internal/workers/inventory/summarize-inventory"
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
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, cfg.Observability.TraceSampling)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Inventory engine shared by every worker ---
	engineCfg, err := engine.FromSettings(cfg.Inventory)
	if err != nil {
		zapLog.Fatal("invalid inventory settings", zap.Error(err))
	}
	eng, err := engine.New(engineCfg, log, engine.WithObservability(obs))
	if err != nil {
		zapLog.Fatal("inventory engine init failed", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
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

	archive := database.NewReportArchive(pg.DB)
	if err := archive.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("report archive schema failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

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

	// --- Init AWS clients ---
	sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SES client init failed", zap.Error(err))
	}
	snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("SNS client init failed", zap.Error(err))
	}

	// --- Register workers ---
	timeout := func(taskType string, fallback time.Duration) time.Duration {
		if ms := cfg.Workers[taskType].Timeout; ms > 0 {
			return config.GetDuration(ms)
		}
		return fallback
	}

	var workers []*camunda.Worker
	start := func(taskType string, handle camunda.HandlerFunc) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, cfg.Workers[taskType], handle, obs, log); w != nil {
			workers = append(workers, w)
		}
	}

	ingestCfg := ii.LoadConfig()
	ingestCfg.Timeout = timeout(ii.TaskType, ingestCfg.Timeout)
	ingestCfg.DedupeTTL = time.Duration(cfg.Inventory.DedupeTTL) * time.Second
	start(ii.TaskType, ii.NewHandler(ingestCfg, eng, redis.Client, log).Handle)

	queryCfg := qi.LoadConfig()
	queryCfg.Timeout = timeout(qi.TaskType, queryCfg.Timeout)
	start(qi.TaskType, qi.NewHandler(queryCfg, eng, log).Handle)

	setRateCfg := ser.LoadConfig()
	setRateCfg.Timeout = timeout(ser.TaskType, setRateCfg.Timeout)
	start(ser.TaskType, ser.NewHandler(setRateCfg, eng, log).Handle)

	fetchCfg := fer.LoadConfig()
	fetchCfg.Timeout = timeout(fer.TaskType, fetchCfg.Timeout)
	if cfg.RateProvider.URL != "" {
		fetchCfg.ProviderURL = cfg.RateProvider.URL
	}
	if cfg.RateProvider.Timeout > 0 {
		fetchCfg.ProviderTimeout = config.GetDuration(cfg.RateProvider.Timeout)
	}
	if cfg.RateProvider.CacheTTL > 0 {
		fetchCfg.CacheTTL = time.Duration(cfg.RateProvider.CacheTTL) * time.Second
	}
	fetchCfg.UserAgent = cfg.RateProvider.UserAgent
	fetchHandler, err := fer.NewHandler(fetchCfg, eng, redis, log)
	if err != nil {
		zapLog.Fatal("failed to create fetch-exchange-rate handler", zap.Error(err))
	}
	start(fer.TaskType, fetchHandler.Handle)

	summaryCfg := si.LoadConfig()
	summaryCfg.Timeout = timeout(si.TaskType, summaryCfg.Timeout)
	start(si.TaskType, si.NewHandler(summaryCfg, eng, archive, log).Handle)

	loadCfg := lir.LoadConfig()
	loadCfg.Timeout = timeout(lir.TaskType, loadCfg.Timeout)
	if cfg.Inventory.DefaultSession != "" {
		loadCfg.DefaultSession = cfg.Inventory.DefaultSession
	}
	start(lir.TaskType, lir.NewHandler(loadCfg, archive, log).Handle)

	alertCfg := ssa.LoadConfig()
	alertCfg.Timeout = timeout(ssa.TaskType, alertCfg.Timeout)
	alertCfg.EmailEnabled = cfg.Notifications.Email.Enabled
	alertCfg.FromEmail = cfg.Notifications.Email.FromEmail
	alertCfg.Recipients = cfg.Notifications.Email.Recipients
	alertCfg.SMSEnabled = cfg.Notifications.SMS.Enabled
	alertCfg.PhoneNumbers = cfg.Notifications.SMS.PhoneNumbers
	alertCfg.SenderID = cfg.Notifications.SMS.SenderID
	alertCfg.AWSRegion = cfg.Notifications.AWS.Region
	alertHandler, err := ssa.NewHandler(alertCfg, eng, redis, sesClient, snsClient, log)
	if err != nil {
		zapLog.Fatal("failed to create send-stock-alert handler", zap.Error(err))
	}
	start(ssa.TaskType, alertHandler.Handle)

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status, code := "ready", http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Observability.MetricsPort),
		Handler: mux,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
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

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
