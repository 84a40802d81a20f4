// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"inventory-workers/internal/common/config"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/metrics"
	"inventory-workers/internal/common/observability"
)

// HandlerFunc matches the Handle method every worker exposes.
type HandlerFunc func(client worker.JobClient, job entities.Job)

type Worker struct {
	taskType string
	worker   worker.JobWorker
	logger   logger.Logger
}

// Instrument wraps a handler with the active-jobs gauge, duration metrics and a span.
func Instrument(taskType string, handle HandlerFunc, obs *observability.Observability) HandlerFunc {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return func(client worker.JobClient, job entities.Job) {
		ctx, span := obs.StartSpan(context.Background(), "job."+taskType)
		defer span.End()

		gauge := metrics.WorkerJobsActive.WithLabelValues(taskType)
		gauge.Inc()
		defer gauge.Dec()

		start := time.Now()
		handle(client, job)
		elapsed := time.Since(start)

		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
		obs.RecordJobProcessed(ctx, taskType)
		obs.RecordJobDuration(ctx, elapsed, taskType)
	}
}

// StartWorker opens a job worker for taskType. It returns nil when the
// worker is disabled in configuration.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handle HandlerFunc,
	obs *observability.Observability,
	log logger.Logger,
) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})
	if !wcfg.Enabled {
		log.Info("worker disabled", nil)
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(taskType, handle, obs))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return &Worker{taskType: taskType, worker: jobWorker, logger: log}
}

func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
