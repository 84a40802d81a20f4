// internal/workers/inventory/fetch-exchange-rate/handler.go
package fetchexchangerate

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"inventory-workers/internal/common/database"
	"inventory-workers/internal/common/errors"
	httpclient "inventory-workers/internal/common/http"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/metrics"
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/engine"
	"inventory-workers/internal/inventory/schema"
	"inventory-workers/internal/inventory/store"
	"inventory-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fetch-exchange-rate"

	// CacheKey holds the last official rate fetched by any worker instance.
	CacheKey = "inventory:rate:official"
)

type Handler struct {
	config *Config
	engine *engine.Engine
	redis  *database.RedisClient
	http   *httpclient.Client
	logger logger.Logger
	errs   *errors.ErrorHandler
}

// NewHandler builds the handler. A nil redis client disables caching.
func NewHandler(config *Config, eng *engine.Engine, rdb *database.RedisClient, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: eng,
		redis:  rdb,
		http:   httpclient.NewClient(config.ProviderTimeout).WithUserAgent(config.UserAgent),
		logger: log,
		errs:   errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// parseInput validates the job variables against the input schema before decoding them.
func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	result, err := validation.ValidateJSON([]byte(job.Variables), GetInputSchema())
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%v", result.GetErrorMessages()))
	}
	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	rate, source, err := h.rate(ctx, input.Refresh)
	if err != nil {
		return nil, err
	}

	// the fetched rate is applied on the system's behalf
	snap, err := h.engine.SetRate(ctx, input.SessionID, string(models.RolePrivileged), rate)
	if err != nil {
		return nil, err
	}

	h.logger.Info("official rate applied", map[string]interface{}{
		"session": snap.Session,
		"rate":    rate,
		"source":  source,
	})
	return &Output{
		SessionID: snap.Session,
		Rate:      snap.Rate,
		Source:    source,
		Version:   snap.Version,
		AppliedAt: snap.RateAt,
	}, nil
}

func (h *Handler) rate(ctx context.Context, refresh bool) (float64, string, error) {
	if h.redis != nil && !refresh {
		cached, ok, err := h.redis.GetFloat(ctx, CacheKey)
		switch {
		case err != nil:
			cacheErr := errors.NewCacheUnavailableError(err)
			h.logger.Warn("rate cache read failed", map[string]interface{}{
				"errorCode": string(cacheErr.Code),
				"error":     cacheErr.Details,
			})
		case ok && store.ValidateRate(cached) == nil:
			return cached, SourceCache, nil
		}
	}

	rate, err := h.fetch(ctx)
	if err != nil {
		return 0, "", err
	}

	if h.redis != nil && h.config.CacheTTL > 0 {
		if err := h.redis.SetFloat(ctx, CacheKey, rate, h.config.CacheTTL); err != nil {
			cacheErr := errors.NewCacheUnavailableError(err)
			h.logger.Warn("rate cache write failed", map[string]interface{}{
				"errorCode": string(cacheErr.Code),
				"error":     cacheErr.Details,
			})
		}
	}
	return rate, SourceProvider, nil
}

// fetch reads the official quotation, falling back to the BCV entry.
func (h *Handler) fetch(ctx context.Context) (float64, error) {
	var doc quotations
	if err := h.http.GetJSON(ctx, h.config.ProviderURL, &doc); err != nil {
		var timeout interface{ Timeout() bool }
		if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &timeout) && timeout.Timeout()) {
			return 0, errors.NewRateFetchTimeoutError(h.config.ProviderTimeout)
		}
		return 0, errors.NewRateFetchFailedError(err)
	}

	for _, q := range []*quote{doc.Oficial, doc.BCV} {
		if q == nil {
			continue
		}
		if v, ok := schema.ParseDecimal(q.Padi.Value); ok && store.ValidateRate(v) == nil {
			return v, nil
		}
	}
	return 0, errors.NewRateFetchFailedError(fmt.Errorf("quotation document has no usable oficial or bcv rate"))
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errs.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
