// internal/workers/inventory/ingest-inventory/handler.go
package ingestinventory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/metrics"
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "ingest-inventory"
)

type Handler struct {
	config *Config
	engine *engine.Engine
	redis  *redis.Client
	logger logger.Logger
	errs   *errors.ErrorHandler
}

// NewHandler builds the handler. A nil redis client disables deduplication.
func NewHandler(config *Config, eng *engine.Engine, rdb *redis.Client, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: eng,
		redis:  rdb,
		logger: log,
		errs:   errors.NewErrorHandler(log),
	}
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
	fp := fingerprint(input.Headers, input.Rows)
	key := dedupeKey(h.engine.Snapshot(input.SessionID).Session)

	if h.redis != nil {
		last, err := h.redis.Get(ctx, key).Result()
		switch {
		case err == nil && last == fp:
			if out := h.duplicate(input.SessionID, fp); out != nil {
				return out, nil
			}
		case err != nil && err != redis.Nil:
			cacheErr := errors.NewCacheUnavailableError(err)
			h.logger.Warn("dedupe lookup failed, ingesting anyway", map[string]interface{}{
				"session":   input.SessionID,
				"errorCode": string(cacheErr.Code),
				"error":     cacheErr.Details,
			})
		}
	}

	res, err := h.engine.Ingest(ctx, input.SessionID, input.Headers, input.Rows)
	if err != nil {
		return nil, err
	}

	if h.redis != nil && h.config.DedupeTTL > 0 {
		if err := h.redis.Set(ctx, key, fp, h.config.DedupeTTL).Err(); err != nil {
			h.logger.Warn("failed to record ingest fingerprint", map[string]interface{}{
				"session": res.Session,
				"error":   err.Error(),
			})
		}
	}

	return &Output{
		IngestResult: *res,
		IngestID:     uuid.New().String(),
		Fingerprint:  fp,
	}, nil
}

// duplicate describes the session's current dataset, or returns nil when the
// process lost it and the upload must be ingested again.
func (h *Handler) duplicate(session, fp string) *Output {
	snap := h.engine.Snapshot(session)
	if !snap.IsLoaded() {
		return nil
	}
	h.logger.Info("identical upload skipped", map[string]interface{}{
		"session": snap.Session,
		"version": snap.Version,
	})
	return &Output{
		IngestResult: engine.IngestResult{
			Success:         true,
			Session:         snap.Session,
			CanonicalFields: snap.Dataset.Fields,
			RowCount:        snap.Dataset.Len(),
			SkippedRows:     snap.Dataset.SkippedRows,
			Domain:          snap.Domain,
			Version:         snap.Version,
		},
		IngestID:    uuid.New().String(),
		Fingerprint: fp,
		Duplicate:   true,
	}
}

func dedupeKey(session string) string {
	return "inventory:ingest:" + session
}

// fingerprint hashes the canonical JSON of the upload.
func fingerprint(headers []string, rows [][]interface{}) string {
	data, _ := json.Marshal(struct {
		Headers []string        `json:"h"`
		Rows    [][]interface{} `json:"r"`
	}{headers, rows})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
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
