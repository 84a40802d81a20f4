// internal/workers/inventory/summarize-inventory/handler.go
package summarizeinventory

import (
	"context"
	"encoding/json"
	"fmt"

	"inventory-workers/internal/common/database"
	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/metrics"
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/engine"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "summarize-inventory"
)

type Handler struct {
	config  *Config
	engine  *engine.Engine
	archive *database.ReportArchive
	logger  logger.Logger
	errs    *errors.ErrorHandler
}

func NewHandler(config *Config, eng *engine.Engine, archive *database.ReportArchive, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		engine:  eng,
		archive: archive,
		logger:  log,
		errs:    errors.NewErrorHandler(log),
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
	summary, err := h.engine.Summarize(ctx, engine.SummaryRequest{
		Session: input.SessionID,
		Kind:    input.Kind,
		Role:    input.Role,
		GroupBy: input.GroupBy,
		ValueBy: input.ValueField,
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := &Output{ReportID: uuid.New().String(), Summary: summary}
	if h.archive == nil || !h.config.Archive {
		return out, nil
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, errors.NewReportArchiveFailedError(out.ReportID, err)
	}
	session := h.engine.Snapshot(input.SessionID).Session
	if err := h.archive.Save(ctx, database.ArchivedReport{
		ID:        out.ReportID,
		SessionID: session,
		Kind:      string(summary.Kind),
		Payload:   payload,
		CreatedAt: summary.GeneratedAt,
	}); err != nil {
		return nil, errors.NewReportArchiveFailedError(out.ReportID, err)
	}
	out.Archived = true

	h.logger.Info("report archived", map[string]interface{}{
		"reportId": out.ReportID,
		"session":  session,
		"kind":     summary.Kind,
	})
	return out, nil
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
