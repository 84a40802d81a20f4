// internal/workers/communication/send-stock-alert/handler.go
package sendstockalert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commonaws "inventory-workers/internal/common/aws"
	"inventory-workers/internal/common/database"
	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/common/metrics"
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/analytics"
	"inventory-workers/internal/inventory/engine"
	"inventory-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-stock-alert"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	engine    *engine.Engine
	redis     *database.RedisClient
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
	errs      *errors.ErrorHandler
}

// NewHandler builds the handler. A nil redis client disables deduplication.
func NewHandler(config *Config, eng *engine.Engine, rdb *database.RedisClient, sesClient SESService, snsClient SNSService, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		engine:    eng,
		redis:     rdb,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log,
		errs:      errors.NewErrorHandler(log),
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
	expired, err := h.summary(ctx, input.SessionID, analytics.KindExpired)
	if err != nil {
		return nil, err
	}
	lowStock, err := h.summary(ctx, input.SessionID, analytics.KindLowStock)
	if err != nil {
		return nil, err
	}

	session := h.engine.Snapshot(input.SessionID).Session
	a := buildAlert(session, expired.Expired, lowStock.LowStock, h.config.MaxLines)
	out := &Output{
		AlertID:       uuid.New().String(),
		ExpiredCount:  a.ExpiredCount,
		LowStockCount: a.LowStockCount,
	}

	if a.empty() {
		out.Status = StatusNothing
		return out, nil
	}

	recipients := validRecipients(h.config.Recipients)
	if len(input.Recipients) > 0 {
		recipients = validRecipients(input.Recipients)
	}
	var phones []string
	if h.config.SMSEnabled && input.Priority == PriorityHigh {
		phones = validPhones(h.config.PhoneNumbers)
	}
	sendEmail := h.config.EmailEnabled && len(recipients) > 0
	if !sendEmail && len(phones) == 0 {
		h.logger.Warn("stock alert has no enabled channel", map[string]interface{}{"session": session})
		out.Status = StatusDisabled
		return out, nil
	}

	claimKey := "inventory:alert:" + session + ":" + a.digest()
	if h.redis != nil && h.config.DedupeTTL > 0 {
		won, err := h.redis.Claim(ctx, claimKey, out.AlertID, h.config.DedupeTTL)
		switch {
		case err != nil:
			cacheErr := errors.NewCacheUnavailableError(err)
			h.logger.Warn("alert dedupe unavailable, sending anyway", map[string]interface{}{
				"errorCode": string(cacheErr.Code),
				"error":     cacheErr.Details,
			})
		case !won:
			out.Status = StatusDuplicate
			return out, nil
		}
	}

	if sendEmail {
		if _, err := h.sesClient.SendEmail(ctx, commonaws.EmailInput(h.config.FromEmail, recipients, a.Subject, a.Body)); err != nil {
			h.release(ctx, claimKey)
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		out.EmailsSent = len(recipients)
	}

	var smsErr error
	for _, phone := range phones {
		if _, err := h.snsClient.Publish(ctx, commonaws.SMSInput(phone, a.SMS, h.config.SenderID)); err != nil {
			smsErr = err
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err.Error(),
				"phone": phone,
			})
			continue
		}
		out.SMSSent++
	}
	if out.EmailsSent == 0 && out.SMSSent == 0 && smsErr != nil {
		h.release(ctx, claimKey)
		return nil, errors.NewNotificationSendFailedError("sms", smsErr)
	}

	out.Status = StatusSent
	out.SentAt = time.Now().UTC().Format(time.RFC3339)
	h.logger.Info("stock alert sent", map[string]interface{}{
		"session":    session,
		"alertId":    out.AlertID,
		"expired":    out.ExpiredCount,
		"lowStock":   out.LowStockCount,
		"emailsSent": out.EmailsSent,
		"smsSent":    out.SMSSent,
	})
	return out, nil
}

// summary runs a report on the system's behalf.
func (h *Handler) summary(ctx context.Context, session string, kind analytics.Kind) (*analytics.Summary, error) {
	return h.engine.Summarize(ctx, engine.SummaryRequest{
		Session: session,
		Kind:    string(kind),
		Role:    string(models.RolePrivileged),
	})
}

// release lets a retried job send the alert again.
func (h *Handler) release(ctx context.Context, key string) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Del(ctx, key); err != nil {
		h.logger.Warn("failed to release alert claim", map[string]interface{}{"error": err.Error()})
	}
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
