// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Inventory engine errors
const (
	ErrCodeSchemaError       ErrorCode = "SCHEMA_ERROR"
	ErrCodeNoDatasetLoaded   ErrorCode = "NO_DATASET_LOADED"
	ErrCodeValidationError   ErrorCode = "VALIDATION_ERROR"
	ErrCodeRoleNotPermitted  ErrorCode = "ROLE_NOT_PERMITTED"
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeUnsupportedReport ErrorCode = "UNSUPPORTED_REPORT"
)

// Integration errors
const (
	ErrCodeRateFetchFailed          ErrorCode = "RATE_FETCH_FAILED"
	ErrCodeRateFetchTimeout         ErrorCode = "RATE_FETCH_TIMEOUT"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeReportArchiveFailed      ErrorCode = "REPORT_ARCHIVE_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewSchemaError reports a dataset whose headers cannot yield a Product column.
func NewSchemaError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaError,
		Message:   "Dataset has no identifiable product column",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingRequiredFieldsError rejects a dataset that lacks configured mandatory columns.
func NewMissingRequiredFieldsError(fields ...string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaError,
		Message:   "Dataset is missing required columns",
		Details:   fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", ")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoDatasetLoadedError is returned when a session is queried before any ingest.
func NewNoDatasetLoadedError(session string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoDatasetLoaded,
		Message:   "No inventory dataset loaded",
		Details:   fmt.Sprintf("session: %s", session),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationError,
		Message:   "Validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRoleNotPermittedError rejects an operation reserved for privileged callers.
func NewRoleNotPermittedError(role, operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRoleNotPermitted,
		Message:   "Role not permitted for operation",
		Details:   fmt.Sprintf("role: %s, operation: %s", role, operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnsupportedReportError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedReport,
		Message:   "Unsupported summary kind",
		Details:   fmt.Sprintf("kind: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateFetchFailedError creates a retryable upstream rate error.
func NewRateFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateFetchFailed,
		Message:   "Exchange rate provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewRateFetchTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateFetchTimeout,
		Message:   "Exchange rate provider timeout",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportArchiveFailedError creates a retryable report persistence error.
func NewReportArchiveFailedError(reportID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportArchiveFailed,
		Message:   "Failed to archive inventory report",
		Details:   fmt.Sprintf("reportId: %s, error: %s", reportID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSchemaError:              "SCHEMA_ERROR",
	ErrCodeNoDatasetLoaded:          "NO_DATASET_LOADED",
	ErrCodeValidationError:          "VALIDATION_ERROR",
	ErrCodeRoleNotPermitted:         "ROLE_NOT_PERMITTED",
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeUnsupportedReport:        "UNSUPPORTED_REPORT",
	ErrCodeRateFetchFailed:          "RATE_FETCH_FAILED",
	ErrCodeRateFetchTimeout:         "RATE_FETCH_TIMEOUT",
	ErrCodeCacheUnavailable:         "CACHE_UNAVAILABLE",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeReportArchiveFailed:      "REPORT_ARCHIVE_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRateFetchFailed,
		ErrCodeCacheUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeReportArchiveFailed,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeRateFetchTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "DATASET") || strings.Contains(codeStr, "FIELD"):
		return "DATASET"
	case strings.Contains(codeStr, "ROLE"):
		return "POLICY"
	case strings.Contains(codeStr, "RATE"):
		return "EXCHANGE_RATE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "ARCHIVE") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "UNSUPPORTED"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
