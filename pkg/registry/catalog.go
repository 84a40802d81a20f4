// pkg/registry/catalog.go
package registry

import (
	"encoding/json"
	"time"

	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/common/validation"

	ssa "inventory-workers/internal/workers/communication/send-stock-alert"
	fer "inventory-workers/internal/workers/inventory/fetch-exchange-rate"
	ii "inventory-workers/internal/workers/inventory/ingest-inventory"
	lir "inventory-workers/internal/workers/inventory/load-inventory-report"
	qi "inventory-workers/internal/workers/inventory/query-inventory"
	ser "inventory-workers/internal/workers/inventory/set-exchange-rate"
	si "inventory-workers/internal/workers/inventory/summarize-inventory"
)

const catalogVersion = "1.0.0"

func codes(cs ...errors.ErrorCode) []string {
	out := []string{string(errors.ErrCodeInvalidInput)}
	for _, c := range cs {
		out = append(out, string(c))
	}
	return out
}

// Catalog describes every worker this module registers, with input
// schemas taken from the workers themselves.
func Catalog() []Activity {
	return []Activity{
		{
			ID:          "inventory.dataset.ingest",
			DisplayName: "Ingest Inventory",
			Description: "Maps spreadsheet headers to canonical fields and replaces the session dataset",
			Category:    "inventory",
			TaskType:    ii.TaskType,
			InputSchema: schemaMap(ii.GetInputSchema()),
			ErrorCodes:  codes(errors.ErrCodeSchemaError),
			Timeout:     "60s",
			Retries:     3,
			Tags:        []string{"dataset", "redis"},
		},
		{
			ID:          "inventory.query.ask",
			DisplayName: "Query Inventory",
			Description: "Classifies a question and answers it with the disclosure allowed for the role",
			Category:    "inventory",
			TaskType:    qi.TaskType,
			InputSchema: schemaMap(qi.GetInputSchema()),
			ErrorCodes:  codes(errors.ErrCodeNoDatasetLoaded, errors.ErrCodeValidationError),
			Timeout:     "5s",
			Retries:     2,
			Tags:        []string{"query", "resolver"},
		},
		{
			ID:          "inventory.rate.set",
			DisplayName: "Set Exchange Rate",
			Description: "Replaces the session exchange rate",
			Category:    "inventory",
			TaskType:    ser.TaskType,
			InputSchema: schemaMap(ser.GetInputSchema()),
			ErrorCodes:  codes(errors.ErrCodeRoleNotPermitted, errors.ErrCodeValidationError),
			Timeout:     "5s",
			Retries:     2,
			Tags:        []string{"rate"},
		},
		{
			ID:          "inventory.rate.fetch",
			DisplayName: "Fetch Exchange Rate",
			Description: "Reads the official rate from the quotations provider, caching it in Redis",
			Category:    "inventory",
			TaskType:    fer.TaskType,
			InputSchema: schemaMap(fer.GetInputSchema()),
			ErrorCodes:  codes(errors.ErrCodeRateFetchFailed, errors.ErrCodeRateFetchTimeout, errors.ErrCodeValidationError),
			Timeout:     "15s",
			Retries:     3,
			Tags:        []string{"rate", "http", "redis"},
		},
		{
			ID:          "inventory.report.summarize",
			DisplayName: "Summarize Inventory",
			Description: "Builds a management report and archives it in Postgres",
			Category:    "inventory",
			TaskType:    si.TaskType,
			InputSchema: schemaMap(si.GetInputSchema()),
			ErrorCodes: codes(
				errors.ErrCodeNoDatasetLoaded,
				errors.ErrCodeRoleNotPermitted,
				errors.ErrCodeUnsupportedReport,
				errors.ErrCodeValidationError,
				errors.ErrCodeReportArchiveFailed,
			),
			Timeout: "30s",
			Retries: 3,
			Tags:    []string{"report", "postgres"},
		},
		{
			ID:          "inventory.report.load",
			DisplayName: "Load Inventory Report",
			Description: "Returns the newest archived report of a kind for export",
			Category:    "inventory",
			TaskType:    lir.TaskType,
			InputSchema: schemaMap(lir.GetInputSchema()),
			ErrorCodes: codes(
				errors.ErrCodeRoleNotPermitted,
				errors.ErrCodeUnsupportedReport,
				errors.ErrCodeDatabaseConnectionFailed,
			),
			Timeout: "5s",
			Retries: 3,
			Tags:    []string{"report", "postgres"},
		},
		{
			ID:          "inventory.alert.send",
			DisplayName: "Send Stock Alert",
			Description: "Emails expired and low-stock products, with SMS for high priority",
			Category:    "communication",
			TaskType:    ssa.TaskType,
			InputSchema: schemaMap(ssa.GetInputSchema()),
			ErrorCodes:  codes(errors.ErrCodeNoDatasetLoaded, errors.ErrCodeNotificationSendFailed),
			Timeout:     "10s",
			Retries:     3,
			Tags:        []string{"alert", "ses", "sns", "redis"},
		},
	}
}

// Build returns a registry holding the catalog, all marked completed.
func Build() *ActivityRegistry {
	reg := &ActivityRegistry{
		Version:     catalogVersion,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	for _, a := range Catalog() {
		a.Version = catalogVersion
		a.ImplementationStatus = StatusCompleted
		reg.Activities = append(reg.Activities, a)
	}
	return reg
}

func schemaMap(s validation.JSONSchema) map[string]interface{} {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
