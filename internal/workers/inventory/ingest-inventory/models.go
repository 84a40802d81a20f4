// internal/workers/inventory/ingest-inventory/models.go
package ingestinventory

import (
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/engine"
)

type Input struct {
	SessionID string          `json:"sessionId"`
	Headers   []string        `json:"headers"`
	Rows      [][]interface{} `json:"rows"`
}

// Output extends the engine result with the job-level ingest identity.
type Output struct {
	engine.IngestResult
	IngestID    string `json:"ingestId"`
	Fingerprint string `json:"fingerprint"`
	// Duplicate is set when the upload matched the session's last ingest and
	// the engine was not called.
	Duplicate bool `json:"duplicate"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"headers", "rows"},
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:        "string",
				Description: "Conversation or tenant the dataset belongs to",
				MaxLength:   validation.Int(128),
			},
			"headers": {
				Type:        "array",
				Description: "Column headers in sheet order",
				MinItems:    validation.Int(1),
				Items:       &validation.Property{Type: "string"},
			},
			"rows": {
				Type:        "array",
				Description: "Data rows, one cell per header",
				Items:       &validation.Property{Type: "array"},
			},
		},
		AdditionalProperties: false,
	}
}
