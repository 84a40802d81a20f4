// internal/workers/inventory/load-inventory-report/models.go
package loadinventoryreport

import (
	"encoding/json"
	"time"

	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/analytics"
)

type Input struct {
	SessionID string `json:"sessionId"`
	Role      string `json:"role"`
	Kind      string `json:"kind"`
}

// Output carries the newest archived report. Found is false when the
// session never archived a report of that kind.
type Output struct {
	Found     bool            `json:"found"`
	ReportID  string          `json:"reportId,omitempty"`
	Kind      string          `json:"kind"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	Summary   json.RawMessage `json:"summary,omitempty"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"role", "kind"},
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MaxLength: validation.Int(128)},
			"role":      {Type: "string", MinLength: validation.Int(1)},
			"kind": {
				Type: "string",
				Enum: []string{
					string(analytics.KindExpired),
					string(analytics.KindLowStock),
					string(analytics.KindTopPerformer),
					string(analytics.KindPareto),
				},
			},
		},
		AdditionalProperties: false,
	}
}
