// internal/workers/inventory/summarize-inventory/models.go
package summarizeinventory

import (
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/analytics"
)

type Input struct {
	SessionID  string `json:"sessionId"`
	Role       string `json:"role"`
	Kind       string `json:"kind"`
	GroupBy    string `json:"groupBy,omitempty"`
	ValueField string `json:"valueField,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type Output struct {
	ReportID string             `json:"reportId"`
	Archived bool               `json:"archived"`
	Summary  *analytics.Summary `json:"summary"`
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
			"groupBy":    {Type: "string", Description: "Canonical field to rank by, topPerformer only"},
			"valueField": {Type: "string", Description: "Canonical numeric field to sum, topPerformer only"},
			"limit":      {Type: "integer", Minimum: validation.Float(0)},
		},
		AdditionalProperties: false,
	}
}
