// internal/workers/inventory/query-inventory/models.go
package queryinventory

import (
	"inventory-workers/internal/common/validation"
	"inventory-workers/internal/inventory/engine"
)

type Input struct {
	SessionID string   `json:"sessionId"`
	Question  string   `json:"question"`
	Role      string   `json:"role"`
	Rate      *float64 `json:"rate,omitempty"`
	Source    string   `json:"source,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// Output is the dispatched result: an answer, a summary, or an acknowledged intent.
type Output struct {
	engine.AskResult
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"question"},
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MaxLength: validation.Int(128)},
			"question": {
				Type:        "string",
				Description: "Free-text question as typed, dictated or scanned",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(1000),
			},
			"role": {
				Type:        "string",
				Description: "Caller role; defaults to public",
			},
			"rate": {
				Type:        "number",
				Description: "Exchange rate hint for this answer",
				Minimum:     validation.Float(0),
			},
			"source": {
				Type: "string",
				Enum: []string{"typed", "voice", "ocr"},
			},
			"threshold": {
				Type:    "number",
				Minimum: validation.Float(0),
				Maximum: validation.Float(100),
			},
		},
		AdditionalProperties: false,
	}
}
