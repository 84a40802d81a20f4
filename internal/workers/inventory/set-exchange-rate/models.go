// internal/workers/inventory/set-exchange-rate/models.go
package setexchangerate

import (
	"time"

	"inventory-workers/internal/common/validation"
)

type Input struct {
	SessionID string  `json:"sessionId"`
	Role      string  `json:"role"`
	Rate      float64 `json:"rate"`
}

type Output struct {
	SessionID string    `json:"sessionId"`
	Rate      float64   `json:"rate"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"role", "rate"},
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MaxLength: validation.Int(128)},
			"role":      {Type: "string", MinLength: validation.Int(1)},
			"rate": {
				Type:        "number",
				Description: "BS per USD",
				Minimum:     validation.Float(0),
			},
		},
		AdditionalProperties: false,
	}
}
