// internal/workers/inventory/fetch-exchange-rate/models.go
package fetchexchangerate

import (
	"time"

	"inventory-workers/internal/common/validation"
)

type Input struct {
	SessionID string `json:"sessionId"`
	// Refresh bypasses the cached rate.
	Refresh bool `json:"refresh,omitempty"`
}

const (
	SourceCache    = "cache"
	SourceProvider = "provider"
)

type Output struct {
	SessionID string    `json:"sessionId"`
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	Version   uint64    `json:"version"`
	AppliedAt time.Time `json:"appliedAt"`
}

type quote struct {
	Padi struct {
		Value interface{} `json:"value"`
	} `json:"padi"`
}

// quotations is the subset of the provider document the worker reads.
type quotations struct {
	Oficial *quote `json:"oficial"`
	BCV     *quote `json:"bcv"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"sessionId": {Type: "string", MaxLength: validation.Int(128)},
			"refresh":   {Type: "boolean"},
		},
		AdditionalProperties: false,
	}
}
