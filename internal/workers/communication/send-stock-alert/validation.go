// internal/workers/communication/send-stock-alert/validation.go
package sendstockalert

import "inventory-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"sessionId": {
				Type:      "string",
				MaxLength: validation.Int(128),
			},
			"priority": {
				Type:        "string",
				Description: "Alert priority; high also sends SMS",
				Enum:        []string{"high", "normal", "low"},
			},
			"recipients": {
				Type:        "array",
				Description: "Email addresses overriding the configured recipients",
				Items:       &validation.Property{Type: "string", MaxLength: validation.Int(255)},
			},
		},
		AdditionalProperties: false,
	}
}

// validRecipients drops malformed addresses.
func validRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if validation.ValidateEmail(r) {
			out = append(out, r)
		}
	}
	return out
}

func validPhones(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if validation.ValidatePhone(p) {
			out = append(out, p)
		}
	}
	return out
}
