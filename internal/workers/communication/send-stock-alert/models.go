// internal/workers/communication/send-stock-alert/models.go
package sendstockalert

type Input struct {
	SessionID string `json:"sessionId"`
	// Priority "high" also sends SMS.
	Priority string `json:"priority,omitempty"`
	// Recipients overrides the configured email recipients.
	Recipients []string `json:"recipients,omitempty"`
}

type Output struct {
	AlertID       string `json:"alertId"`
	Status        string `json:"status"`
	ExpiredCount  int    `json:"expiredCount"`
	LowStockCount int    `json:"lowStockCount"`
	EmailsSent    int    `json:"emailsSent"`
	SMSSent       int    `json:"smsSent"`
	SentAt        string `json:"sentAt,omitempty"` // ISO 8601
}

const (
	StatusSent      = "sent"
	StatusNothing   = "nothing_to_report"
	StatusDuplicate = "duplicate"
	StatusDisabled  = "disabled"
)

const PriorityHigh = "high"
