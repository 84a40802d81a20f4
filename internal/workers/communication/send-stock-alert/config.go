// internal/workers/communication/send-stock-alert/config.go
package sendstockalert

import (
	"fmt"
	"time"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	Recipients   []string
	PhoneNumbers []string
	SenderID     string
	AWSRegion    string
	Timeout      time.Duration
	// DedupeTTL suppresses resending an identical alert for the same session.
	DedupeTTL time.Duration
	// MaxLines caps the per-product lines listed in the email body.
	MaxLines int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   10 * time.Second,
		DedupeTTL: 6 * time.Hour,
		MaxLines:  20,
	}
}

func (c *Config) Validate() error {
	if c.EmailEnabled && c.FromEmail == "" {
		return fmt.Errorf("from_email is required when email is enabled")
	}
	if c.MaxLines < 0 {
		return fmt.Errorf("max_lines must not be negative")
	}
	return nil
}
