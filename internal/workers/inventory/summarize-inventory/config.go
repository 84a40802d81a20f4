// internal/workers/inventory/summarize-inventory/config.go
package summarizeinventory

import "time"

type Config struct {
	Timeout time.Duration
	// Archive controls whether summaries are written to inventory_reports.
	Archive bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Archive: true,
	}
}
