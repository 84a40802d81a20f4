// internal/workers/inventory/ingest-inventory/config.go
package ingestinventory

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// DedupeTTL is how long an identical upload for the same session is skipped.
	DedupeTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   60 * time.Second,
		DedupeTTL: time.Hour,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DedupeTTL < 0 {
		return fmt.Errorf("dedupe_ttl must not be negative")
	}
	return nil
}
