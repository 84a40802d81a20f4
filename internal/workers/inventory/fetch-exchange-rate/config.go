// internal/workers/inventory/fetch-exchange-rate/config.go
package fetchexchangerate

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// ProviderURL returns the quotations document.
	ProviderURL     string
	ProviderTimeout time.Duration
	UserAgent       string
	CacheTTL        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         15 * time.Second,
		ProviderURL:     "https://api.dolarito.com/api/frontend/quotations",
		ProviderTimeout: 10 * time.Second,
		CacheTTL:        15 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.ProviderURL == "" {
		return fmt.Errorf("provider url is required")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}
	return nil
}
