// internal/workers/inventory/set-exchange-rate/config.go
package setexchangerate

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}
