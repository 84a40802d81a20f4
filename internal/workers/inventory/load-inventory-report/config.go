// internal/workers/inventory/load-inventory-report/config.go
package loadinventoryreport

import (
	"time"

	"inventory-workers/internal/inventory/store"
)

type Config struct {
	Timeout time.Duration
	// DefaultSession is read when the job names no session.
	DefaultSession string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		DefaultSession: store.DefaultSession,
	}
}
