// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Inventory     InventoryConfig         `mapstructure:"inventory"`
	RateProvider  RateProviderConfig      `mapstructure:"rate_provider"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Inventory Engine ---

// InventoryConfig tunes schema mapping, matching and disclosure.
type InventoryConfig struct {
	DefaultSession    string              `mapstructure:"default_session"`
	DefaultRate       float64             `mapstructure:"default_rate"`
	Thresholds        ThresholdConfig     `mapstructure:"thresholds"`
	UnparseableExpiry string              `mapstructure:"unparseable_expiry"` // not_expired | expired
	RequiredFields    []string            `mapstructure:"required_fields"`
	Synonyms          map[string][]string `mapstructure:"synonyms"` // canonical field -> extra aliases
	FillerPhrases     []string            `mapstructure:"filler_phrases"`
	Suggestions       int                 `mapstructure:"suggestions"`
	DedupeTTL         int                 `mapstructure:"dedupe_ttl"` // seconds
}

type ThresholdConfig struct {
	Typed    float64 `mapstructure:"typed"`
	Informal float64 `mapstructure:"informal"`
}

// RateProviderConfig points at the public quotations API used by fetch-exchange-rate.
type RateProviderConfig struct {
	URL       string `mapstructure:"url"`
	Timeout   int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL  int    `mapstructure:"cache_ttl"` // seconds
	UserAgent string `mapstructure:"user_agent"`
}

// NotificationConfig holds settings for the send-stock-alert worker.
type NotificationConfig struct {
	Email struct {
		Enabled    bool     `mapstructure:"enabled"`
		FromEmail  string   `mapstructure:"from_email"`
		Recipients []string `mapstructure:"recipients"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled      bool     `mapstructure:"enabled"`
		PhoneNumbers []string `mapstructure:"phone_numbers"`
		SenderID     string   `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type ObservabilityConfig struct {
	MetricsPort   int     `mapstructure:"metrics_port"`
	TraceSampling float64 `mapstructure:"trace_sampling"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
