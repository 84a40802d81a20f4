// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var canonicalFields = map[string]bool{
	"product": true, "saleprice": true, "cost": true, "currentstock": true, "minimumstock": true,
	"expirydate": true, "location": true, "salesperson": true, "total": true,
}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// INVENTORY_DEFAULT_RATE overrides inventory.default_rate
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

// LoadInventory reads only the inventory section of a config file. Tools
// that run the engine locally use it without broker or database settings.
func LoadInventory(path string) (*InventoryConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validateInventory(&cfg.Inventory); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg.Inventory, nil
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile tries the usual locations for a .env file.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // tests in test/e2e/
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory to the first go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets left empty after expansion from well-known variables.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.RateProvider.URL == "" {
		if val := os.Getenv("RATE_PROVIDER_URL"); val != "" {
			cfg.RateProvider.URL = val
		}
	}
	if cfg.Notifications.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.Notifications.AWS.Region = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "inventory-workers"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Inventory defaults
	if cfg.Inventory.DefaultSession == "" {
		cfg.Inventory.DefaultSession = "default"
	}
	if cfg.Inventory.DefaultRate == 0 {
		cfg.Inventory.DefaultRate = 54.50
	}
	if cfg.Inventory.Thresholds.Typed == 0 {
		cfg.Inventory.Thresholds.Typed = 70
	}
	if cfg.Inventory.Thresholds.Informal == 0 {
		cfg.Inventory.Thresholds.Informal = 60
	}
	if cfg.Inventory.UnparseableExpiry == "" {
		cfg.Inventory.UnparseableExpiry = "not_expired"
	}
	if cfg.Inventory.Suggestions == 0 {
		cfg.Inventory.Suggestions = 3
	}
	if cfg.Inventory.DedupeTTL == 0 {
		cfg.Inventory.DedupeTTL = 3600
	}

	// Rate provider defaults
	if cfg.RateProvider.URL == "" {
		cfg.RateProvider.URL = "https://api.dolarito.com/api/frontend/quotations"
	}
	if cfg.RateProvider.Timeout == 0 {
		cfg.RateProvider.Timeout = 5000
	}
	if cfg.RateProvider.CacheTTL == 0 {
		cfg.RateProvider.CacheTTL = 900
	}
	if cfg.RateProvider.UserAgent == "" {
		cfg.RateProvider.UserAgent = "Mozilla/5.0 (compatible; inventory-workers/1.0)"
	}

	if cfg.Observability.MetricsPort == 0 {
		cfg.Observability.MetricsPort = 9090
	}
	if cfg.Observability.TraceSampling == 0 {
		cfg.Observability.TraceSampling = 0.1
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	return validateInventory(&cfg.Inventory)
}

func validateInventory(inv *InventoryConfig) error {
	if inv.DefaultRate <= 0 {
		return fmt.Errorf("inventory.default_rate must be positive, got %v", inv.DefaultRate)
	}
	for name, t := range map[string]float64{"typed": inv.Thresholds.Typed, "informal": inv.Thresholds.Informal} {
		if t < 0 || t >= 100 {
			return fmt.Errorf("inventory.thresholds.%s must be in [0,100), got %v", name, t)
		}
	}
	switch inv.UnparseableExpiry {
	case "not_expired", "expired":
	default:
		return fmt.Errorf("inventory.unparseable_expiry must be not_expired or expired, got %q", inv.UnparseableExpiry)
	}
	for _, f := range inv.RequiredFields {
		if !canonicalFields[strings.ToLower(f)] {
			return fmt.Errorf("inventory.required_fields: unknown field %q", f)
		}
	}
	for f := range inv.Synonyms {
		if !canonicalFields[strings.ToLower(f)] {
			return fmt.Errorf("inventory.synonyms: unknown field %q", f)
		}
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
