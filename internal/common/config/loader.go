// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top of it, and lets environment variables win over both.
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// CATALOG_CLIENT_ID style variables map onto catalog.client_id keys.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	viper.SetConfigName("config." + env)
	_ = viper.MergeInConfig() // the per-environment overlay is optional

	return finalize(viper.GetViper())
}

// LoadFromFile reads one explicit config file, skipping the search paths
// and the per-environment overlay.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(viper.GetViper())
}

// finalize is the shared tail of both load paths: placeholder expansion,
// unmarshal, defaults, env fallbacks and validation.
func finalize(v *viper.Viper) (*Config, error) {
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

// loadEnvFile tries .env from several locations so workers, tools and the
// e2e suite can all run from their own directories.
func loadEnvFile() {
	candidates := []string{".env", "../.env", "../../.env", "../../../.env"}
	if root := findProjectRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}

	for _, path := range candidates {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("✅ Loaded .env from: %s\n", path)
			return
		}
	}

	fmt.Printf("⚠️  .env file not found in any location, using system environment variables\n")
}

// findProjectRoot walks up from the working directory until it sees go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for prev := ""; dir != prev; prev, dir = dir, filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in YAML values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok || !strings.Contains(s, "$") {
			continue
		}
		if expanded := os.ExpandEnv(s); expanded != s && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

func envFallback(dst *string, envKey string) {
	if *dst == "" {
		if val := os.Getenv(envKey); val != "" {
			*dst = val
		}
	}
}

// overrideEmptyConfig covers values that arrive neither through YAML nor
// through viper's key mapping, secrets injected as plain env vars mostly.
func overrideEmptyConfig(cfg *Config) {
	envFallback(&cfg.Catalog.ClientID, "CATALOG_CLIENT_ID")
	envFallback(&cfg.Catalog.ClientSecret, "CATALOG_CLIENT_SECRET")
	envFallback(&cfg.Catalog.BaseURL, "CATALOG_BASE_URL")

	envFallback(&cfg.Review.SNS.TopicARN, "REVIEW_SNS_TOPIC_ARN")
	envFallback(&cfg.Review.SES.FromEmail, "REVIEW_SES_FROM_EMAIL")

	envFallback(&cfg.Database.Postgres.User, "DB_USER")
	envFallback(&cfg.Database.Postgres.Password, "DB_PASSWORD")
}

func defaultInt(p *int, v int) {
	if *p == 0 {
		*p = v
	}
}

func defaultString(p *string, v string) {
	if *p == "" {
		*p = v
	}
}

// applyDefaults fills optional fields so keys absent from the YAML do not
// turn into zero timeouts or empty index names downstream.
func applyDefaults(cfg *Config) {
	defaultInt(&cfg.Camunda.MaxJobsActive, 10)
	defaultInt(&cfg.Camunda.Timeout, 30000)
	defaultInt(&cfg.Camunda.RequestTimeout, 30000)

	defaultInt(&cfg.Database.Postgres.MaxConnections, 25)
	defaultInt(&cfg.Database.Postgres.MaxIdle, 5)
	defaultString(&cfg.Database.Postgres.SSLMode, "disable")

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	defaultString(&cfg.Logging.Level, "info")
	defaultString(&cfg.Logging.Format, "json")
	defaultString(&cfg.Logging.Output, "stdout")

	for key, worker := range cfg.Workers {
		defaultInt(&worker.MaxJobsActive, 5)
		defaultInt(&worker.Timeout, 30000)
		defaultInt(&worker.MaxRetries, 3)
		cfg.Workers[key] = worker
	}

	defaultInt(&cfg.Catalog.Timeout, 15000)
	defaultInt(&cfg.Catalog.PageSize, 200)

	defaultInt(&cfg.Scoring.AttributeCacheTTL, 900) // 15 minutes
	defaultInt(&cfg.Scoring.BatchConcurrency, 8)
	defaultInt(&cfg.Scoring.BatchProgressTTL, 86400) // 24 hours

	defaultString(&cfg.Search.ProductIndex, "products")
	defaultInt(&cfg.Search.MaxPageSize, 100)
}

// validateConfig rejects configs that would otherwise fail later at dial
// time, reporting every missing field at once.
func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.Camunda.BrokerAddress == "" {
		errs = append(errs, errors.New("camunda.broker_address is required"))
	}
	if cfg.Database.Postgres.Host == "" {
		errs = append(errs, errors.New("database.postgres.host is required"))
	}
	if cfg.Database.Postgres.Database == "" {
		errs = append(errs, errors.New("database.postgres.database is required"))
	}
	if cfg.Database.Postgres.User == "" {
		errs = append(errs, errors.New("database.postgres.user is required"))
	}
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL == "" {
		errs = append(errs, errors.New("database.elasticsearch.addresses or url is required"))
	}
	if cfg.Database.Redis.Address == "" {
		errs = append(errs, errors.New("database.redis.address is required"))
	}

	return errors.Join(errs...)
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the worker's config block, or stock defaults
// when the worker has no entry in the file.
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

// IsWorkerEnabled reports whether a worker should be started. Workers
// absent from the file default to on.
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
