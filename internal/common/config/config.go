// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Catalog  CatalogConfig           `mapstructure:"catalog"`
	Keywords KeywordsConfig          `mapstructure:"keywords"`
	Scoring  ScoringConfig           `mapstructure:"scoring"`
	Search   SearchConfig            `mapstructure:"search"`
	Review   ReviewConfig            `mapstructure:"review"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// TracingEndpoint is the Jaeger collector URL. Empty disables tracing.
	TracingEndpoint string `mapstructure:"tracing_endpoint"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
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

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
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

// --- Specific Configuration Sections ---

// CatalogConfig holds settings for the external product catalog API.
type CatalogConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Timeout      int    `mapstructure:"timeout"`   // milliseconds
	PageSize     int    `mapstructure:"page_size"` // list endpoint pagination
}

// KeywordsConfig holds settings for the keyword table registry.
type KeywordsConfig struct {
	// TablePath points at a JSON keyword-table override. Empty means
	// the compiled-in tables are used.
	TablePath string `mapstructure:"table_path"`
}

// ScoringConfig holds settings for the scoring workers.
type ScoringConfig struct {
	// ProcessorVersion is stamped onto every processed row; defaults to
	// the keyword library version when empty.
	ProcessorVersion string `mapstructure:"processor_version"`
	// ForceRecompute lets calculate-base-score overwrite scores that
	// were already persisted.
	ForceRecompute bool `mapstructure:"force_recompute"`
	// AttributeCacheTTL is the Redis read-through cache TTL in seconds.
	AttributeCacheTTL int `mapstructure:"attribute_cache_ttl"`
	// BatchConcurrency bounds the reprocess-products worker pool.
	BatchConcurrency int `mapstructure:"batch_concurrency"`
	// BatchProgressTTL is the Redis batch progress hash TTL in seconds.
	BatchProgressTTL int `mapstructure:"batch_progress_ttl"`
}

// SearchConfig holds settings for the product search index.
type SearchConfig struct {
	ProductIndex string `mapstructure:"product_index"`
	MaxPageSize  int    `mapstructure:"max_page_size"`
}

// ReviewConfig holds settings for the manual-review workers.
type ReviewConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled    bool     `mapstructure:"enabled"`
		FromEmail  string   `mapstructure:"from_email"`
		Recipients []string `mapstructure:"recipients"`
	} `mapstructure:"ses"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
