// internal/workers/classification/reprocess-products/config.go
package reprocessproducts

import "time"

type Config struct {
	// Timeout covers the whole batch, not one record.
	Timeout time.Duration
	// Concurrency bounds the classification worker pool.
	Concurrency int
	// ProgressTTL is how long the batch progress hash survives in
	// Redis after its last update.
	ProgressTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Minute,
		Concurrency: 8,
		ProgressTTL: 24 * time.Hour,
	}
}
