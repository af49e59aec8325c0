// internal/workers/classification/analyze-ingredients/config.go
package analyzeingredients

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
