// internal/workers/classification/extract-nutrients/config.go
package extractnutrients

import "time"

type Config struct {
	Timeout          time.Duration
	ProcessorVersion string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
