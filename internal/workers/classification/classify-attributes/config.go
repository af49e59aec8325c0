// internal/workers/classification/classify-attributes/config.go
package classifyattributes

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
