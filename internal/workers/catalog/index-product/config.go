// internal/workers/catalog/index-product/config.go
package indexproduct

import "time"

type Config struct {
	Timeout   time.Duration
	IndexName string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   15 * time.Second,
		IndexName: "products",
	}
}
