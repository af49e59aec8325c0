// internal/workers/catalog/fetch-product-text/config.go
package fetchproducttext

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
