// internal/workers/catalog/search-products/config.go
package searchproducts

import "time"

type Config struct {
	Timeout     time.Duration
	IndexName   string
	MaxPageSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		IndexName:   "products",
		MaxPageSize: 100,
	}
}
