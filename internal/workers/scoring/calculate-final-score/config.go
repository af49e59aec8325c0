// internal/workers/scoring/calculate-final-score/config.go
package calculatefinalscore

import "time"

type Config struct {
	Timeout time.Duration
	// CacheTTL bounds the Redis attribute snapshot kept by the
	// read-through loader.
	CacheTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  15 * time.Second,
		CacheTTL: 15 * time.Minute,
	}
}
