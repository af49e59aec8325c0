// internal/workers/scoring/calculate-base-score/config.go
package calculatebasescore

import "time"

type Config struct {
	Timeout time.Duration
	// CacheTTL bounds the Redis attribute snapshot kept by the
	// read-through loader.
	CacheTTL time.Duration
	// ForceRecompute overwrites persisted scores on every job, as if
	// each one carried force=true.
	ForceRecompute bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		CacheTTL: 15 * time.Minute,
	}
}
