// internal/workers/review/send-review-digest/config.go
package sendreviewdigest

import "time"

type Config struct {
	Timeout    time.Duration
	FromEmail  string
	Recipients []string
	// MaxItems bounds one digest; the oldest pending rows go first.
	MaxItems int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		MaxItems: 50,
	}
}
