// internal/workers/review/route-manual-review/config.go
package routemanualreview

import "time"

type Config struct {
	Timeout time.Duration
	// TopicARN is the SNS topic notified per queued review. Empty
	// disables publishing; the queue row is still written.
	TopicARN string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
