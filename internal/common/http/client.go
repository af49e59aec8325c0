// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is the outbound transport for external API calls. Callers build
// requests with http.NewRequestWithContext; Timeout is the hard cap on
// top of whatever deadline the request context carries.
type Client struct {
	httpClient *http.Client
}

// NewClient builds the client with a raised per-host idle pool; the
// catalog listing pages repeatedly against a single host.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// IsTransientStatus reports whether a failed call is worth retrying.
func IsTransientStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
