// internal/common/catalog/client.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"petfood-workers/internal/common/config"
	"petfood-workers/internal/common/errors"
	commonhttp "petfood-workers/internal/common/http"
)

// Client talks to the external product catalog API using the client
// credentials flow. Tokens are cached until expiry and refreshed once
// on a 401 before the request is failed.
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	pageSize     int
	httpClient   *commonhttp.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Product is the raw catalog payload for a single product detail page.
// Every text field is optional on the catalog side.
type Product struct {
	ID                     int64  `json:"id"`
	ProductID              int64  `json:"productId"`
	Name                   string `json:"name"`
	Category               string `json:"category"`
	URL                    string `json:"url,omitempty"`
	ImageURL               string `json:"imageUrl,omitempty"`
	Price                  string `json:"price,omitempty"`
	Size                   string `json:"size,omitempty"`
	Details                string `json:"details,omitempty"`
	MoreDetails            string `json:"moreDetails,omitempty"`
	Specifications         string `json:"specifications,omitempty"`
	Ingredients            string `json:"ingredients,omitempty"`
	CaloricContent         string `json:"caloricContent,omitempty"`
	GuaranteedAnalysis     string `json:"guaranteedAnalysis,omitempty"`
	FeedingInstructions    string `json:"feedingInstructions,omitempty"`
	TransitionInstructions string `json:"transitionInstructions,omitempty"`
}

// TokenResponse holds the response from the catalog's token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type productPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}

// NewClient creates a catalog API client from configuration.
func NewClient(cfg config.CatalogConfig) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		pageSize:     cfg.PageSize,
		httpClient:   commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

// getAccessToken fetches a new access token using the client credentials flow.
// It caches the token until expiry.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokenExpiry.After(time.Now()) && c.accessToken != "" {
		return c.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("catalog token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return c.accessToken, nil
}

// invalidateToken drops the cached token so the next request refreshes it.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// doGet performs an authenticated GET. A 401 invalidates the cached
// token and retries exactly once with a fresh one.
func (c *Client) doGet(ctx context.Context, requestURL string) (*http.Response, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.getAccessToken(ctx)
		if err != nil {
			return nil, errors.NewCatalogAuthFailedError(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, errors.NewCatalogUnavailableError(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, errors.NewCatalogTimeoutError()
			}
			return nil, errors.NewCatalogUnavailableError(err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.invalidateToken()
			continue
		}
		return resp, nil
	}
	return nil, errors.NewCatalogAuthFailedError(fmt.Errorf("unauthorized after token refresh"))
}

// GetProduct retrieves one product's raw text fields by detail ID.
func (c *Client) GetProduct(ctx context.Context, productDetailID int64) (*Product, error) {
	requestURL := fmt.Sprintf("%s/products/%d", c.baseURL, productDetailID)

	resp, err := c.doGet(ctx, requestURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NewProductNotFoundError(productDetailID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeCatalogUnavailable,
			Message:   "Catalog API error during product retrieval",
			Details:   fmt.Sprintf("status: %d, body: %s", resp.StatusCode, string(body)),
			Retryable: commonhttp.IsTransientStatus(resp.StatusCode),
			Timestamp: time.Now().UTC(),
		}
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, &errors.StandardError{
			Code:      errors.ErrCodeCatalogUnavailable,
			Message:   "Failed to decode catalog product payload",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	}

	return &product, nil
}

// ListProductIDs pages through the catalog and returns every product
// detail ID. The last page is detected by a short item count.
func (c *Client) ListProductIDs(ctx context.Context) ([]int64, error) {
	var ids []int64

	for page := 1; ; page++ {
		requestURL := fmt.Sprintf("%s/products?page=%d&pageSize=%d", c.baseURL, page, c.pageSize)

		resp, err := c.doGet(ctx, requestURL)
		if err != nil {
			return nil, err
		}

		var body productPage
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &errors.StandardError{
				Code:      errors.ErrCodeCatalogUnavailable,
				Message:   "Catalog API error during product listing",
				Details:   fmt.Sprintf("status: %d, page: %d", resp.StatusCode, page),
				Retryable: commonhttp.IsTransientStatus(resp.StatusCode),
				Timestamp: time.Now().UTC(),
			}
		}
		if decodeErr != nil {
			return nil, &errors.StandardError{
				Code:      errors.ErrCodeCatalogUnavailable,
				Message:   "Failed to decode catalog product listing",
				Details:   decodeErr.Error(),
				Retryable: false,
				Timestamp: time.Now().UTC(),
			}
		}

		for _, item := range body.Items {
			ids = append(ids, item.ID)
		}
		if len(body.Items) < c.pageSize {
			return ids, nil
		}
	}
}
