// internal/workers/catalog/search-products/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

const (
	defaultPageSize = 20
	hardMaxPageSize = 100
)

type QueryResult struct {
	Data      []map[string]interface{}
	TotalHits int64
	MaxScore  float64
	Took      int64
}

// Execute clamps pagination, runs the query and flattens hit sources.
func Execute(ctx context.Context, esClient *elasticsearch.Client, eq ProductQuery) (*QueryResult, error) {
	maxSize := eq.MaxPageSize
	if maxSize <= 0 || maxSize > hardMaxPageSize {
		maxSize = hardMaxPageSize
	}
	if eq.Pagination.Size < 1 {
		eq.Pagination.Size = defaultPageSize
	}
	if eq.Pagination.Size > maxSize {
		eq.Pagination.Size = maxSize
	}
	if eq.Pagination.From < 0 {
		eq.Pagination.From = 0
	}

	req, err := BuildQuery(eq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrMissingIndex, eq.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			MaxScore *float64 `json:"max_score"`
			Hits     []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	var data []map[string]interface{}
	for _, hit := range r.Hits.Hits {
		data = append(data, hit.Source)
	}

	maxScore := 0.0
	if r.Hits.MaxScore != nil {
		maxScore = *r.Hits.MaxScore
	}

	return &QueryResult{
		Data:      data,
		TotalHits: r.Hits.Total.Value,
		MaxScore:  maxScore,
		Took:      time.Since(start).Milliseconds(),
	}, nil
}
