// internal/workers/catalog/search-products/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrInvalidFilter    = errors.New("invalid filter format")
)

// Query type names accepted on the wire.
const (
	TypeProductSearch   = "product_search"
	TypeSimilarProducts = "similar_products"
)

// ProductQuery defines one search request against the product index.
type ProductQuery struct {
	Index           string
	QueryType       string
	Filters         map[string]interface{}
	ProductDetailID string
	MaxPageSize     int
	Pagination      struct {
		From int
		Size int
	}
}

// termFilters maps filter keys onto document keyword fields. Order is
// fixed so built queries are deterministic.
var termFilters = []struct {
	key   string
	field string
}{
	{"foodCategory", "foodCategory"},
	{"sourcingIntegrity", "sourcingIntegrity"},
	{"processingMethod", "processingMethod"},
	{"brand", "brand"},
	{"scoreBucket", "scoreBucket"},
	{"grade", "grade"},
}

// BuildQuery builds an Elasticsearch search request for the given
// query type and filters.
func BuildQuery(eq ProductQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var (
		queryBody map[string]interface{}
		err       error
	)

	switch eq.QueryType {
	case TypeProductSearch:
		queryBody, err = buildProductSearchQuery(eq)
	case TypeSimilarProducts:
		queryBody = buildSimilarProductsQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{eq.Index},
		Body:  strings.NewReader(string(body)),
		From:  &eq.Pagination.From,
		Size:  &eq.Pagination.Size,
	}

	return &req, nil
}

// buildProductSearchQuery builds the main product search dynamically
// from the supplied filters. Absent filters add no clauses.
func buildProductSearchQuery(eq ProductQuery) (map[string]interface{}, error) {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "brand^2", "ingredients", "category"},
				"type":   "best_fields",
			},
		})
	}

	for _, tf := range termFilters {
		if value, ok := eq.Filters[tf.key].(string); ok && value != "" {
			filterClauses = append(filterClauses, map[string]interface{}{
				"term": map[string]interface{}{tf.field: value},
			})
		}
	}

	if raw, exists := eq.Filters["scoreRange"]; exists {
		scoreRange, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: scoreRange must be an object", ErrInvalidFilter)
		}

		bounds := map[string]interface{}{}
		minVal, hasMin := toFloat(scoreRange["min"])
		maxVal, hasMax := toFloat(scoreRange["max"])
		if hasMin && hasMax && minVal > maxVal {
			return nil, fmt.Errorf("%w: scoreRange min %.1f exceeds max %.1f", ErrInvalidFilter, minVal, maxVal)
		}
		if hasMin {
			bounds["gte"] = minVal
		}
		if hasMax {
			bounds["lte"] = maxVal
		}
		if len(bounds) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"baseScore": bounds},
			})
		}
	}

	if needsReview, ok := eq.Filters["needsManualReview"].(bool); ok {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"needsManualReview": needsReview},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "baseScore":
			query["sort"] = []map[string]interface{}{{"baseScore": "desc"}}
		case "name":
			query["sort"] = []map[string]interface{}{{"name": "asc"}}
		}
	}

	return query, nil
}

// buildSimilarProductsQuery builds a "more like this" query seeded by
// an already-indexed product.
func buildSimilarProductsQuery(eq ProductQuery) map[string]interface{} {
	if eq.ProductDetailID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "brand", "ingredients"},
				"like": []map[string]interface{}{
					{"_index": eq.Index, "_id": eq.ProductDetailID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
