// internal/workers/catalog/search-products/queries/builders_test.go
package queries

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productQuery(queryType string, filters map[string]interface{}) ProductQuery {
	eq := ProductQuery{
		Index:     "products",
		QueryType: queryType,
		Filters:   filters,
	}
	eq.Pagination.Size = 20
	return eq
}

func buildAndDecode(t *testing.T, eq ProductQuery) map[string]interface{} {
	t.Helper()
	req, err := BuildQuery(eq)
	require.NoError(t, err)
	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

// dig walks nested objects, failing the test when a level is missing.
func dig(t *testing.T, root interface{}, keys ...string) interface{} {
	t.Helper()
	current := root
	for _, key := range keys {
		node, ok := current.(map[string]interface{})
		require.True(t, ok, "expected object before key %q", key)
		current = node[key]
	}
	return current
}

func TestBuildQuery_RequiresIndex(t *testing.T) {
	eq := productQuery(TypeProductSearch, nil)
	eq.Index = ""

	_, err := BuildQuery(eq)
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestBuildQuery_UnknownType(t *testing.T) {
	_, err := BuildQuery(productQuery("drop_tables", nil))
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestProductSearch_KeywordsUseMultiMatch(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeProductSearch, map[string]interface{}{
		"keywords": "salmon grain free",
	}))

	must := dig(t, body, "query", "bool", "must").([]interface{})
	require.Len(t, must, 1)

	multiMatch := dig(t, must[0], "multi_match")
	assert.Equal(t, "salmon grain free", dig(t, multiMatch, "query"))

	fields := dig(t, multiMatch, "fields").([]interface{})
	assert.Contains(t, fields, "name^3")
	assert.Contains(t, fields, "brand^2")
	assert.Contains(t, fields, "ingredients")
}

func TestProductSearch_MatchAllWithoutKeywords(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeProductSearch, nil))

	must := dig(t, body, "query", "bool", "must").([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")
}

func TestProductSearch_TermFiltersInFixedOrder(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeProductSearch, map[string]interface{}{
		"brand":        "Vital Essentials",
		"foodCategory": "Raw",
	}))

	filters := dig(t, body, "query", "bool", "filter").([]interface{})
	require.Len(t, filters, 2)
	assert.Equal(t, "Raw", dig(t, filters[0], "term", "foodCategory"))
	assert.Equal(t, "Vital Essentials", dig(t, filters[1], "term", "brand"))
}

func TestProductSearch_ScoreRange(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeProductSearch, map[string]interface{}{
		"scoreRange": map[string]interface{}{"min": 70, "max": 90.0},
	}))

	filters := dig(t, body, "query", "bool", "filter").([]interface{})
	require.Len(t, filters, 1)
	assert.Equal(t, 70.0, dig(t, filters[0], "range", "baseScore", "gte"))
	assert.Equal(t, 90.0, dig(t, filters[0], "range", "baseScore", "lte"))
}

func TestProductSearch_ScoreRangeHalfOpen(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeProductSearch, map[string]interface{}{
		"scoreRange": map[string]interface{}{"min": 50},
	}))

	filters := dig(t, body, "query", "bool", "filter").([]interface{})
	require.Len(t, filters, 1)
	bounds := dig(t, filters[0], "range", "baseScore").(map[string]interface{})
	assert.Equal(t, 50.0, bounds["gte"])
	assert.NotContains(t, bounds, "lte")
}

func TestProductSearch_ScoreRangeRejectsBadShape(t *testing.T) {
	_, err := BuildQuery(productQuery(TypeProductSearch, map[string]interface{}{
		"scoreRange": "70-90",
	}))
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestProductSearch_ScoreRangeRejectsInvertedBounds(t *testing.T) {
	_, err := BuildQuery(productQuery(TypeProductSearch, map[string]interface{}{
		"scoreRange": map[string]interface{}{"min": 90, "max": 70},
	}))
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestProductSearch_NeedsManualReviewFilter(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeProductSearch, map[string]interface{}{
		"needsManualReview": true,
	}))

	filters := dig(t, body, "query", "bool", "filter").([]interface{})
	require.Len(t, filters, 1)
	assert.Equal(t, true, dig(t, filters[0], "term", "needsManualReview"))
}

func TestProductSearch_SortByScore(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeProductSearch, map[string]interface{}{
		"sortBy": "baseScore",
	}))

	sort := body["sort"].([]interface{})
	require.Len(t, sort, 1)
	assert.Equal(t, "desc", dig(t, sort[0], "baseScore"))
}

func TestSimilarProducts_MoreLikeThisSeededByID(t *testing.T) {
	eq := productQuery(TypeSimilarProducts, nil)
	eq.ProductDetailID = "42"

	body := buildAndDecode(t, eq)
	mlt := dig(t, body, "query", "more_like_this")
	like := dig(t, mlt, "like").([]interface{})
	require.Len(t, like, 1)
	assert.Equal(t, "42", dig(t, like[0], "_id"))
	assert.Equal(t, "products", dig(t, like[0], "_index"))
}

func TestSimilarProducts_WithoutSeedMatchesNothing(t *testing.T) {
	body := buildAndDecode(t, productQuery(TypeSimilarProducts, nil))
	assert.Contains(t, dig(t, body, "query"), "match_none")
}
