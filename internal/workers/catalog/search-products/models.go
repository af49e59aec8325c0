// internal/workers/catalog/search-products/models.go
package searchproducts

// Input describes one search over the product index. IndexName and
// QueryType fall back to configured defaults when empty.
type Input struct {
	IndexName       string                 `json:"indexName,omitempty"`
	QueryType       string                 `json:"queryType,omitempty"`
	Filters         map[string]interface{} `json:"filters,omitempty"`
	ProductDetailID int64                  `json:"productDetailId,omitempty"`
	Pagination      Pagination             `json:"pagination,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
