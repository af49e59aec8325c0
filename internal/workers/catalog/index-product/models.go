// internal/workers/catalog/index-product/models.go
package indexproduct

import "time"

// Input selects the product to index. IndexName overrides the
// configured default when set.
type Input struct {
	ProductDetailID int64  `json:"productDetailId"`
	IndexName       string `json:"indexName,omitempty"`
}

// ProductDocument is the searchable summary written to Elasticsearch.
// Raw catalog text stays in Postgres; the index carries only what
// search needs to match, filter and rank.
type ProductDocument struct {
	ProductDetailID       int64     `json:"productDetailId"`
	ProductID             int64     `json:"productId"`
	Name                  string    `json:"name"`
	Category              string    `json:"category,omitempty"`
	Brand                 string    `json:"brand,omitempty"`
	Ingredients           string    `json:"ingredients,omitempty"`
	FoodCategory          string    `json:"foodCategory,omitempty"`
	SourcingIntegrity     string    `json:"sourcingIntegrity,omitempty"`
	ProcessingMethod      string    `json:"processingMethod,omitempty"`
	NutritionallyAdequate string    `json:"nutritionallyAdequate,omitempty"`
	BaseScore             *float64  `json:"baseScore,omitempty"`
	ScoreBucket           string    `json:"scoreBucket,omitempty"`
	Grade                 string    `json:"grade,omitempty"`
	NeedsManualReview     bool      `json:"needsManualReview"`
	ProcessorVersion      string    `json:"processorVersion,omitempty"`
	IndexedAt             time.Time `json:"indexedAt"`
}

type Output struct {
	ProductDetailID int64  `json:"productDetailId"`
	IndexName       string `json:"indexName"`
	DocumentID      string `json:"documentId"`
	Result          string `json:"result"`
}
