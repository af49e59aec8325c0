// internal/workers/classification/reprocess-products/models.go
package reprocessproducts

import "petfood-workers/internal/models"

// Selection modes. An explicit ID list always wins over Mode.
const (
	ModeAll         = "all"
	ModeUnprocessed = "unprocessed"
	ModeExplicit    = "explicit"
)

// Input selects which products to push back through the full pipeline.
// With no mode and no IDs the batch covers unprocessed products only.
type Input struct {
	Mode             string  `json:"mode,omitempty"`
	ProductDetailIDs []int64 `json:"productDetailIds,omitempty"`
	// Concurrency overrides the configured pool size for this batch.
	Concurrency int `json:"concurrency,omitempty"`
}

// Output is the batch report plus the selection mode that produced it.
type Output struct {
	models.BatchReport
	Mode string `json:"mode"`
}
