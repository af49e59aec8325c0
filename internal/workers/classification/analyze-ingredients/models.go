// internal/workers/classification/analyze-ingredients/models.go
package analyzeingredients

import "petfood-workers/internal/models"

// Input identifies the product to analyze. Ingredients may ride along
// inline; when empty the worker loads the product_details row.
type Input struct {
	ProductDetailID int64  `json:"productDetailId"`
	Ingredients     string `json:"ingredients,omitempty"`
}

type Output struct {
	ProductDetailID  int64                     `json:"productDetailId"`
	Analysis         models.IngredientAnalysis `json:"analysis"`
	ProcessorVersion string                    `json:"processorVersion"`
}
