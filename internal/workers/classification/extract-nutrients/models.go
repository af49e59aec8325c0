// internal/workers/classification/extract-nutrients/models.go
package extractnutrients

import "petfood-workers/internal/models"

// Input identifies the product. Product text may ride along inline;
// FoodCategory overrides the persisted classification for the carb
// derivation basis.
type Input struct {
	ProductDetailID int64               `json:"productDetailId"`
	Product         *models.ProductText `json:"product,omitempty"`
	FoodCategory    string              `json:"foodCategory,omitempty"`
}

// Output reports the extracted profile. CarbsAvailable is explicit so
// downstream gateways can branch on it without probing for a null.
type Output struct {
	ProductDetailID int64                  `json:"productDetailId"`
	FoodCategory    string                 `json:"foodCategory,omitempty"`
	Nutrients       models.NutrientProfile `json:"nutrients"`
	CarbsAvailable  bool                   `json:"carbsAvailable"`
}
