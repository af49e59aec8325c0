// internal/workers/classification/classify-attributes/models.go
package classifyattributes

import "petfood-workers/internal/models"

// Input carries the product to classify. Product is optional: when the
// process already fetched the text it rides along on the job variables,
// otherwise the worker loads the product_details row.
type Input struct {
	ProductDetailID int64               `json:"productDetailId"`
	Product         *models.ProductText `json:"product,omitempty"`
}

type AttributeResult struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

type ProcessingResult struct {
	Primary    string  `json:"primary"`
	Secondary  string  `json:"secondary,omitempty"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

type Output struct {
	ProductDetailID       int64            `json:"productDetailId"`
	FoodCategory          AttributeResult  `json:"foodCategory"`
	SourcingIntegrity     AttributeResult  `json:"sourcingIntegrity"`
	ProcessingMethod      ProcessingResult `json:"processingMethod"`
	NutritionallyAdequate AttributeResult  `json:"nutritionallyAdequate"`
	ProcessorVersion      string           `json:"processorVersion"`
}
