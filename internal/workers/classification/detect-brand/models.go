// internal/workers/classification/detect-brand/models.go
package detectbrand

import "petfood-workers/internal/models"

type Input struct {
	ProductDetailID int64               `json:"productDetailId"`
	Product         *models.ProductText `json:"product,omitempty"`
}

type Output struct {
	ProductDetailID  int64                 `json:"productDetailId"`
	Detection        models.BrandDetection `json:"detection"`
	ProcessorVersion string                `json:"processorVersion"`
}
