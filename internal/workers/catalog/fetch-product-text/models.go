// internal/workers/catalog/fetch-product-text/models.go
package fetchproducttext

import "petfood-workers/internal/models"

// Input identifies the catalog product detail page to fetch.
type Input struct {
	ProductDetailID int64 `json:"productDetailId"`
}

// Output carries the stored text forward so a downstream classify step
// can run on the process payload without another database read.
type Output struct {
	ProductDetailID int64              `json:"productDetailId"`
	ProductID       int64              `json:"productId"`
	Product         models.ProductText `json:"product"`
}
