// internal/workers/review/route-manual-review/models.go
package routemanualreview

// Input names the product to queue for review. Blocking usually comes
// straight from the scoring step's output variables; when empty the
// persisted manual_review_reasons column is used instead.
type Input struct {
	ProductDetailID int64    `json:"productDetailId"`
	Blocking        []string `json:"blocking,omitempty"`
}

// Output reports whether a review was queued. ReviewQueued false means
// the product is not flagged and there was nothing to route.
type Output struct {
	ProductDetailID int64    `json:"productDetailId"`
	ReviewQueued    bool     `json:"reviewQueued"`
	Reasons         []string `json:"reasons,omitempty"`
	NotificationID  string   `json:"notificationId,omitempty"`
}
