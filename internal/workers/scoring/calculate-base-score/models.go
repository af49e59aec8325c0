// internal/workers/scoring/calculate-base-score/models.go
package calculatebasescore

// Input identifies the product to score. Force overwrites a score that
// is already persisted; without it the write is at-most-once.
type Input struct {
	ProductDetailID int64 `json:"productDetailId"`
	Force           bool  `json:"force,omitempty"`
}

// Output reports the scoring outcome. ScoreAvailable false means a
// blocking factor withheld the score; Blocking then lists every reason
// and the product is flagged for manual review. AlreadyScored means the
// update-if-null guard left an earlier score in place, and BaseScore
// carries that persisted value.
type Output struct {
	ProductDetailID int64              `json:"productDetailId"`
	ScoreAvailable  bool               `json:"scoreAvailable"`
	BaseScore       *float64           `json:"baseScore,omitempty"`
	Deductions      map[string]float64 `json:"deductions,omitempty"`
	Bonus           float64            `json:"bonus,omitempty"`
	Blocking        []string           `json:"blocking,omitempty"`
	NeedsReview     bool               `json:"needsReview"`
	AlreadyScored   bool               `json:"alreadyScored,omitempty"`
}
