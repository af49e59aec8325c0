// internal/workers/scoring/calculate-final-score/models.go
package calculatefinalscore

import "petfood-workers/internal/models"

// Input names the scored product and carries the caller's handling
// context. The context is request-scoped: it adjusts this response and
// is never stored.
type Input struct {
	ProductDetailID int64                  `json:"productDetailId"`
	Handling        models.HandlingContext `json:"handling"`
}

// Output is the full presentation payload: the dynamic breakdown over
// the persisted base score, the overall letter grade, and the
// per-factor micro-scores.
type Output struct {
	ProductDetailID int64                 `json:"productDetailId"`
	Breakdown       models.ScoreBreakdown `json:"breakdown"`
	Grade           models.LetterGrade    `json:"grade"`
	MicroScore      models.MicroScore     `json:"microScore"`
}
