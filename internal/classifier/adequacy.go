// internal/classifier/adequacy.go
package classifier

import (
	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

// adequacyPriority puts the negative variant first. "not complete and
// balanced" contains the positive phrase, so both variants score 1.0
// on a disclaimer; the tie must go to No.
var adequacyPriority = []string{
	string(models.AdequateNo),
	string(models.AdequateYes),
}

// AdequacyClassifier decides whether the food claims to be a complete
// diet or only an intermittent/supplemental one.
type AdequacyClassifier struct {
	g *genericClassifier
}

func NewAdequacyClassifier(lib *keywords.Library) *AdequacyClassifier {
	return &AdequacyClassifier{
		g: newGenericClassifier("nutritional adequacy", lib.Adequacy, adequacyPriority,
			string(models.AdequateOther), false),
	}
}

// Classify scans the fields where AAFCO statements live. Partial
// matching stays off here: "complete" and "balanced" appearing in
// unrelated sentences is not an adequacy claim.
func (c *AdequacyClassifier) Classify(text models.ProductText) models.ClassificationResult {
	combined := CombineFields(text.Details, text.MoreDetails, text.Specifications,
		text.GuaranteedAnalysis, text.FeedingInstructions)
	return c.g.classify(combined)
}
