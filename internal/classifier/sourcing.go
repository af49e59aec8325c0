// internal/classifier/sourcing.go
package classifier

import (
	"fmt"
	"strings"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

// SourcingClassifier grades ingredient sourcing. It cannot be a plain
// generic contest because the organic-premium variant is compound:
// it requires independent human-grade evidence AND organic evidence.
// A lone "USDA organic" badge is not human grade, and "human grade
// ingredients" alone is not organic.
type SourcingClassifier struct {
	g          *genericClassifier
	organic    variantSet
	humanGrade variantSet
	feedGrade  variantSet
}

func NewSourcingClassifier(lib *keywords.Library) *SourcingClassifier {
	c := &SourcingClassifier{
		g: newGenericClassifier("sourcing integrity", lib.Sourcing,
			[]string{
				string(models.SourcingHumanGradeOrganic),
				string(models.SourcingHumanGrade),
				string(models.SourcingFeedGrade),
			},
			string(models.SourcingOther), true),
	}
	for _, v := range c.g.variants {
		switch v.name {
		case string(models.SourcingHumanGradeOrganic):
			c.organic = v
		case string(models.SourcingHumanGrade):
			c.humanGrade = v
		case string(models.SourcingFeedGrade):
			c.feedGrade = v
		}
	}
	return c
}

// Classify scans the descriptive fields plus the ingredient list;
// sourcing claims commonly live inside the list itself ("organic
// chicken", "chicken by-product meal").
func (c *SourcingClassifier) Classify(text models.ProductText) models.ClassificationResult {
	combined := CombineFields(text.Name, text.Details, text.MoreDetails, text.Specifications, text.Ingredients)
	if combined == "" {
		return models.ClassificationResult{
			Category:   string(models.SourcingOther),
			Confidence: ConfidenceDefault,
			Reason:     "No text available for sourcing integrity classification",
		}
	}

	organic := c.g.scoreVariant(combined, c.organic)
	humanGrade := c.g.scoreVariant(combined, c.humanGrade)
	feedGrade := c.g.scoreVariant(combined, c.feedGrade)

	// Compound rule: both signals, independently present.
	if humanGrade.score > 0 && organic.score > 0 {
		matched := append(append([]string{}, humanGrade.matched...), organic.matched...)
		confidence := humanGrade.score
		if organic.score > confidence {
			confidence = organic.score
		}
		return models.ClassificationResult{
			Category:        string(models.SourcingHumanGradeOrganic),
			Confidence:      confidence,
			MatchedKeywords: matched,
			Reason: fmt.Sprintf("Human-grade and organic evidence both present: %s",
				strings.Join(matched, ", ")),
		}
	}

	if humanGrade.score > 0 && humanGrade.score >= feedGrade.score {
		return models.ClassificationResult{
			Category:        string(models.SourcingHumanGrade),
			Confidence:      humanGrade.score,
			MatchedKeywords: humanGrade.matched,
			Reason: fmt.Sprintf("Classified as Human Grade based on: %s",
				strings.Join(humanGrade.matched, ", ")),
		}
	}

	if feedGrade.score > 0 {
		return models.ClassificationResult{
			Category:        string(models.SourcingFeedGrade),
			Confidence:      feedGrade.score,
			MatchedKeywords: feedGrade.matched,
			Reason: fmt.Sprintf("Classified as Feed Grade based on: %s",
				strings.Join(feedGrade.matched, ", ")),
		}
	}

	if organic.score > 0 {
		// Organic badge with no human-grade backing does not earn the
		// premium variant and proves nothing else about sourcing.
		return models.ClassificationResult{
			Category:        string(models.SourcingOther),
			Confidence:      ConfidenceDefault,
			MatchedKeywords: organic.matched,
			Reason:          "Organic indicators found without human-grade evidence",
		}
	}

	return models.ClassificationResult{
		Category:   string(models.SourcingOther),
		Confidence: ConfidenceDefault,
		Reason:     "No sourcing integrity indicators found in product text",
	}
}
