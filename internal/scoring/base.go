// Package scoring turns classified attributes into the two-phase
// quality score: an intrinsic base score computed once and persisted,
// and a request-scoped dynamic adjustment that is never stored. Both
// calculators are pure functions over their inputs.
package scoring

import (
	"math"

	"petfood-workers/internal/models"
)

// Factor names used in deduction maps and micro-score payloads.
const (
	FactorFoodCategory   = "foodCategory"
	FactorSourcing       = "sourcingIntegrity"
	FactorProcessing     = "processingMethod"
	FactorAdequacy       = "nutritionalAdequacy"
	FactorStarchyCarbs   = "starchyCarbs"
	FactorProteinQuality = "proteinQuality"
	FactorFatQuality     = "fatQuality"
	FactorCarbQuality    = "carbQuality"
	FactorFiberQuality   = "fiberQuality"
	FactorDirtyDozen     = "dirtyDozen"
	FactorSynthetic      = "syntheticNutrients"
	FactorLongevity      = "longevityBonus"
	FactorStorage        = "storage"
	FactorPackaging      = "packagingSize"
	FactorShelfLife      = "shelfLife"
)

// Fixed deduction tables for the four blocking factors. An attribute
// value absent from its table (the Other sentinel included) withholds
// the whole score instead of deducting anything.
var (
	foodCategoryDeductions = map[models.FoodCategory]float64{
		models.FoodCategoryRaw:   0,
		models.FoodCategoryFresh: 4,
		models.FoodCategoryDry:   13,
		models.FoodCategoryWet:   13,
		models.FoodCategorySoft:  13,
	}
	sourcingDeductions = map[models.SourcingIntegrity]float64{
		models.SourcingHumanGradeOrganic: 0,
		models.SourcingHumanGrade:        3,
		models.SourcingFeedGrade:         10,
	}
	processingDeductions = map[models.ProcessingMethod]float64{
		models.ProcessingUncookedNotFrozen:      0,
		models.ProcessingUncookedFlashFrozen:    1,
		models.ProcessingUncookedFrozen:         2,
		models.ProcessingLightlyCookedNotFrozen: 3,
		models.ProcessingLightlyCookedFrozen:    4,
		models.ProcessingFreezeDried:            5,
		models.ProcessingAirDried:               7,
		models.ProcessingDehydrated:             8,
		models.ProcessingBaked:                  11,
		models.ProcessingExtruded:               15,
		models.ProcessingRetorted:               15,
	}
	adequacyDeductions = map[models.NutritionallyAdequate]float64{
		models.AdequateYes: 0,
		models.AdequateNo:  10,
	}
)

// ingredientQualityCap bounds each macro group's weighted deduction.
const ingredientQualityCap = 9

// BaseScore is the phase-1 result. Score stays nil whenever any
// blocking factor is unclassified; Blocking then names every reason so
// the caller can route the product to manual review.
type BaseScore struct {
	Score      *float64           `json:"score,omitempty"`
	Deductions map[string]float64 `json:"deductions"`
	Bonus      float64            `json:"bonus"`
	Blocking   []string           `json:"blocking,omitempty"`
}

// Available reports whether a score was produced.
func (b BaseScore) Available() bool {
	return b.Score != nil
}

// ComputeBaseScore applies the fixed deduction tables to a classified
// attribute record. Deterministic and idempotent: the same attributes
// always produce the same score. The at-most-once persistence rule is
// the storage layer's job, not this function's.
func ComputeBaseScore(attrs *models.ProcessedAttributes) BaseScore {
	result := BaseScore{Deductions: make(map[string]float64)}

	if d, ok := foodCategoryDeductions[attrs.FoodCategory]; ok {
		result.Deductions[FactorFoodCategory] = d
	} else {
		result.Blocking = append(result.Blocking, "food category unclassified")
	}
	if d, ok := sourcingDeductions[attrs.SourcingIntegrity]; ok {
		result.Deductions[FactorSourcing] = d
	} else {
		result.Blocking = append(result.Blocking, "sourcing integrity unclassified")
	}
	if d, ok := processingDeductions[attrs.ProcessingMethod]; ok {
		result.Deductions[FactorProcessing] = d
	} else {
		result.Blocking = append(result.Blocking, "processing method unclassified")
	}
	if d, ok := adequacyDeductions[attrs.NutritionallyAdequate]; ok {
		result.Deductions[FactorAdequacy] = d
	} else {
		result.Blocking = append(result.Blocking, "nutritional adequacy unclassified")
	}

	// The remaining factors never block; absent inputs just deduct 0.
	if attrs.Nutrients.StarchyCarbPct != nil {
		result.Deductions[FactorStarchyCarbs] = starchyCarbDeduction(*attrs.Nutrients.StarchyCarbPct)
	}
	result.Deductions[FactorProteinQuality] = ingredientQualityDeduction(attrs.Ingredients.Protein)
	result.Deductions[FactorFatQuality] = ingredientQualityDeduction(attrs.Ingredients.Fat)
	result.Deductions[FactorCarbQuality] = ingredientQualityDeduction(attrs.Ingredients.Carb)
	result.Deductions[FactorFiberQuality] = ingredientQualityDeduction(attrs.Ingredients.Fiber)
	result.Deductions[FactorDirtyDozen] = dirtyDozenDeduction(attrs.Ingredients.DirtyDozen.Count)
	result.Deductions[FactorSynthetic] = syntheticDeduction(attrs.Ingredients.Synthetic.Count)
	result.Bonus = longevityBonus(attrs.Ingredients.Longevity.Count)

	if len(result.Blocking) > 0 {
		return result
	}

	score := 100.0
	for _, d := range result.Deductions {
		score -= d
	}
	score += result.Bonus
	score = clampScore(score)
	result.Score = &score
	return result
}

// starchyCarbDeduction buckets the starchy-carb percentage. Values
// falling in the gaps between bands (15.x, 20.x, 25.x) deduct nothing.
func starchyCarbDeduction(pct float64) float64 {
	switch {
	case pct < 10:
		return 0
	case pct <= 15:
		return 2
	case pct >= 16 && pct <= 20:
		return 4
	case pct >= 21 && pct <= 25:
		return 6
	case pct >= 26 && pct <= 30:
		return 8
	case pct > 30:
		return 10
	default:
		return 0
	}
}

// ingredientQualityDeduction recomputes the weighted average from the
// rollup's tier counts and caps it. A group with nothing classified
// deducts nothing.
func ingredientQualityDeduction(r models.CategoryRollup) float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	weighted := float64(len(r.Good)*2+len(r.Moderate)*3+len(r.Low)*5) / float64(total)
	return math.Min(weighted, ingredientQualityCap)
}

func dirtyDozenDeduction(count int) float64 {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 2
	case count <= 5:
		return 5
	case count <= 9:
		return 8
	default:
		return 9
	}
}

func syntheticDeduction(count int) float64 {
	switch {
	case count <= 3:
		return 0
	case count <= 6:
		return 2
	case count <= 10:
		return 3
	default:
		return 5
	}
}

func longevityBonus(count int) float64 {
	switch {
	case count <= 0:
		return 0
	case count <= 3:
		return 2
	case count <= 7:
		return 3
	default:
		return 4
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
