// internal/scoring/grades.go
package scoring

import (
	"math"

	"petfood-workers/internal/models"
)

// Maximum deduction per factor, used to re-express each deduction as a
// 0-100 sub-score for the presentation payload.
var factorMaxDeduction = map[string]float64{
	FactorFoodCategory:   13,
	FactorSourcing:       10,
	FactorProcessing:     15,
	FactorAdequacy:       10,
	FactorStarchyCarbs:   10,
	FactorProteinQuality: ingredientQualityCap,
	FactorFatQuality:     ingredientQualityCap,
	FactorCarbQuality:    ingredientQualityCap,
	FactorFiberQuality:   ingredientQualityCap,
	FactorDirtyDozen:     9,
	FactorSynthetic:      5,
	FactorStorage:        3,
	FactorPackaging:      4,
	FactorShelfLife:      4,
}

// maxLongevityBonus scales the one additive factor that works upward.
const maxLongevityBonus = 4

// Grade maps a 0-100 sub-score onto its letter band.
func Grade(score float64) models.LetterGrade {
	switch {
	case score >= 90:
		return models.GradeA
	case score >= 80:
		return models.GradeB
	case score >= 70:
		return models.GradeC
	case score >= 60:
		return models.GradeD
	default:
		return models.GradeF
	}
}

// componentFor converts one factor's deduction into a graded sub-score:
// no deduction is a 100, the factor's maximum deduction is a 0.
func componentFor(factor string, deduction float64) models.MicroScoreComponent {
	max := factorMaxDeduction[factor]
	score := 100.0
	if max > 0 {
		score = clampScore(100 - deduction/max*100)
	}
	score = math.Round(score)
	return models.MicroScoreComponent{Grade: Grade(score), Score: score}
}

// BuildMicroScore assembles the per-factor grade payload from a base
// result and, when present, the dynamic breakdown. Handling factors are
// only attached if the dynamic phase actually applied them.
func BuildMicroScore(base BaseScore, breakdown *models.ScoreBreakdown) models.MicroScore {
	ded := func(factor string) float64 { return base.Deductions[factor] }

	longevityScore := math.Round(clampScore(base.Bonus / maxLongevityBonus * 100))
	micro := models.MicroScore{
		Food:              componentFor(FactorFoodCategory, ded(FactorFoodCategory)),
		Sourcing:          componentFor(FactorSourcing, ded(FactorSourcing)),
		Processing:        componentFor(FactorProcessing, ded(FactorProcessing)),
		Adequacy:          componentFor(FactorAdequacy, ded(FactorAdequacy)),
		Carbohydrates:     componentFor(FactorStarchyCarbs, ded(FactorStarchyCarbs)),
		ProteinQuality:    componentFor(FactorProteinQuality, ded(FactorProteinQuality)),
		FatQuality:        componentFor(FactorFatQuality, ded(FactorFatQuality)),
		FiberQuality:      componentFor(FactorFiberQuality, ded(FactorFiberQuality)),
		CarbQuality:       componentFor(FactorCarbQuality, ded(FactorCarbQuality)),
		DirtyDozen:        componentFor(FactorDirtyDozen, ded(FactorDirtyDozen)),
		SyntheticNutrient: componentFor(FactorSynthetic, ded(FactorSynthetic)),
		Longevity:         models.MicroScoreComponent{Grade: Grade(longevityScore), Score: longevityScore},
	}

	if breakdown == nil {
		return micro
	}
	if d, ok := breakdown.Deductions[FactorStorage]; ok {
		c := componentFor(FactorStorage, d)
		micro.Storage = &c
	}
	if d, ok := breakdown.Deductions[FactorPackaging]; ok {
		c := componentFor(FactorPackaging, d)
		micro.Packaging = &c
	}
	if d, ok := breakdown.Deductions[FactorShelfLife]; ok {
		c := componentFor(FactorShelfLife, d)
		micro.ShelfLife = &c
	}
	return micro
}
