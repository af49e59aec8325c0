// internal/scoring/base_test.go
package scoring

import (
	"testing"

	"petfood-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *float64 { return &v }

// classifiedAttrs returns a record where every blocking factor has a
// real classification; tests tweak the fields they care about.
func classifiedAttrs() *models.ProcessedAttributes {
	return &models.ProcessedAttributes{
		FoodCategory:          models.FoodCategoryDry,
		SourcingIntegrity:     models.SourcingFeedGrade,
		ProcessingMethod:      models.ProcessingExtruded,
		NutritionallyAdequate: models.AdequateYes,
	}
}

// ==========================
// Base Score Tests
// ==========================

func TestComputeBaseScorePremiumRaw(t *testing.T) {
	attrs := &models.ProcessedAttributes{
		FoodCategory:          models.FoodCategoryRaw,
		SourcingIntegrity:     models.SourcingHumanGradeOrganic,
		ProcessingMethod:      models.ProcessingUncookedNotFrozen,
		NutritionallyAdequate: models.AdequateYes,
		Ingredients: models.IngredientAnalysis{
			Protein:   models.CategoryRollup{High: []string{"fresh chicken", "raw beef"}},
			Longevity: models.AdditiveDetection{Count: 4},
		},
	}

	result := ComputeBaseScore(attrs)

	require.True(t, result.Available())
	// All deductions zero, bonus +3, clamped back down to 100.
	assert.Equal(t, 100.0, *result.Score)
	assert.Empty(t, result.Blocking)
	assert.Equal(t, 3.0, result.Bonus)
	assert.Equal(t, 0.0, result.Deductions[FactorFoodCategory])
	assert.Equal(t, 0.0, result.Deductions[FactorProteinQuality])
}

func TestComputeBaseScoreTypicalKibble(t *testing.T) {
	attrs := classifiedAttrs()
	attrs.Nutrients.StarchyCarbPct = pct(34)
	attrs.Ingredients = models.IngredientAnalysis{
		Protein:    models.CategoryRollup{Good: []string{"deboned chicken"}, Low: []string{"chicken meal"}},
		Carb:       models.CategoryRollup{Low: []string{"corn", "wheat flour"}},
		DirtyDozen: models.AdditiveDetection{Count: 3},
		Synthetic:  models.AdditiveDetection{Count: 8},
		Longevity:  models.AdditiveDetection{Count: 2},
	}

	result := ComputeBaseScore(attrs)

	require.True(t, result.Available())
	// 100 - (13+10+15+0+10+3.5+0+5+0+5+3) + 2 = 37.5
	assert.Equal(t, 37.5, *result.Score)
	assert.Equal(t, 13.0, result.Deductions[FactorFoodCategory])
	assert.Equal(t, 10.0, result.Deductions[FactorSourcing])
	assert.Equal(t, 15.0, result.Deductions[FactorProcessing])
	assert.Equal(t, 0.0, result.Deductions[FactorAdequacy])
	assert.Equal(t, 10.0, result.Deductions[FactorStarchyCarbs])
	assert.Equal(t, 3.5, result.Deductions[FactorProteinQuality])
	assert.Equal(t, 5.0, result.Deductions[FactorCarbQuality])
	assert.Equal(t, 5.0, result.Deductions[FactorDirtyDozen])
	assert.Equal(t, 3.0, result.Deductions[FactorSynthetic])
	assert.Equal(t, 2.0, result.Bonus)
}

func TestComputeBaseScoreWorstCaseStaysAboveZero(t *testing.T) {
	low := models.CategoryRollup{Low: []string{"a", "b"}}
	attrs := &models.ProcessedAttributes{
		FoodCategory:          models.FoodCategoryDry,
		SourcingIntegrity:     models.SourcingFeedGrade,
		ProcessingMethod:      models.ProcessingRetorted,
		NutritionallyAdequate: models.AdequateNo,
		Ingredients: models.IngredientAnalysis{
			Protein:    low,
			Fat:        low,
			Carb:       low,
			Fiber:      low,
			DirtyDozen: models.AdditiveDetection{Count: 12},
			Synthetic:  models.AdditiveDetection{Count: 12},
		},
	}
	attrs.Nutrients.StarchyCarbPct = pct(45)

	result := ComputeBaseScore(attrs)

	require.True(t, result.Available())
	// 13+10+15+10+10 + 4*5 + 9 + 5 = 92 deducted.
	assert.Equal(t, 8.0, *result.Score)
}

func TestComputeBaseScoreOmitsStarchyCarbsWhenUnknown(t *testing.T) {
	result := ComputeBaseScore(classifiedAttrs())

	require.True(t, result.Available())
	_, present := result.Deductions[FactorStarchyCarbs]
	assert.False(t, present)
	// 100 - (13+10+15+0) with nothing else detected.
	assert.Equal(t, 62.0, *result.Score)
}

func TestComputeBaseScoreBlocking(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ProcessedAttributes)
		reason string
	}{
		{
			name:   "unclassified food category blocks",
			mutate: func(a *models.ProcessedAttributes) { a.FoodCategory = models.FoodCategoryOther },
			reason: "food category unclassified",
		},
		{
			name:   "unclassified sourcing blocks",
			mutate: func(a *models.ProcessedAttributes) { a.SourcingIntegrity = models.SourcingOther },
			reason: "sourcing integrity unclassified",
		},
		{
			name:   "unclassified processing blocks",
			mutate: func(a *models.ProcessedAttributes) { a.ProcessingMethod = models.ProcessingOther },
			reason: "processing method unclassified",
		},
		{
			name:   "unclassified adequacy blocks",
			mutate: func(a *models.ProcessedAttributes) { a.NutritionallyAdequate = models.AdequateOther },
			reason: "nutritional adequacy unclassified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := classifiedAttrs()
			tt.mutate(attrs)

			result := ComputeBaseScore(attrs)

			assert.False(t, result.Available())
			assert.Nil(t, result.Score)
			assert.Contains(t, result.Blocking, tt.reason)
		})
	}
}

func TestComputeBaseScoreReportsEveryBlockingReason(t *testing.T) {
	result := ComputeBaseScore(&models.ProcessedAttributes{})

	assert.False(t, result.Available())
	assert.Len(t, result.Blocking, 4)
}

func TestComputeBaseScoreIsDeterministic(t *testing.T) {
	attrs := classifiedAttrs()
	attrs.Ingredients.Protein = models.CategoryRollup{High: []string{"x"}, Low: []string{"y"}}

	first := ComputeBaseScore(attrs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeBaseScore(attrs))
	}
}

// ==========================
// Deduction Table Tests
// ==========================

func TestStarchyCarbDeduction(t *testing.T) {
	tests := []struct {
		pct      float64
		expected float64
	}{
		{0, 0}, {9.9, 0},
		{10, 2}, {15, 2},
		{15.5, 0}, // gap between bands
		{16, 4}, {20, 4},
		{20.5, 0},
		{21, 6}, {25, 6},
		{25.5, 0},
		{26, 8}, {30, 8},
		{30.5, 10}, {100, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, starchyCarbDeduction(tt.pct), "pct=%v", tt.pct)
	}
}

func TestIngredientQualityDeduction(t *testing.T) {
	assert.Equal(t, 0.0, ingredientQualityDeduction(models.CategoryRollup{}))
	assert.Equal(t, 3.5, ingredientQualityDeduction(models.CategoryRollup{
		Good: []string{"a"}, Low: []string{"b"},
	}))
	assert.Equal(t, 5.0, ingredientQualityDeduction(models.CategoryRollup{
		Low: []string{"a", "b", "c"},
	}))
	assert.Equal(t, 0.0, ingredientQualityDeduction(models.CategoryRollup{
		High: []string{"a", "b"},
	}))
}

func TestAdditiveDeductionBands(t *testing.T) {
	assert.Equal(t, 0.0, dirtyDozenDeduction(0))
	assert.Equal(t, 2.0, dirtyDozenDeduction(2))
	assert.Equal(t, 5.0, dirtyDozenDeduction(3))
	assert.Equal(t, 5.0, dirtyDozenDeduction(5))
	assert.Equal(t, 8.0, dirtyDozenDeduction(9))
	assert.Equal(t, 9.0, dirtyDozenDeduction(10))

	assert.Equal(t, 0.0, syntheticDeduction(3))
	assert.Equal(t, 2.0, syntheticDeduction(4))
	assert.Equal(t, 2.0, syntheticDeduction(6))
	assert.Equal(t, 3.0, syntheticDeduction(10))
	assert.Equal(t, 5.0, syntheticDeduction(11))

	assert.Equal(t, 0.0, longevityBonus(0))
	assert.Equal(t, 2.0, longevityBonus(3))
	assert.Equal(t, 3.0, longevityBonus(7))
	assert.Equal(t, 4.0, longevityBonus(8))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-5))
	assert.Equal(t, 100.0, clampScore(103))
	assert.Equal(t, 42.5, clampScore(42.5))
}
