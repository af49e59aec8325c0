// internal/scoring/dynamic_test.go
package scoring

import (
	"testing"

	"petfood-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Applicable Field Tests
// ==========================

func TestApplicableFields(t *testing.T) {
	tests := []struct {
		name     string
		category models.FoodCategory
		method   models.ProcessingMethod
		expected []string
	}{
		{"wet food has no handling factors", models.FoodCategoryWet, models.ProcessingRetorted, nil},
		{"soft food has no handling factors", models.FoodCategorySoft, models.ProcessingExtruded, nil},
		{"dry food exposes storage and packaging", models.FoodCategoryDry, models.ProcessingExtruded, []string{FactorStorage, FactorPackaging}},
		{"fresh food exposes shelf life", models.FoodCategoryFresh, models.ProcessingLightlyCookedFrozen, []string{FactorShelfLife}},
		{"plain raw exposes shelf life", models.FoodCategoryRaw, models.ProcessingUncookedNotFrozen, []string{FactorShelfLife}},
		{"frozen raw exposes shelf life", models.FoodCategoryRaw, models.ProcessingUncookedFrozen, []string{FactorShelfLife}},
		{"flash frozen raw stores like dry", models.FoodCategoryRaw, models.ProcessingUncookedFlashFrozen, []string{FactorStorage, FactorPackaging}},
		{"freeze dried raw stores like dry", models.FoodCategoryRaw, models.ProcessingFreezeDried, []string{FactorStorage, FactorPackaging}},
		{"dehydrated raw stores like dry", models.FoodCategoryRaw, models.ProcessingDehydrated, []string{FactorStorage, FactorPackaging}},
		{"air dried raw has no handling factors", models.FoodCategoryRaw, models.ProcessingAirDried, nil},
		{"unclassified category has none", models.FoodCategoryOther, models.ProcessingExtruded, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplicableFields(tt.category, tt.method))
		})
	}
}

// ==========================
// Dynamic Score Tests
// ==========================

func TestComputeDynamicScoreWetIgnoresHandlingContext(t *testing.T) {
	ctx := models.HandlingContext{
		Storage:       models.StorageCoolDryNotAway,
		PackagingSize: models.PackagingThreePlusMonth,
		ShelfLife:     models.ShelfLifeOverTwoWks,
	}

	breakdown := ComputeDynamicScore(74, models.FoodCategoryWet, models.ProcessingRetorted, ctx)

	assert.Empty(t, breakdown.ApplicableFields)
	assert.Empty(t, breakdown.Deductions)
	assert.Equal(t, 0.0, breakdown.TotalDeduction)
	assert.Equal(t, 74.0, breakdown.FinalScore)
	assert.Equal(t, models.BucketGood, breakdown.Classification)
}

func TestComputeDynamicScoreDryDeductsStorageAndPackaging(t *testing.T) {
	ctx := models.HandlingContext{
		Storage:       models.StorageFreezer,
		PackagingSize: models.PackagingThreePlusMonth,
	}

	breakdown := ComputeDynamicScore(80, models.FoodCategoryDry, models.ProcessingExtruded, ctx)

	assert.Equal(t, 0.0, breakdown.Deductions[FactorStorage])
	assert.Equal(t, 4.0, breakdown.Deductions[FactorPackaging])
	assert.Equal(t, 4.0, breakdown.TotalDeduction)
	assert.Equal(t, 76.0, breakdown.FinalScore)
	assert.Equal(t, 80.0, breakdown.BaseScore)
}

func TestComputeDynamicScoreIgnoresInapplicableFields(t *testing.T) {
	// Shelf life is supplied but dry food never reads it.
	ctx := models.HandlingContext{ShelfLife: models.ShelfLifeWeek}

	breakdown := ComputeDynamicScore(80, models.FoodCategoryDry, models.ProcessingExtruded, ctx)

	assert.Empty(t, breakdown.Deductions)
	assert.Equal(t, 80.0, breakdown.FinalScore)
}

func TestComputeDynamicScoreSkipsUnsuppliedFields(t *testing.T) {
	ctx := models.HandlingContext{Storage: models.StorageCoolDryNotAway}

	breakdown := ComputeDynamicScore(80, models.FoodCategoryDry, models.ProcessingExtruded, ctx)

	assert.Len(t, breakdown.Deductions, 1)
	assert.Equal(t, 3.0, breakdown.Deductions[FactorStorage])
	assert.Equal(t, 77.0, breakdown.FinalScore)
}

func TestComputeDynamicScoreFreshShelfLife(t *testing.T) {
	tests := []struct {
		shelfLife models.ShelfLife
		expected  float64
	}{
		{models.ShelfLifeWeek, 0},
		{models.ShelfLifeTwoWeeks, 3},
		{models.ShelfLifeOverTwoWks, 4},
	}

	for _, tt := range tests {
		ctx := models.HandlingContext{ShelfLife: tt.shelfLife}
		breakdown := ComputeDynamicScore(90, models.FoodCategoryFresh, models.ProcessingLightlyCookedNotFrozen, ctx)
		assert.Equal(t, tt.expected, breakdown.TotalDeduction, "shelfLife=%s", tt.shelfLife)
		assert.Equal(t, 90-tt.expected, breakdown.FinalScore)
	}
}

func TestComputeDynamicScoreUnknownEnumDeductsNothing(t *testing.T) {
	ctx := models.HandlingContext{Storage: models.FoodStorage("garage")}

	breakdown := ComputeDynamicScore(80, models.FoodCategoryDry, models.ProcessingExtruded, ctx)

	d, present := breakdown.Deductions[FactorStorage]
	assert.True(t, present)
	assert.Equal(t, 0.0, d)
	assert.Equal(t, 80.0, breakdown.FinalScore)
}

func TestComputeDynamicScoreClampsAtZero(t *testing.T) {
	ctx := models.HandlingContext{
		Storage:       models.StorageCoolDryNotAway,
		PackagingSize: models.PackagingThreePlusMonth,
	}

	breakdown := ComputeDynamicScore(2, models.FoodCategoryDry, models.ProcessingExtruded, ctx)

	assert.Equal(t, 7.0, breakdown.TotalDeduction)
	assert.Equal(t, 0.0, breakdown.FinalScore)
	assert.Equal(t, models.BucketAtRisk, breakdown.Classification)
}

// ==========================
// Bucket Tests
// ==========================

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		score    float64
		expected models.ScoreBucket
	}{
		{100, models.BucketOptimal},
		{85, models.BucketOptimal},
		{84.9, models.BucketGood},
		{70, models.BucketGood},
		{69.9, models.BucketFair},
		{50, models.BucketFair},
		{49.9, models.BucketPoor},
		{30, models.BucketPoor},
		{29.9, models.BucketAtRisk},
		{0, models.BucketAtRisk},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Bucket(tt.score), "score=%v", tt.score)
	}
}
