// internal/scoring/dynamic.go
package scoring

import "petfood-workers/internal/models"

// Handling-context deduction tables. Values outside the tables (an
// unrecognized storage string, say) deduct nothing rather than failing.
var (
	storageDeductions = map[models.FoodStorage]float64{
		models.StorageFreezer:        0,
		models.StorageRefrigerator:   0,
		models.StorageCoolDryAway:    1,
		models.StorageCoolDryNotAway: 3,
	}
	packagingDeductions = map[models.PackagingSize]float64{
		models.PackagingOneMonth:       0,
		models.PackagingTwoMonths:      3,
		models.PackagingThreePlusMonth: 4,
	}
	shelfLifeDeductions = map[models.ShelfLife]float64{
		models.ShelfLifeWeek:       0,
		models.ShelfLifeTwoWeeks:   3,
		models.ShelfLifeOverTwoWks: 4,
	}
)

// Score-bucket thresholds, checked top down.
var bucketThresholds = []struct {
	min    float64
	bucket models.ScoreBucket
}{
	{85, models.BucketOptimal},
	{70, models.BucketGood},
	{50, models.BucketFair},
	{30, models.BucketPoor},
	{0, models.BucketAtRisk},
}

// ApplicableFields reports which handling-context fields can deduct for
// a food category. Raw products branch further on how they were
// processed: thawing matters for plain frozen raw, storage and
// packaging matter for the shelf-stable raw formats.
func ApplicableFields(category models.FoodCategory, method models.ProcessingMethod) []string {
	switch category {
	case models.FoodCategoryWet, models.FoodCategorySoft:
		return nil
	case models.FoodCategoryDry:
		return []string{FactorStorage, FactorPackaging}
	case models.FoodCategoryFresh:
		return []string{FactorShelfLife}
	case models.FoodCategoryRaw:
		switch method {
		case models.ProcessingUncookedNotFrozen, models.ProcessingUncookedFrozen:
			return []string{FactorShelfLife}
		case models.ProcessingUncookedFlashFrozen, models.ProcessingFreezeDried, models.ProcessingDehydrated:
			return []string{FactorStorage, FactorPackaging}
		}
		return nil
	default:
		return nil
	}
}

// ComputeDynamicScore applies the handling-context deductions to a
// persisted base score. Only fields that are both applicable for the
// category and actually supplied deduct. Pure: nothing here is ever
// persisted, and the base score is read, not changed.
func ComputeDynamicScore(base float64, category models.FoodCategory, method models.ProcessingMethod, ctx models.HandlingContext) models.ScoreBreakdown {
	applicable := ApplicableFields(category, method)
	breakdown := models.ScoreBreakdown{
		BaseScore:        base,
		Deductions:       make(map[string]float64),
		ApplicableFields: applicable,
	}

	for _, field := range applicable {
		switch field {
		case FactorStorage:
			if ctx.Storage != "" {
				breakdown.Deductions[FactorStorage] = storageDeductions[ctx.Storage]
			}
		case FactorPackaging:
			if ctx.PackagingSize != "" {
				breakdown.Deductions[FactorPackaging] = packagingDeductions[ctx.PackagingSize]
			}
		case FactorShelfLife:
			if ctx.ShelfLife != "" {
				breakdown.Deductions[FactorShelfLife] = shelfLifeDeductions[ctx.ShelfLife]
			}
		}
	}

	for _, d := range breakdown.Deductions {
		breakdown.TotalDeduction += d
	}
	breakdown.FinalScore = clampScore(base - breakdown.TotalDeduction)
	breakdown.Classification = Bucket(breakdown.FinalScore)
	return breakdown
}

// Bucket names the band a final score lands in.
func Bucket(score float64) models.ScoreBucket {
	for _, t := range bucketThresholds {
		if score >= t.min {
			return t.bucket
		}
	}
	return models.BucketAtRisk
}
