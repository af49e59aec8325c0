// internal/nutrition/carbs.go
package nutrition

import (
	"math"

	"petfood-workers/internal/models"
)

// moistureWetThreshold infers a wet-basis product when the category is
// unknown: above 70% moisture nothing is sold dry.
const moistureWetThreshold = 70.0

// DeriveStarchyCarbs computes the starchy-carbohydrate percentage from
// the extracted profile. Protein, fat and fiber are all required; a nil
// return means "unavailable", never zero. Wet-basis products (Wet,
// Fresh, Raw) additionally require moisture and are re-expressed on dry
// matter. The result is floored at 0 and rounded to one decimal.
func DeriveStarchyCarbs(profile models.NutrientProfile, category models.FoodCategory) *float64 {
	if profile.CrudeProteinPct == nil || profile.CrudeFatPct == nil || profile.CrudeFiberPct == nil {
		return nil
	}

	protein := *profile.CrudeProteinPct
	fat := *profile.CrudeFatPct
	fiber := *profile.CrudeFiberPct
	ash := defaultAshPct
	if profile.AshPct != nil {
		ash = *profile.AshPct
	}

	var carbs float64
	if isWetBasis(category, profile.MoisturePct) {
		if profile.MoisturePct == nil {
			return nil
		}
		moisture := *profile.MoisturePct
		dryMatter := 100 - moisture
		if dryMatter <= 0 {
			return nil
		}
		wetCarbs := 100 - (protein + fat + fiber + ash + moisture)
		carbs = wetCarbs / dryMatter * 100
	} else {
		carbs = 100 - (protein + fat + fiber + ash)
		if profile.MoisturePct != nil {
			carbs -= *profile.MoisturePct
		}
	}

	if carbs < 0 {
		carbs = 0
	}
	carbs = math.Round(carbs*10) / 10
	return &carbs
}

func isWetBasis(category models.FoodCategory, moisture *float64) bool {
	switch category {
	case models.FoodCategoryWet, models.FoodCategoryFresh, models.FoodCategoryRaw:
		return true
	case models.FoodCategoryDry:
		return false
	default:
		return moisture != nil && *moisture > moistureWetThreshold
	}
}
