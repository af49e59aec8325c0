// internal/keywords/loader_test.go
package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfood-workers/internal/models"
)

// ==========================
// Default Library Tests
// ==========================

func TestDefaultLibraryIsComplete(t *testing.T) {
	lib := Default()

	require.NotEmpty(t, lib.Version)
	require.NotEmpty(t, lib.LastUpdated)

	categories := []models.FoodCategory{
		models.FoodCategoryRaw,
		models.FoodCategoryFresh,
		models.FoodCategoryDry,
		models.FoodCategoryWet,
		models.FoodCategorySoft,
	}
	for _, c := range categories {
		set, ok := lib.Category[string(c)]
		assert.True(t, ok, "category table missing %s", c)
		assert.NotEmpty(t, set.Main, "category %s has no main keywords", c)
	}

	methods := []models.ProcessingMethod{
		models.ProcessingUncookedNotFrozen,
		models.ProcessingUncookedFlashFrozen,
		models.ProcessingUncookedFrozen,
		models.ProcessingLightlyCookedNotFrozen,
		models.ProcessingLightlyCookedFrozen,
		models.ProcessingFreezeDried,
		models.ProcessingAirDried,
		models.ProcessingDehydrated,
		models.ProcessingBaked,
		models.ProcessingExtruded,
		models.ProcessingRetorted,
	}
	for _, m := range methods {
		set, ok := lib.Processing[string(m)]
		assert.True(t, ok, "processing table missing %s", m)
		assert.NotEmpty(t, set.Main, "processing %s has no main keywords", m)
	}

	assert.Contains(t, lib.Sourcing, string(models.SourcingHumanGradeOrganic))
	assert.Contains(t, lib.Sourcing, string(models.SourcingHumanGrade))
	assert.Contains(t, lib.Sourcing, string(models.SourcingFeedGrade))
	assert.Contains(t, lib.Adequacy, string(models.AdequateYes))
	assert.Contains(t, lib.Adequacy, string(models.AdequateNo))
}

func TestDefaultIngredientTiers(t *testing.T) {
	lib := Default()

	for _, tier := range []models.QualityTier{models.TierHigh, models.TierGood, models.TierModerate, models.TierLow} {
		assert.Contains(t, lib.Ingredients.Protein, tier, "protein missing tier %s", tier)
		assert.Contains(t, lib.Ingredients.Carb, tier, "carb missing tier %s", tier)
		assert.Contains(t, lib.Ingredients.Fiber, tier, "fiber missing tier %s", tier)
	}

	// The fat table deliberately has no Moderate tier.
	assert.NotContains(t, lib.Ingredients.Fat, models.TierModerate)
	assert.Contains(t, lib.Ingredients.Fat, models.TierHigh)
	assert.Contains(t, lib.Ingredients.Fat, models.TierGood)
	assert.Contains(t, lib.Ingredients.Fat, models.TierLow)
}

func TestDefaultWatchlists(t *testing.T) {
	lib := Default()

	assert.Len(t, lib.DirtyDozen, 12)
	assert.Len(t, lib.Synthetic, 3)
	assert.Len(t, lib.Longevity, 4)
	assert.NotEmpty(t, lib.Brands)

	for group, kws := range lib.DirtyDozen {
		assert.NotEmpty(t, kws, "dirty dozen group %s is empty", group)
	}
}

// ==========================
// Loader Tests
// ==========================

func TestLoadOverlayReplacesNamedSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.json")

	overlay := `{
		"version": "2.1.0",
		"lastUpdated": "2026-08-01",
		"brands": ["Acme Pet Food", "Acme"],
		"adequacy": {
			"Yes": {"main": ["complete and balanced"], "supporting": []},
			"No": {"main": ["intermittent feeding only"], "supporting": []}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o644))

	lib, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2.1.0", lib.Version)
	assert.Equal(t, "2026-08-01", lib.LastUpdated)
	assert.Equal(t, []string{"Acme Pet Food", "Acme"}, lib.Brands)
	assert.Equal(t, []string{"complete and balanced"}, lib.Adequacy[string(models.AdequateYes)].Main)

	// Sections absent from the overlay keep their compiled defaults.
	assert.Equal(t, Default().Category, lib.Category)
	assert.Equal(t, Default().Ingredients.Protein, lib.Ingredients.Protein)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidateRejectsBadTables(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name:    "minimal valid file",
			raw:     `{"version": "1.0.0"}`,
			wantErr: false,
		},
		{
			name:    "missing version",
			raw:     `{"brands": ["Acme"]}`,
			wantErr: true,
		},
		{
			name:    "main keywords must be strings",
			raw:     `{"version": "1.0.0", "category": {"Dry": {"main": [1, 2]}}}`,
			wantErr: true,
		},
		{
			name:    "empty keyword rejected",
			raw:     `{"version": "1.0.0", "brands": [""]}`,
			wantErr: true,
		},
		{
			name:    "unknown section rejected",
			raw:     `{"version": "1.0.0", "flavors": {}}`,
			wantErr: true,
		},
		{
			name:    "unknown ingredient group rejected",
			raw:     `{"version": "1.0.0", "ingredients": {"mineral": {}}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
