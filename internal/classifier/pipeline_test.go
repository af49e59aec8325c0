// internal/classifier/pipeline_test.go
package classifier

import (
	"fmt"
	"testing"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kibbleProductText() models.ProductText {
	return models.ProductText{
		Name:               "Blue Buffalo Wilderness High Protein Kibble",
		Category:           "Dry Dog Food",
		Details:            "Grain-free extruded kibble with real deboned chicken. Complete and balanced for adult dogs.",
		Ingredients:        "Deboned Chicken, Chicken Meal, Peas, Chicken Fat, Dried Kelp",
		GuaranteedAnalysis: "Crude Protein (min) 32%, Crude Fat (min) 14%, Crude Fiber (max) 4%, Moisture (max) 10%",
	}
}

// ==========================
// Pipeline Tests
// ==========================

func TestPipelineProcess(t *testing.T) {
	p := NewPipeline(keywords.Default(), "2.0.0-test")

	attrs := p.Process(kibbleProductText())

	assert.Equal(t, models.FoodCategoryDry, attrs.FoodCategory)
	assert.Equal(t, models.SourcingOther, attrs.SourcingIntegrity)
	assert.Equal(t, models.ProcessingExtruded, attrs.ProcessingMethod)
	assert.Empty(t, attrs.SecondaryProcessingMethod)
	assert.Equal(t, models.AdequateYes, attrs.NutritionallyAdequate)

	assert.Equal(t, models.TierModerate, attrs.Ingredients.Protein.Tier)
	assert.Equal(t, models.TierHigh, attrs.Ingredients.Carb.Tier)
	assert.Equal(t, models.TierGood, attrs.Ingredients.Fat.Tier)
	assert.Equal(t, 1, attrs.Ingredients.Longevity.Count)

	assert.Equal(t, "Blue Buffalo Wilderness", attrs.Brand.Brand)
	assert.Equal(t, models.BrandMethodStartsWith, attrs.Brand.Method)

	require.NotNil(t, attrs.Nutrients.CrudeProteinPct)
	assert.Equal(t, 32.0, *attrs.Nutrients.CrudeProteinPct)
	require.NotNil(t, attrs.Nutrients.StarchyCarbPct)
	assert.Equal(t, 34.0, *attrs.Nutrients.StarchyCarbPct)

	// Scoring is a separate phase; the pipeline never fills it in.
	assert.Nil(t, attrs.BaseScore)
	assert.Equal(t, "2.0.0-test", attrs.ProcessorVersion)
}

func TestPipelineVersionDefaultsToLibrary(t *testing.T) {
	lib := keywords.Default()
	p := NewPipeline(lib, "")

	attrs := p.Process(models.ProductText{Name: "Kibble"})
	assert.Equal(t, lib.Version, attrs.ProcessorVersion)
}

func TestPipelineIsDeterministic(t *testing.T) {
	p := NewPipeline(keywords.Default(), "")

	first := p.Process(kibbleProductText())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Process(kibbleProductText()))
	}
}

func TestPipelineEmptyProduct(t *testing.T) {
	p := NewPipeline(keywords.Default(), "")

	attrs := p.Process(models.ProductText{})

	assert.Equal(t, models.FoodCategoryOther, attrs.FoodCategory)
	assert.Equal(t, models.SourcingOther, attrs.SourcingIntegrity)
	assert.Equal(t, models.ProcessingOther, attrs.ProcessingMethod)
	assert.Equal(t, models.AdequateOther, attrs.NutritionallyAdequate)
	assert.Equal(t, models.BrandConfidenceNone, attrs.Brand.Confidence)
	assert.Nil(t, attrs.Nutrients.CrudeProteinPct)
	assert.Nil(t, attrs.Nutrients.StarchyCarbPct)
}

func TestPipelineStages(t *testing.T) {
	p := NewPipeline(keywords.Default(), "")

	stages := p.Stages()
	require.Len(t, stages, 4)

	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
		result := s.Classify(kibbleProductText())
		assert.NotEmpty(t, result.Category, "stage %s returned empty category", s.Name)
	}
	assert.Equal(t, []string{"foodCategory", "sourcingIntegrity", "processingMethod", "nutritionalAdequacy"}, names)
}

// ==========================
// Batch Tests
// ==========================

func TestRunBatch(t *testing.T) {
	p := NewPipeline(keywords.Default(), "")

	records := make([]models.ProductDetail, 8)
	for i := range records {
		records[i] = models.ProductDetail{
			ID:          int64(i + 1),
			ProductName: fmt.Sprintf("Test Kibble %d", i+1),
			Details:     "Extruded kibble, complete and balanced.",
			Ingredients: "Deboned Chicken, Brown Rice",
		}
	}
	// One sparse record mixed in; it must classify to defaults, not fail.
	records[3] = models.ProductDetail{ID: 4}

	items := p.RunBatch(records, 3)
	require.Len(t, items, len(records))

	for i, item := range items {
		require.NoError(t, item.Err)
		require.NotNil(t, item.Attributes)
		assert.Equal(t, records[i].ID, item.Record.ID)
		assert.Equal(t, records[i].ID, item.Attributes.ProductDetailID)
	}
	assert.Equal(t, models.FoodCategoryOther, items[3].Attributes.FoodCategory)
}

func TestRunBatchConcurrencyDoesNotChangeResults(t *testing.T) {
	p := NewPipeline(keywords.Default(), "")

	records := []models.ProductDetail{
		{ID: 1, ProductName: "Raw Frozen Beef Patties", Details: "Keep frozen. Thaw before serving."},
		{ID: 2, ProductName: "Chicken Pate", Details: "Canned food in gravy."},
		{ID: 3, ProductName: "Air Dried Lamb", Details: "Gently dried at low temperatures."},
	}

	sequential := p.RunBatch(records, 1)
	parallel := p.RunBatch(records, 8)

	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].Attributes, parallel[i].Attributes)
	}
}

func TestRunBatchEmptyInput(t *testing.T) {
	p := NewPipeline(keywords.Default(), "")

	assert.Nil(t, p.RunBatch(nil, 4))
	assert.Nil(t, p.RunBatch([]models.ProductDetail{}, 0))
}
