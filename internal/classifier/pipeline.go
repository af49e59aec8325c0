// internal/classifier/pipeline.go
package classifier

import (
	"fmt"
	"sync"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
	"petfood-workers/internal/nutrition"
)

// Stage is one attribute classifier in the pipeline. Every stage has
// the same shape, so running them is a plain loop over this slice, not
// a dispatch on classifier type.
type Stage struct {
	Name     string
	Classify func(models.ProductText) models.ClassificationResult
}

// Pipeline wires every classifier against one keyword library and runs
// them in a fixed order. Construct once, share freely: classification
// is pure and the compiled tables are read-only.
type Pipeline struct {
	Category    *CategoryClassifier
	Sourcing    *SourcingClassifier
	Processing  *ProcessingClassifier
	Adequacy    *AdequacyClassifier
	Ingredients *IngredientClassifier
	Brand       *BrandDetector

	version string
}

// NewPipeline compiles all classifiers from the library. The version
// tag ends up on every ProcessedAttributes this pipeline produces.
func NewPipeline(lib *keywords.Library, version string) *Pipeline {
	if version == "" {
		version = lib.Version
	}
	return &Pipeline{
		Category:    NewCategoryClassifier(lib),
		Sourcing:    NewSourcingClassifier(lib),
		Processing:  NewProcessingClassifier(lib),
		Adequacy:    NewAdequacyClassifier(lib),
		Ingredients: NewIngredientClassifier(lib),
		Brand:       NewBrandDetector(lib),
		version:     version,
	}
}

// Version reports the processor version tag this pipeline stamps on
// its results.
func (p *Pipeline) Version() string {
	return p.version
}

// Stages returns the attribute stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return []Stage{
		{Name: "foodCategory", Classify: p.Category.Classify},
		{Name: "sourcingIntegrity", Classify: p.Sourcing.Classify},
		{Name: "processingMethod", Classify: p.Processing.Classify},
		{Name: "nutritionalAdequacy", Classify: p.Adequacy.Classify},
	}
}

// Process runs the full pass over one product's text: the four
// attribute stages, the ingredient analysis, nutrient extraction with
// starchy-carb derivation, and brand detection. The base score is left
// nil; scoring is a separate phase.
func (p *Pipeline) Process(text models.ProductText) *models.ProcessedAttributes {
	category := p.Category.Classify(text)
	sourcing := p.Sourcing.Classify(text)
	processing := p.Processing.Classify(text)
	adequacy := p.Adequacy.Classify(text)

	attrs := &models.ProcessedAttributes{
		FoodCategory:       models.FoodCategory(category.Category),
		FoodCategoryReason: category.Reason,

		SourcingIntegrity:       models.SourcingIntegrity(sourcing.Category),
		SourcingIntegrityReason: sourcing.Reason,

		ProcessingMethod:          models.ProcessingMethod(processing.Category),
		SecondaryProcessingMethod: models.ProcessingMethod(processing.Secondary),
		ProcessingMethodReason:    processing.Reason,

		NutritionallyAdequate:       models.NutritionallyAdequate(adequacy.Category),
		NutritionallyAdequateReason: adequacy.Reason,

		Ingredients: p.Ingredients.Analyze(text.Ingredients),
		Brand:       p.Brand.Detect(text),

		ProcessorVersion: p.version,
	}

	attrs.Nutrients = nutrition.Extract(text)
	attrs.Nutrients.StarchyCarbPct = nutrition.DeriveStarchyCarbs(attrs.Nutrients, attrs.FoodCategory)

	return attrs
}

// BatchItem is one record's outcome from RunBatch.
type BatchItem struct {
	Record     models.ProductDetail
	Attributes *models.ProcessedAttributes
	Err        error
}

// RunBatch processes records over a bounded worker pool. Records are
// independent, so there is no ordering requirement; one record's
// failure is captured on its item and never aborts the rest.
func (p *Pipeline) RunBatch(records []models.ProductDetail, concurrency int) []BatchItem {
	if len(records) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(records) {
		concurrency = len(records)
	}

	items := make([]BatchItem, len(records))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				items[i] = p.processOne(records[i])
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return items
}

func (p *Pipeline) processOne(record models.ProductDetail) (item BatchItem) {
	item.Record = record
	defer func() {
		if r := recover(); r != nil {
			item.Attributes = nil
			item.Err = fmt.Errorf("classification panicked for product detail %d: %v", record.ID, r)
		}
	}()

	item.Attributes = p.Process(record.Text())
	item.Attributes.ProductDetailID = record.ID
	return item
}
