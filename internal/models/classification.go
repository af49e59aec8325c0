// internal/models/classification.go
package models

import "time"

// ClassificationResult is the uniform output shape shared by every
// attribute classifier. Category holds the winning taxonomy variant as
// its literal string; Confidence is always within [0, 1].
type ClassificationResult struct {
	Category        string   `json:"category"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
	Reason          string   `json:"reason"`

	// Secondary is only populated by the processing-method classifier,
	// e.g. a Frozen follow-up to an Uncooked primary.
	Secondary string `json:"secondary,omitempty"`
}

// BrandDetection reports which brand a product belongs to and how the
// match was made. Confidence is a label, not a number: the detection
// tiers are ordinal, not comparable across methods.
type BrandDetection struct {
	Brand      string `json:"brand"`
	Confidence string `json:"confidence"` // high, medium, low, none
	Method     string `json:"method"`     // starts_with, contains, fallback, fuzzy, none
	Reason     string `json:"reason"`
}

const (
	BrandConfidenceHigh   = "high"
	BrandConfidenceMedium = "medium"
	BrandConfidenceLow    = "low"
	BrandConfidenceNone   = "none"

	BrandMethodStartsWith = "starts_with"
	BrandMethodContains   = "contains"
	BrandMethodFallback   = "fallback"
	BrandMethodFuzzy      = "fuzzy"
	BrandMethodNone       = "none"
)

// IngredientClassification is the verdict for a single ingredient
// token from a comma-separated ingredient list.
type IngredientClassification struct {
	Ingredient      string      `json:"ingredient"`
	MacroGroup      MacroGroup  `json:"macroGroup"`
	Tier            QualityTier `json:"tier"`
	MatchedKeywords []string    `json:"matchedKeywords,omitempty"`
}

// CategoryRollup aggregates one macro group's ingredient verdicts into
// per-tier lists plus a weighted overall tier.
type CategoryRollup struct {
	Group       MacroGroup  `json:"group"`
	High        []string    `json:"high,omitempty"`
	Good        []string    `json:"good,omitempty"`
	Moderate    []string    `json:"moderate,omitempty"`
	Low         []string    `json:"low,omitempty"`
	WeightedAvg float64     `json:"weightedAvg"`
	Tier        QualityTier `json:"tier"`
}

// Counts returns the per-tier ingredient counts (high, good, moderate, low).
func (r CategoryRollup) Counts() (int, int, int, int) {
	return len(r.High), len(r.Good), len(r.Moderate), len(r.Low)
}

// Total is the number of classified ingredients in the group.
func (r CategoryRollup) Total() int {
	return len(r.High) + len(r.Good) + len(r.Moderate) + len(r.Low)
}

// AdditiveDetection lists ingredients matched against a watchlist
// (dirty dozen, synthetic nutrients, longevity boosters).
type AdditiveDetection struct {
	Ingredients []string `json:"ingredients"`
	Count       int      `json:"count"`
}

// IngredientAnalysis is the full output of the ingredient pass: one
// rollup per macro group plus the three watchlist detections.
type IngredientAnalysis struct {
	Protein    CategoryRollup    `json:"protein"`
	Fat        CategoryRollup    `json:"fat"`
	Carb       CategoryRollup    `json:"carb"`
	Fiber      CategoryRollup    `json:"fiber"`
	DirtyDozen AdditiveDetection `json:"dirtyDozen"`
	Synthetic  AdditiveDetection `json:"synthetic"`
	Longevity  AdditiveDetection `json:"longevity"`
}

// NutrientProfile holds the guaranteed-analysis percentages pulled out
// of the product text. Nil means the value could not be extracted; Ash
// defaults to 6.0 when absent so it is never nil after extraction.
type NutrientProfile struct {
	CrudeProteinPct *float64 `json:"crudeProteinPct,omitempty"`
	CrudeFatPct     *float64 `json:"crudeFatPct,omitempty"`
	CrudeFiberPct   *float64 `json:"crudeFiberPct,omitempty"`
	MoisturePct     *float64 `json:"moisturePct,omitempty"`
	AshPct          *float64 `json:"ashPct,omitempty"`
	StarchyCarbPct  *float64 `json:"starchyCarbPct,omitempty"`
}

// ProcessedAttributes is the persisted outcome of a full classification
// pass over one product. BaseScore stays nil whenever a blocking factor
// kept the score from being computed; ReviewReasons then says why.
type ProcessedAttributes struct {
	ProductDetailID int64 `json:"productDetailId"`

	FoodCategory       FoodCategory `json:"foodCategory"`
	FoodCategoryReason string       `json:"foodCategoryReason,omitempty"`

	SourcingIntegrity       SourcingIntegrity `json:"sourcingIntegrity"`
	SourcingIntegrityReason string            `json:"sourcingIntegrityReason,omitempty"`

	ProcessingMethod          ProcessingMethod `json:"processingMethod"`
	SecondaryProcessingMethod ProcessingMethod `json:"secondaryProcessingMethod,omitempty"`
	ProcessingMethodReason    string           `json:"processingMethodReason,omitempty"`

	NutritionallyAdequate       NutritionallyAdequate `json:"nutritionallyAdequate"`
	NutritionallyAdequateReason string                `json:"nutritionallyAdequateReason,omitempty"`

	Ingredients IngredientAnalysis `json:"ingredients"`
	Nutrients   NutrientProfile    `json:"nutrients"`
	Brand       BrandDetection     `json:"brand"`

	BaseScore     *float64 `json:"baseScore,omitempty"`
	NeedsReview   bool     `json:"needsReview"`
	ReviewReasons []string `json:"reviewReasons,omitempty"`

	ProcessorVersion string    `json:"processorVersion"`
	ProcessedAt      time.Time `json:"processedAt"`
}
