// Package keywords holds the versioned vocabulary tables the attribute
// classifiers match against. The tables compiled into this package are
// the defaults; Load overlays JSON table files on top of them so the
// taxonomy can be updated without touching matching code.
package keywords

import "petfood-workers/internal/models"

// Set is the vocabulary for one taxonomy variant. Main keywords decide
// a classification on their own; Supporting keywords only corroborate.
type Set struct {
	Main       []string `json:"main"`
	Supporting []string `json:"supporting"`
}

// Table maps a taxonomy variant literal to its vocabulary.
type Table map[string]Set

// TierTable maps a quality tier to its vocabulary within one macro group.
type TierTable map[models.QualityTier]Set

// IngredientTables carries the four macro-group tier tables. The fat
// table has no Moderate tier; matching skips missing tiers.
type IngredientTables struct {
	Protein TierTable `json:"protein"`
	Fat     TierTable `json:"fat"`
	Carb    TierTable `json:"carb"`
	Fiber   TierTable `json:"fiber"`
}

// GroupList maps a watchlist group name to its keywords.
type GroupList map[string][]string

// Library is one complete, versioned set of vocabulary tables.
type Library struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`

	Category   Table `json:"category"`
	Sourcing   Table `json:"sourcing"`
	Processing Table `json:"processing"`
	Adequacy   Table `json:"adequacy"`

	Ingredients IngredientTables `json:"ingredients"`

	DirtyDozen GroupList `json:"dirtyDozen"`
	Synthetic  GroupList `json:"synthetic"`
	Longevity  GroupList `json:"longevity"`

	Brands []string `json:"brands"`
}

// Default returns the compiled-in library.
func Default() *Library {
	return &Library{
		Version:     builtinVersion,
		LastUpdated: builtinLastUpdated,
		Category:    categoryTable,
		Sourcing:    sourcingTable,
		Processing:  processingTable,
		Adequacy:    adequacyTable,
		Ingredients: IngredientTables{
			Protein: proteinTiers,
			Fat:     fatTiers,
			Carb:    carbTiers,
			Fiber:   fiberTiers,
		},
		DirtyDozen: dirtyDozenGroups,
		Synthetic:  syntheticGroups,
		Longevity:  longevityGroups,
		Brands:     brandNames,
	}
}

const (
	builtinVersion     = "1.0.0"
	builtinLastUpdated = "2026-07-01"
)
