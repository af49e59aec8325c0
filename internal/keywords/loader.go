// internal/keywords/loader.go
package keywords

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// overlayFile is the on-disk table format. Every section is optional;
// a present section replaces the whole compiled-in table it names.
type overlayFile struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`

	Category   Table `json:"category,omitempty"`
	Sourcing   Table `json:"sourcing,omitempty"`
	Processing Table `json:"processing,omitempty"`
	Adequacy   Table `json:"adequacy,omitempty"`

	Ingredients *IngredientTables `json:"ingredients,omitempty"`

	DirtyDozen GroupList `json:"dirtyDozen,omitempty"`
	Synthetic  GroupList `json:"synthetic,omitempty"`
	Longevity  GroupList `json:"longevity,omitempty"`

	Brands []string `json:"brands,omitempty"`
}

// Load returns the compiled defaults with the table file at path
// overlaid. The file is schema-validated before any of it is applied.
func Load(path string) (*Library, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword tables %s: %w", path, err)
	}

	if err := Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid keyword tables %s: %w", path, err)
	}

	var overlay overlayFile
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse keyword tables %s: %w", path, err)
	}

	lib := Default()
	lib.Version = overlay.Version
	if overlay.LastUpdated != "" {
		lib.LastUpdated = overlay.LastUpdated
	}
	if overlay.Category != nil {
		lib.Category = overlay.Category
	}
	if overlay.Sourcing != nil {
		lib.Sourcing = overlay.Sourcing
	}
	if overlay.Processing != nil {
		lib.Processing = overlay.Processing
	}
	if overlay.Adequacy != nil {
		lib.Adequacy = overlay.Adequacy
	}
	if overlay.Ingredients != nil {
		if overlay.Ingredients.Protein != nil {
			lib.Ingredients.Protein = overlay.Ingredients.Protein
		}
		if overlay.Ingredients.Fat != nil {
			lib.Ingredients.Fat = overlay.Ingredients.Fat
		}
		if overlay.Ingredients.Carb != nil {
			lib.Ingredients.Carb = overlay.Ingredients.Carb
		}
		if overlay.Ingredients.Fiber != nil {
			lib.Ingredients.Fiber = overlay.Ingredients.Fiber
		}
	}
	if overlay.DirtyDozen != nil {
		lib.DirtyDozen = overlay.DirtyDozen
	}
	if overlay.Synthetic != nil {
		lib.Synthetic = overlay.Synthetic
	}
	if overlay.Longevity != nil {
		lib.Longevity = overlay.Longevity
	}
	if overlay.Brands != nil {
		lib.Brands = overlay.Brands
	}

	return lib, nil
}

// Validate checks raw table-file bytes against the overlay schema
// without applying them. The keyword-updater tool uses this directly.
func Validate(raw []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(overlaySchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var details []string
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("table file does not match schema: %v", details)
	}
	return nil
}

var stringArraySchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type":      "string",
		"minLength": 1,
	},
}

var setSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"main":       stringArraySchema,
		"supporting": stringArraySchema,
	},
	"additionalProperties": false,
}

var tableSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": setSchema,
}

var groupListSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": stringArraySchema,
}

var overlaySchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"version"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string", "minLength": 1},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"category":    tableSchema,
		"sourcing":    tableSchema,
		"processing":  tableSchema,
		"adequacy":    tableSchema,
		"ingredients": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"protein": tableSchema,
				"fat":     tableSchema,
				"carb":    tableSchema,
				"fiber":   tableSchema,
			},
			"additionalProperties": false,
		},
		"dirtyDozen": groupListSchema,
		"synthetic":  groupListSchema,
		"longevity":  groupListSchema,
		"brands":     stringArraySchema,
	},
	"additionalProperties": false,
}
