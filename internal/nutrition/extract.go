// Package nutrition extracts guaranteed-analysis percentages from
// product text and derives the starchy-carbohydrate share. It works on
// raw lower-cased text, not the classifier normalization, because the
// trailing % sign is load-bearing here.
package nutrition

import (
	"regexp"
	"strconv"
	"strings"

	"petfood-workers/internal/models"
)

// defaultAshPct is assumed when no ash percentage can be extracted.
const defaultAshPct = 6.0

// Each nutrient gets a two-tier pattern list: the "crude X" form used
// on guaranteed-analysis panels first, then the bare nutrient word.
// The first parsable %-suffixed number wins.
var (
	proteinPatterns = []*regexp.Regexp{
		regexp.MustCompile(`crude\s+protein.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
		regexp.MustCompile(`protein.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
	}
	fatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`crude\s+fat.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
		regexp.MustCompile(`fat.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
	}
	fiberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`crude\s+fiber.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
		regexp.MustCompile(`fiber.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
	}
	moisturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`moisture.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
	}
	ashPatterns = []*regexp.Regexp{
		regexp.MustCompile(`crude\s+ash.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
		regexp.MustCompile(`ash.*?([0-9][0-9,]*(?:\.[0-9]+)?)\s*%`),
	}
)

// Extract scans the product text fields in priority order (guaranteed
// analysis first, the name last) and pulls out the crude percentages.
// Ash falls back to the default when absent; everything else stays nil
// when not found.
func Extract(text models.ProductText) models.NutrientProfile {
	search := buildSearchText(text)

	profile := models.NutrientProfile{
		CrudeProteinPct: extractFirst(search, proteinPatterns),
		CrudeFatPct:     extractFirst(search, fatPatterns),
		CrudeFiberPct:   extractFirst(search, fiberPatterns),
		MoisturePct:     extractFirst(search, moisturePatterns),
		AshPct:          extractFirst(search, ashPatterns),
	}
	if profile.AshPct == nil {
		ash := defaultAshPct
		profile.AshPct = &ash
	}
	return profile
}

// buildSearchText joins the non-empty fields lower-cased, guaranteed
// analysis first. Field order decides which occurrence a pattern sees
// first, so keep the analysis panel ahead of marketing copy.
func buildSearchText(text models.ProductText) string {
	fields := []string{
		text.GuaranteedAnalysis,
		text.Details,
		text.MoreDetails,
		text.Specifications,
		text.Name,
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, strings.ToLower(f))
		}
	}
	return strings.Join(parts, " ")
}

// extractFirst runs the tiered patterns in order and returns the first
// parsable capture.
func extractFirst(search string, patterns []*regexp.Regexp) *float64 {
	if search == "" {
		return nil
	}
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(search, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			return &v
		}
	}
	return nil
}
