// internal/classifier/ingredients.go
package classifier

import (
	"math"
	"sort"
	"strings"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

// Fixed priorities for the ingredient contest. An ingredient belongs
// to at most one macro group; the first group and tier to claim it win.
var (
	groupPriority = []models.MacroGroup{
		models.MacroProtein,
		models.MacroFat,
		models.MacroCarb,
		models.MacroFiber,
	}
	tierPriority = []models.QualityTier{
		models.TierHigh,
		models.TierGood,
		models.TierModerate,
		models.TierLow,
	}
)

// Weighted-deduction tier weights and thresholds for the per-group
// rollup: weightedAvg = (h*0 + g*2 + m*3 + l*5) / total.
const (
	weightGood     = 2
	weightModerate = 3
	weightLow      = 5

	rollupHighMax     = 1.00
	rollupGoodMax     = 2.00
	rollupModerateMax = 3.50
)

type compiledTier struct {
	tier       models.QualityTier
	main       []string
	supporting []string
}

type compiledGroup struct {
	group models.MacroGroup
	tiers []compiledTier
}

type watchGroup struct {
	name     string
	keywords []string
}

// IngredientClassifier classifies comma-split ingredient lists into
// macro-group quality tiers and runs the three watchlist detectors.
type IngredientClassifier struct {
	groups     []compiledGroup
	dirtyDozen []watchGroup
	synthetic  []string
	longevity  []string
}

func NewIngredientClassifier(lib *keywords.Library) *IngredientClassifier {
	c := &IngredientClassifier{}

	byGroup := map[models.MacroGroup]keywords.TierTable{
		models.MacroProtein: lib.Ingredients.Protein,
		models.MacroFat:     lib.Ingredients.Fat,
		models.MacroCarb:    lib.Ingredients.Carb,
		models.MacroFiber:   lib.Ingredients.Fiber,
	}
	for _, group := range groupPriority {
		cg := compiledGroup{group: group}
		for _, tier := range tierPriority {
			set, ok := byGroup[group][tier]
			if !ok {
				continue
			}
			cg.tiers = append(cg.tiers, compiledTier{
				tier:       tier,
				main:       normalizeAll(set.Main),
				supporting: normalizeAll(set.Supporting),
			})
		}
		c.groups = append(c.groups, cg)
	}

	c.dirtyDozen = compileWatchGroups(lib.DirtyDozen)
	c.synthetic = mergeWatchGroups(lib.Synthetic)
	c.longevity = mergeWatchGroups(lib.Longevity)
	return c
}

// compileWatchGroups keeps groups sorted by name so detection order is
// deterministic regardless of map layout.
func compileWatchGroups(groups keywords.GroupList) []watchGroup {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]watchGroup, 0, len(names))
	for _, name := range names {
		out = append(out, watchGroup{name: name, keywords: normalizeAll(groups[name])})
	}
	return out
}

func mergeWatchGroups(groups keywords.GroupList) []string {
	var merged []string
	for _, g := range compileWatchGroups(groups) {
		merged = append(merged, g.keywords...)
	}
	return merged
}

// SplitIngredients splits a raw comma-separated ingredient list into
// trimmed, non-empty entries, preserving order and casing.
func SplitIngredients(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ClassifyIngredient assigns one ingredient to a macro group and tier.
// All main keywords across every group and tier are tried before any
// supporting keyword, so "chicken by-product meal" (Low main) can never
// be claimed by the bare "chicken" supporting word at Moderate.
func (c *IngredientClassifier) ClassifyIngredient(ingredient string) models.IngredientClassification {
	result := models.IngredientClassification{
		Ingredient: strings.TrimSpace(ingredient),
		MacroGroup: models.MacroOther,
		Tier:       models.TierOther,
	}
	norm := Normalize(ingredient)
	if norm == "" {
		return result
	}

	for _, g := range c.groups {
		for _, t := range g.tiers {
			for _, kw := range t.main {
				if Match(norm, kw) != MatchNone {
					result.MacroGroup = g.group
					result.Tier = t.tier
					result.MatchedKeywords = []string{kw}
					return result
				}
			}
		}
	}

	for _, g := range c.groups {
		for _, t := range g.tiers {
			var matched []string
			for _, kw := range t.supporting {
				if Match(norm, kw) != MatchNone {
					matched = append(matched, kw)
				}
			}
			if len(matched) > 0 {
				result.MacroGroup = g.group
				result.Tier = t.tier
				result.MatchedKeywords = matched
				return result
			}
		}
	}

	return result
}

// Analyze classifies every ingredient and aggregates the four rollups
// plus the dirty-dozen, synthetic-nutrition and longevity detections.
// Empty input returns empty rollups, every tier Other, zero counts.
func (c *IngredientClassifier) Analyze(ingredientText string) models.IngredientAnalysis {
	analysis := models.IngredientAnalysis{
		Protein: models.CategoryRollup{Group: models.MacroProtein},
		Fat:     models.CategoryRollup{Group: models.MacroFat},
		Carb:    models.CategoryRollup{Group: models.MacroCarb},
		Fiber:   models.CategoryRollup{Group: models.MacroFiber},
	}
	rollups := map[models.MacroGroup]*models.CategoryRollup{
		models.MacroProtein: &analysis.Protein,
		models.MacroFat:     &analysis.Fat,
		models.MacroCarb:    &analysis.Carb,
		models.MacroFiber:   &analysis.Fiber,
	}

	entries := SplitIngredients(ingredientText)
	normalized := make([]string, len(entries))
	for i, raw := range entries {
		normalized[i] = Normalize(raw)

		ic := c.ClassifyIngredient(raw)
		r, ok := rollups[ic.MacroGroup]
		if !ok {
			continue
		}
		switch ic.Tier {
		case models.TierHigh:
			r.High = append(r.High, ic.Ingredient)
		case models.TierGood:
			r.Good = append(r.Good, ic.Ingredient)
		case models.TierModerate:
			r.Moderate = append(r.Moderate, ic.Ingredient)
		case models.TierLow:
			r.Low = append(r.Low, ic.Ingredient)
		}
	}

	for _, r := range rollups {
		finalizeRollup(r)
	}

	analysis.DirtyDozen = c.detectDirtyDozen(normalized)
	analysis.Synthetic = detectByIngredient(entries, normalized, c.synthetic)
	analysis.Longevity = detectByIngredient(entries, normalized, c.longevity)
	return analysis
}

// finalizeRollup derives the weighted average and overall tier from the
// tier counts. A group with nothing classified gets the Other sentinel
// and a zero average.
func finalizeRollup(r *models.CategoryRollup) {
	total := r.Total()
	if total == 0 {
		r.Tier = models.TierOther
		r.WeightedAvg = 0
		return
	}

	weighted := float64(len(r.Good)*weightGood + len(r.Moderate)*weightModerate + len(r.Low)*weightLow)
	avg := weighted / float64(total)
	r.WeightedAvg = math.Round(avg*100) / 100

	switch {
	case avg <= rollupHighMax:
		r.Tier = models.TierHigh
	case avg <= rollupGoodMax:
		r.Tier = models.TierGood
	case avg <= rollupModerateMax:
		r.Tier = models.TierModerate
	default:
		r.Tier = models.TierLow
	}
}

// detectDirtyDozen de-duplicates per group: three corn keywords still
// count Corn once. The result lists group names.
func (c *IngredientClassifier) detectDirtyDozen(normalized []string) models.AdditiveDetection {
	var found []string
	for _, g := range c.dirtyDozen {
		if watchGroupMatches(g, normalized) {
			found = append(found, g.name)
		}
	}
	return models.AdditiveDetection{Ingredients: found, Count: len(found)}
}

func watchGroupMatches(g watchGroup, normalized []string) bool {
	for _, kw := range g.keywords {
		for _, entry := range normalized {
			if Match(entry, kw) != MatchNone {
				return true
			}
		}
	}
	return false
}

// detectByIngredient de-duplicates per literal ingredient string: one
// entry can only be counted once however many keywords it matches.
func detectByIngredient(entries, normalized, kws []string) models.AdditiveDetection {
	var found []string
	seen := make(map[string]bool)
	for i, entry := range normalized {
		if entry == "" || seen[entries[i]] {
			continue
		}
		for _, kw := range kws {
			if Match(entry, kw) != MatchNone {
				found = append(found, entries[i])
				seen[entries[i]] = true
				break
			}
		}
	}
	return models.AdditiveDetection{Ingredients: found, Count: len(found)}
}
