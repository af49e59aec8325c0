// internal/classifier/processing.go
package classifier

import (
	"fmt"
	"strings"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

// Scoring weights for the processing-method contest. A negated hit
// counts against the method at reduced magnitude instead of just
// cancelling, so "never frozen" actively pushes the frozen variants
// down.
const (
	mainHitScore           = 5
	supportingHitScore     = 2
	mainNegatedScore       = -3
	supportingNegatedScore = -1

	// winThreshold is the minimum net score unless the method has a
	// non-negated main hit.
	winThreshold = 3

	negationLookback = 4
)

// negationMarkers negate a keyword occurring within the lookback
// window after them. "non" and "un" appear as tokens because hyphens
// split: "non-extruded" tokenizes to "non", "extruded".
var negationMarkers = map[string]bool{
	"no":      true,
	"not":     true,
	"never":   true,
	"without": true,
	"non":     true,
	"un":      true,
}

// processingPriority fixes both the method iteration order and the
// tie-break: specific variants come before the generic ones they
// overlap with.
var processingPriority = []string{
	string(models.ProcessingUncookedFlashFrozen),
	string(models.ProcessingUncookedFrozen),
	string(models.ProcessingUncookedNotFrozen),
	string(models.ProcessingLightlyCookedFrozen),
	string(models.ProcessingLightlyCookedNotFrozen),
	string(models.ProcessingFreezeDried),
	string(models.ProcessingAirDried),
	string(models.ProcessingDehydrated),
	string(models.ProcessingRetorted),
	string(models.ProcessingBaked),
	string(models.ProcessingExtruded),
}

// terminal methods never carry a secondary method.
var terminalMethods = map[string]bool{
	string(models.ProcessingFreezeDried): true,
	string(models.ProcessingAirDried):    true,
	string(models.ProcessingDehydrated):  true,
	string(models.ProcessingBaked):       true,
	string(models.ProcessingExtruded):    true,
	string(models.ProcessingRetorted):    true,
}

type methodSet struct {
	name       string
	main       []string
	supporting []string
}

type methodScore struct {
	name     string
	score    int
	mainHits int
	suppHits int
	negated  int
	matched  []string
}

// clears reports whether the method stands on its own evidence.
func (m methodScore) clears() bool {
	return m.score >= winThreshold || m.mainHits > 0
}

// ProcessingClassifier scores every processing method against the
// text, applies the fixed disambiguation rules in order, and may
// attach a secondary method to the non-terminal winners.
type ProcessingClassifier struct {
	methods []methodSet
	rules   []disambiguationRule
}

type disambiguationRule struct {
	name  string
	apply func(text string, scores map[string]methodScore, winner string) string
}

func NewProcessingClassifier(lib *keywords.Library) *ProcessingClassifier {
	c := &ProcessingClassifier{}
	for _, name := range processingPriority {
		set, ok := lib.Processing[name]
		if !ok {
			continue
		}
		c.methods = append(c.methods, methodSet{
			name:       name,
			main:       normalizeAll(set.Main),
			supporting: normalizeAll(set.Supporting),
		})
	}
	c.rules = disambiguationRules()
	return c
}

// Classify runs the contest over the name, listed category and
// descriptive fields.
func (c *ProcessingClassifier) Classify(text models.ProductText) models.ClassificationResult {
	combined := CombineFields(text.Name, text.Category, text.Details, text.MoreDetails, text.Specifications)
	return c.classifyText(combined)
}

func (c *ProcessingClassifier) classifyText(combined string) models.ClassificationResult {
	other := string(models.ProcessingOther)
	if combined == "" {
		return models.ClassificationResult{
			Category:   other,
			Confidence: ConfidenceDefault,
			Reason:     "No text available for processing method classification",
		}
	}

	scores := make(map[string]methodScore, len(c.methods))
	winner := methodScore{name: other}
	for _, m := range c.methods {
		s := c.scoreMethod(combined, m)
		scores[s.name] = s
		if s.score > winner.score {
			winner = s
		}
	}

	if winner.name == other || !winner.clears() {
		return models.ClassificationResult{
			Category:   other,
			Confidence: ConfidenceDefault,
			Reason:     "No processing method indicators found in product text",
		}
	}

	final := winner.name
	for _, rule := range c.rules {
		final = rule.apply(combined, scores, final)
	}
	result := scores[final]

	reason := fmt.Sprintf("Classified as %s based on: %s", final, strings.Join(result.matched, ", "))
	if final != winner.name {
		reason = fmt.Sprintf("Preferred %s over %s", final, winner.name)
		if len(result.matched) > 0 {
			reason += " based on: " + strings.Join(result.matched, ", ")
		}
	}

	return models.ClassificationResult{
		Category:        final,
		Confidence:      stepConfidence(result.score, result.mainHits+result.suppHits),
		MatchedKeywords: result.matched,
		Reason:          reason,
		Secondary:       secondaryFor(final, scores),
	}
}

// scoreMethod evaluates the first occurrence of each keyword.
func (c *ProcessingClassifier) scoreMethod(text string, m methodSet) methodScore {
	s := methodScore{name: m.name}
	for _, kw := range m.main {
		kind, pos := MatchAt(text, kw)
		if kind == MatchNone {
			continue
		}
		if isNegated(text, pos) {
			s.score += mainNegatedScore
			s.negated++
		} else {
			s.score += mainHitScore
			s.mainHits++
			s.matched = append(s.matched, kw)
		}
	}
	for _, kw := range m.supporting {
		kind, pos := MatchAt(text, kw)
		if kind == MatchNone {
			continue
		}
		if isNegated(text, pos) {
			s.score += supportingNegatedScore
			s.negated++
		} else {
			s.score += supportingHitScore
			s.suppHits++
			s.matched = append(s.matched, kw)
		}
	}
	return s
}

// isNegated checks the lookback window before the match for a negation
// marker. The window never crosses a field separator.
func isNegated(text string, pos int) bool {
	if pos <= 0 {
		return false
	}
	before := text[:pos]
	if i := strings.LastIndexByte(before, '|'); i >= 0 {
		before = before[i+1:]
	}
	tokens := strings.FieldsFunc(before, func(r rune) bool { return !isWordRune(r) })
	start := len(tokens) - negationLookback
	if start < 0 {
		start = 0
	}
	window := tokens[start:]
	for i, tok := range window {
		if negationMarkers[tok] {
			return true
		}
		if tok == "free" && i+1 < len(window) && window[i+1] == "of" {
			return true
		}
	}
	return false
}

// disambiguationRules is the fixed, ordered rule list resolving the
// known keyword overlaps between methods. Order matters; do not
// re-derive these from first principles.
func disambiguationRules() []disambiguationRule {
	extruded := string(models.ProcessingExtruded)
	baked := string(models.ProcessingBaked)
	retorted := string(models.ProcessingRetorted)
	freezeDried := string(models.ProcessingFreezeDried)
	airDried := string(models.ProcessingAirDried)
	dehydrated := string(models.ProcessingDehydrated)
	frozen := string(models.ProcessingUncookedFrozen)
	flashFrozen := string(models.ProcessingUncookedFlashFrozen)
	uncooked := string(models.ProcessingUncookedNotFrozen)
	lightlyCooked := string(models.ProcessingLightlyCookedNotFrozen)

	explicitBaked := []string{"oven baked", "oven-baked", "gently baked", "slow baked", "slow-baked"}

	return []disambiguationRule{
		{
			// Extrusion is the default reading of bare "baked" claims:
			// keep Baked only on an explicit oven/gently/slow-baked
			// phrase with no extruded token anywhere.
			name: "extruded over baked",
			apply: func(text string, scores map[string]methodScore, winner string) string {
				if winner != baked {
					return winner
				}
				explicit := false
				for _, kw := range explicitBaked {
					if Match(text, kw) != MatchNone {
						explicit = true
						break
					}
				}
				if explicit && Match(text, "extruded") == MatchNone {
					return winner
				}
				return extruded
			},
		},
		{
			// Canned/gravy/pate/retort-pouch/sterilized language wins
			// outright once Retorted's own score qualifies.
			name: "retorted wet language",
			apply: func(text string, scores map[string]methodScore, winner string) string {
				if winner == retorted {
					return winner
				}
				if s := scores[retorted]; s.score >= winThreshold && s.mainHits+s.suppHits > 0 {
					return retorted
				}
				return winner
			},
		},
		{
			name: "freeze-dried over frozen",
			apply: func(text string, scores map[string]methodScore, winner string) string {
				if winner != frozen {
					return winner
				}
				if scores[freezeDried].mainHits == 0 {
					return winner
				}
				if Match(text, "keep frozen") != MatchNone || Match(text, "thaw before serving") != MatchNone {
					return winner
				}
				return freezeDried
			},
		},
		{
			// Dehydrated can outscore Air-Dried on generic "dried"
			// supporting hits; a real air-dried main match takes it back.
			name: "air-dried over dehydrated",
			apply: func(text string, scores map[string]methodScore, winner string) string {
				if winner != dehydrated {
					return winner
				}
				if scores[airDried].mainHits > 0 && scores[dehydrated].mainHits == 0 {
					return airDried
				}
				return winner
			},
		},
		{
			name: "lightly-cooked over uncooked",
			apply: func(text string, scores map[string]methodScore, winner string) string {
				if winner != uncooked && winner != frozen && winner != flashFrozen {
					return winner
				}
				if s := scores[lightlyCooked]; s.mainHits > 0 && s.score >= winThreshold {
					return lightlyCooked
				}
				return winner
			},
		},
	}
}

// secondaryFor attaches the composite follow-up method where the text
// supports one. Terminal methods never carry a secondary.
func secondaryFor(winner string, scores map[string]methodScore) string {
	if terminalMethods[winner] {
		return ""
	}
	clears := func(name string) bool { return scores[name].clears() }

	flashFrozen := string(models.ProcessingUncookedFlashFrozen)
	frozen := string(models.ProcessingUncookedFrozen)

	switch winner {
	case string(models.ProcessingUncookedNotFrozen):
		if clears(flashFrozen) {
			return flashFrozen
		}
		if clears(frozen) {
			return frozen
		}
	case frozen:
		if clears(flashFrozen) {
			return flashFrozen
		}
	case string(models.ProcessingLightlyCookedNotFrozen):
		if lcf := string(models.ProcessingLightlyCookedFrozen); clears(lcf) {
			return lcf
		}
	}
	return ""
}

// stepConfidence converts a winning score and its non-negated match
// count into the fixed confidence steps.
func stepConfidence(score, hits int) float64 {
	switch {
	case score >= 12 && hits >= 3:
		return 1.0
	case score >= 10 && hits >= 2:
		return 0.9
	case score >= 7:
		return 0.8
	case score >= 5:
		return 0.7
	case score >= winThreshold:
		return 0.6
	default:
		return ConfidenceDefault
	}
}
