// internal/classifier/generic.go
package classifier

import (
	"fmt"
	"strings"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

// Confidence constants shared by every keyword classifier. The
// ordering main > supporting > partial > default is part of the
// classifier contract, not an accident of table layout.
const (
	ConfidenceMain    = 1.0
	ConfidencePhrase  = 0.8
	ConfidencePartial = 0.55
	ConfidenceDefault = 0.5
)

// variantSet is one taxonomy variant's compiled vocabulary.
type variantSet struct {
	name       string
	main       []string
	supporting []string
}

// genericClassifier scores every variant against the text and picks
// the best. Variants are held in priority order: on a tied score the
// earlier variant wins, which is how the adequacy classifier lets a
// "not complete and balanced" disclaimer beat the positive phrase it
// contains.
type genericClassifier struct {
	attribute    string
	variants     []variantSet
	defaultName  string
	allowPartial bool
}

// newGenericClassifier compiles table vocabulary for the named
// variants, normalizing every keyword once up front. Variants missing
// from the table are skipped.
func newGenericClassifier(attribute string, table keywords.Table, priority []string, defaultName string, allowPartial bool) *genericClassifier {
	g := &genericClassifier{
		attribute:    attribute,
		defaultName:  defaultName,
		allowPartial: allowPartial,
	}
	for _, name := range priority {
		set, ok := table[name]
		if !ok {
			continue
		}
		g.variants = append(g.variants, variantSet{
			name:       name,
			main:       normalizeAll(set.Main),
			supporting: normalizeAll(set.Supporting),
		})
	}
	return g
}

func normalizeAll(kws []string) []string {
	out := make([]string, 0, len(kws))
	for _, kw := range kws {
		if n := Normalize(kw); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// variantScore holds one variant's best evidence against a text.
type variantScore struct {
	name    string
	score   float64
	matched []string
}

// scoreVariant returns the best confidence any of the variant's
// keywords achieves, with every keyword that reached it.
func (g *genericClassifier) scoreVariant(text string, v variantSet) variantScore {
	best := variantScore{name: v.name}
	record := func(kw string, score float64) {
		switch {
		case score > best.score:
			best.score = score
			best.matched = []string{kw}
		case score == best.score && score > 0:
			best.matched = append(best.matched, kw)
		}
	}

	for _, kw := range v.main {
		if Match(text, kw) != MatchNone {
			record(kw, ConfidenceMain)
		}
	}
	for _, kw := range v.supporting {
		if Match(text, kw) != MatchNone {
			record(kw, ConfidencePhrase)
		} else if g.allowPartial && MatchPartialWords(text, kw) {
			record(kw, ConfidencePartial)
		}
	}
	return best
}

// classify runs the full contest over already-combined text.
func (g *genericClassifier) classify(text string) models.ClassificationResult {
	if text == "" {
		return models.ClassificationResult{
			Category:   g.defaultName,
			Confidence: ConfidenceDefault,
			Reason:     fmt.Sprintf("No text available for %s classification", g.attribute),
		}
	}

	winner := variantScore{}
	for _, v := range g.variants {
		s := g.scoreVariant(text, v)
		if s.score > winner.score {
			winner = s
		}
	}

	if winner.score == 0 {
		return models.ClassificationResult{
			Category:   g.defaultName,
			Confidence: ConfidenceDefault,
			Reason:     fmt.Sprintf("No %s indicators found in product text", g.attribute),
		}
	}

	return models.ClassificationResult{
		Category:        winner.name,
		Confidence:      winner.score,
		MatchedKeywords: winner.matched,
		Reason: fmt.Sprintf("Classified as %s %s based on: %s",
			winner.name, g.attribute, strings.Join(winner.matched, ", ")),
	}
}
