// internal/classifier/brand.go
package classifier

import (
	"fmt"
	"sort"
	"strings"

	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

const (
	// fuzzyThreshold is the minimum Ratcliff-Obershelp ratio for the
	// last-resort fuzzy tier.
	fuzzyThreshold = 0.45
	// fuzzyPrefixPad bounds how far past the brand's own length the
	// compared name prefix extends.
	fuzzyPrefixPad = 20
)

type brandEntry struct {
	display string
	norm    string
}

// BrandDetector matches a product against the known-brand list through
// four tiers: name prefix, name contains, fallback-field contains, and
// fuzzy similarity against a bounded name prefix. Longer brand names
// always win over shorter ones within a tier.
type BrandDetector struct {
	brands []brandEntry
}

func NewBrandDetector(lib *keywords.Library) *BrandDetector {
	d := &BrandDetector{}
	for _, b := range lib.Brands {
		if n := Normalize(b); n != "" {
			d.brands = append(d.brands, brandEntry{display: b, norm: n})
		}
	}
	sort.SliceStable(d.brands, func(i, j int) bool {
		return len(d.brands[i].norm) > len(d.brands[j].norm)
	})
	return d
}

func (d *BrandDetector) Detect(text models.ProductText) models.BrandDetection {
	name := Normalize(text.Name)

	if name != "" {
		for _, b := range d.brands {
			if strings.HasPrefix(name, b.norm) {
				return models.BrandDetection{
					Brand:      b.display,
					Confidence: models.BrandConfidenceHigh,
					Method:     models.BrandMethodStartsWith,
					Reason:     fmt.Sprintf("Brand found at start of product name: '%s'", b.display),
				}
			}
		}
		for _, b := range d.brands {
			if strings.Contains(name, b.norm) {
				return models.BrandDetection{
					Brand:      b.display,
					Confidence: models.BrandConfidenceMedium,
					Method:     models.BrandMethodContains,
					Reason:     fmt.Sprintf("Brand found in product name: '%s'", b.display),
				}
			}
		}
	}

	fallback := CombineFields(text.Details, text.Specifications, text.Ingredients, text.MoreDetails)
	if fallback != "" {
		for _, b := range d.brands {
			if strings.Contains(fallback, b.norm) {
				return models.BrandDetection{
					Brand:      b.display,
					Confidence: models.BrandConfidenceMedium,
					Method:     models.BrandMethodFallback,
					Reason:     "Brand found in details/specifications/ingredients",
				}
			}
		}
	}

	if name != "" {
		var best *brandEntry
		bestRatio := 0.0
		for i := range d.brands {
			b := &d.brands[i]
			prefix := name
			if limit := len(b.norm) + fuzzyPrefixPad; len(prefix) > limit {
				prefix = prefix[:limit]
			}
			if r := similarity(b.norm, prefix); r > bestRatio {
				bestRatio = r
				best = b
			}
		}
		if best != nil && bestRatio >= fuzzyThreshold {
			return models.BrandDetection{
				Brand:      best.display,
				Confidence: models.BrandConfidenceLow,
				Method:     models.BrandMethodFuzzy,
				Reason:     fmt.Sprintf("Brand fuzzy-matched with similarity %.2f: '%s'", bestRatio, best.display),
			}
		}
	}

	return models.BrandDetection{
		Confidence: models.BrandConfidenceNone,
		Method:     models.BrandMethodNone,
		Reason:     fmt.Sprintf("No brand detected from product name: '%s'", text.Name),
	}
}

// similarity is the Ratcliff-Obershelp ratio of two normalized strings:
// twice the matching character count over the combined length.
func similarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return 2 * float64(commonChars(a, b)) / float64(len(a)+len(b))
}

// commonChars counts the longest common substring, then recurses into
// the unmatched pieces on each side of it.
func commonChars(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size + commonChars(a[:ai], b[:bi]) + commonChars(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b string) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}
