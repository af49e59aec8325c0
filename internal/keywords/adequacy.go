// internal/keywords/adequacy.go
package keywords

import "petfood-workers/internal/models"

// adequacyTable drives the nutritional-adequacy classifier. The
// classifier checks the No variant first: an intermittent-feeding
// disclaimer overrides a complete-and-balanced mention elsewhere.
var adequacyTable = Table{
	string(models.AdequateNo): {
		Main: []string{
			"not complete and balanced",
			"not a complete and balanced",
			"intermittent or supplemental feeding only",
			"intermittent and supplemental feeding",
			"for supplemental feeding only",
			"for intermittent feeding only",
			"not intended as a sole diet",
			"treat or topper",
			"food topper",
			"meal topper",
		},
		Supporting: []string{
			"supplemental feeding",
			"intermittent feeding",
			"topper",
			"mixer",
			"treats only",
			"not for long-term feeding",
		},
	},
	string(models.AdequateYes): {
		Main: []string{
			"complete and balanced",
			"complete & balanced",
			"100% complete and balanced",
			"complete and balanced nutrition",
			"aafco",
			"meets aafco",
			"aafco dog food nutrient profiles",
			"aafco cat food nutrient profiles",
			"formulated to meet the nutritional levels established by the aafco",
			"animal feeding tests using aafco procedures",
			"fediaf",
		},
		Supporting: []string{
			"all life stages",
			"for all life stages",
			"adult maintenance",
			"growth and reproduction",
			"complete nutrition",
			"balanced nutrition",
			"nutritionally complete",
			"sole diet",
		},
	},
}
