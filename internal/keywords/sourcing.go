// internal/keywords/sourcing.go
package keywords

import "petfood-workers/internal/models"

// sourcingTable drives the sourcing-integrity classifier. The organic
// variant is only awarded when the classifier also finds independent
// human-grade evidence; see the compound rule in internal/classifier.
var sourcingTable = Table{
	string(models.SourcingHumanGradeOrganic): {
		Main: []string{
			"human grade organic",
			"human-grade organic",
			"organic human grade",
			"organic human-grade",
			"certified organic human grade",
			"usda organic human grade",
		},
		Supporting: []string{
			"usda organic",
			"certified organic",
			"organic certified",
			"100% organic",
			"certified organic ingredients",
		},
	},
	string(models.SourcingHumanGrade): {
		Main: []string{
			"human grade",
			"human-grade",
			"human grade ingredients",
			"human-grade ingredients",
			"human edible",
			"fit for human consumption",
			"human quality ingredients",
			"human food grade",
		},
		Supporting: []string{
			"usda inspected",
			"usda-inspected",
			"made in a human food facility",
			"human food facility",
			"restaurant quality",
			"usda certified meat",
			"sourced from human food suppliers",
		},
	},
	string(models.SourcingFeedGrade): {
		Main: []string{
			"feed grade",
			"feed-grade",
			"animal feed grade",
		},
		Supporting: []string{
			"by-product meal",
			"by-products",
			"byproduct meal",
			"meat meal",
			"meat and bone meal",
			"animal digest",
			"rendered",
			"rendered fat",
			"poultry meal",
			"animal by-product",
		},
	},
}
