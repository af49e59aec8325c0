// internal/keywords/category.go
package keywords

import "petfood-workers/internal/models"

// categoryTable drives the food-category classifier. Keys are the
// FoodCategory literals; the classifier falls back to Other when
// nothing here matches.
var categoryTable = Table{
	string(models.FoodCategoryDry): {
		Main: []string{
			"kibble",
			"dry food",
			"dry dog food",
			"dry cat food",
			"dry puppy food",
			"dry kitten food",
			"dry recipe",
			"dry formula",
			"dry diet",
			"oven-baked kibble",
			"baked kibble",
			"crunchy kibble",
			"cold pressed food",
		},
		Supporting: []string{
			"crunchy",
			"croquette",
			"crunchy texture",
			"biscuit",
			"resealable bag",
			"kibble size",
		},
	},
	string(models.FoodCategoryWet): {
		Main: []string{
			"wet food",
			"wet dog food",
			"wet cat food",
			"canned food",
			"canned dog food",
			"canned cat food",
			"in gravy",
			"in broth",
			"in sauce",
			"pate",
			"wet recipe",
			"wet formula",
			"canned recipe",
		},
		Supporting: []string{
			"canned",
			"gravy",
			"broth",
			"stew",
			"chunks",
			"shreds",
			"cuts",
			"loaf",
			"minced",
			"morsels",
			"pull-tab can",
			"easy-open can",
			"bpa-free can",
		},
	},
	string(models.FoodCategoryRaw): {
		Main: []string{
			"raw food",
			"raw diet",
			"raw dog food",
			"raw cat food",
			"raw frozen",
			"frozen raw",
			"freeze-dried raw",
			"freeze dried raw",
			"raw recipe",
			"raw formula",
			"raw nuggets",
			"raw patties",
			"raw medallions",
			"prey model",
			"biologically appropriate raw",
		},
		Supporting: []string{
			"raw",
			"uncooked",
			"never cooked",
			"high pressure processing",
			"high-pressure processed",
			"hpp",
			"raw coated",
			"raw boost",
		},
	},
	string(models.FoodCategoryFresh): {
		Main: []string{
			"fresh food",
			"fresh dog food",
			"fresh cat food",
			"freshly cooked",
			"gently cooked",
			"lightly cooked",
			"fresh recipe",
			"fresh formula",
			"home cooked",
			"home-style cooked",
			"fresh-cooked meals",
			"refrigerated meals",
		},
		Supporting: []string{
			"fresh",
			"refrigerated",
			"keep refrigerated",
			"cooked in small batches",
			"delivered fresh",
			"fridge",
		},
	},
	string(models.FoodCategorySoft): {
		Main: []string{
			"soft food",
			"soft chew",
			"soft chews",
			"semi-moist",
			"semi moist",
			"soft and chewy",
			"soft & chewy",
			"soft baked",
			"soft-baked",
			"tender bites",
			"soft morsels",
		},
		Supporting: []string{
			"chewy",
			"chewy texture",
			"tender",
			"moist texture",
			"easy to chew",
			"for senior dogs with dental issues",
		},
	},
}
