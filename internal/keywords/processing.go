// internal/keywords/processing.go
package keywords

import "petfood-workers/internal/models"

// processingTable drives the processing-method classifier. Every method
// is scored independently (main hit +5, supporting +2, negated hits
// invert); the classifier's disambiguation rules resolve the overlaps
// between methods that share vocabulary, so keep overlapping keywords
// here rather than trying to make the sets disjoint.
var processingTable = Table{
	string(models.ProcessingExtruded): {
		Main: []string{
			"extruded",
			"extrusion",
			"extrusion cooked",
		},
		Supporting: []string{
			"kibble",
			"pellets",
			"expanded",
		},
	},
	string(models.ProcessingBaked): {
		Main: []string{
			"oven baked",
			"oven-baked",
			"slow baked",
			"slow-baked",
			"gently baked",
			"baked",
		},
		Supporting: []string{
			"biscuit",
			"baked in small batches",
			"bakery",
		},
	},
	string(models.ProcessingRetorted): {
		Main: []string{
			"retorted",
			"retort pouch",
			"retort processed",
			"canned",
			"canning process",
			"sterilized",
		},
		Supporting: []string{
			"gravy",
			"broth",
			"pate",
			"stew",
			"in its own juices",
			"shelf-stable",
			"pull-tab can",
			"tetra pak",
		},
	},
	string(models.ProcessingFreezeDried): {
		Main: []string{
			"freeze dried",
			"freeze-dried",
			"freeze drying",
			"lyophilized",
		},
		Supporting: []string{
			"just add water",
			"rehydrate",
			"rehydrate with water",
			"sublimation",
			"shelf-stable raw",
		},
	},
	string(models.ProcessingAirDried): {
		Main: []string{
			"air dried",
			"air-dried",
			"air drying",
			"slow air dried",
		},
		Supporting: []string{
			"gently dried",
			"dried at low temperatures",
			"jerky-like texture",
		},
	},
	string(models.ProcessingDehydrated): {
		Main: []string{
			"dehydrated",
			"dehydration",
			"gently dehydrated",
		},
		Supporting: []string{
			"just add warm water",
			"dried",
			"low heat",
			"warm air dried",
		},
	},
	string(models.ProcessingUncookedNotFrozen): {
		Main: []string{
			"uncooked",
			"never cooked",
			"not cooked",
			"raw",
		},
		Supporting: []string{
			"high pressure processing",
			"high-pressure processed",
			"hpp",
			"cold pressure",
			"cold-pressure processed",
			"minimally processed",
		},
	},
	string(models.ProcessingUncookedFrozen): {
		Main: []string{
			"frozen raw",
			"raw frozen",
			"keep frozen",
			"sold frozen",
			"frozen fresh",
		},
		Supporting: []string{
			"frozen",
			"freezer",
			"thaw",
			"thaw before serving",
			"defrost",
			"serve thawed",
		},
	},
	string(models.ProcessingUncookedFlashFrozen): {
		Main: []string{
			"flash frozen",
			"flash-frozen",
			"individually quick frozen",
			"quick frozen",
			"iqf",
		},
		Supporting: []string{
			"frozen at peak freshness",
			"frozen within hours",
		},
	},
	string(models.ProcessingLightlyCookedNotFrozen): {
		Main: []string{
			"lightly cooked",
			"gently cooked",
			"sous vide",
			"sous-vide",
			"low temperature cooked",
			"minimally cooked",
		},
		Supporting: []string{
			"cooked in small batches",
			"cooked at low temperatures",
			"slow cooked",
			"lightly steamed",
			"kettle cooked",
		},
	},
	string(models.ProcessingLightlyCookedFrozen): {
		Main: []string{
			"gently cooked and frozen",
			"lightly cooked and frozen",
			"cooked then frozen",
			"frozen after cooking",
		},
		Supporting: []string{
			"frozen",
			"keep frozen",
			"thaw before serving",
			"freezer to bowl",
		},
	},
}
