// internal/keywords/additives.go
package keywords

// dirtyDozenGroups are the twelve ingredient groups counted against a
// product. Detection de-duplicates per group: matching three corn
// keywords still counts Corn once.
var dirtyDozenGroups = GroupList{
	"BHA": {
		"bha", "butylated hydroxyanisole",
	},
	"BHT": {
		"bht", "butylated hydroxytoluene",
	},
	"Ethoxyquin": {
		"ethoxyquin",
	},
	"Propylene Glycol": {
		"propylene glycol",
	},
	"Artificial Colors": {
		"artificial color", "artificial colors", "artificial coloring",
		"red 40", "red no. 40", "red dye", "yellow 5", "yellow 6",
		"blue 2", "blue no. 2", "fd&c", "caramel color", "titanium dioxide",
	},
	"Corn": {
		"corn", "ground corn", "ground yellow corn", "cornmeal", "corn meal",
		"corn gluten meal", "corn gluten", "corn syrup", "corn starch",
	},
	"Wheat": {
		"wheat", "whole wheat", "wheat flour", "wheat gluten",
		"wheat middlings", "cracked wheat",
	},
	"Soy": {
		"soy", "soybean", "soybean meal", "soy flour", "soy protein",
		"soybean hulls",
	},
	"By-products": {
		"by-product", "by-products", "byproduct", "byproducts",
		"by-product meal", "chicken by-product meal", "poultry by-product meal",
	},
	"Animal Digest": {
		"animal digest", "digest",
	},
	"Rendered Fat": {
		"animal fat", "rendered fat", "poultry fat", "tallow", "lard",
	},
	"Sugar": {
		"sugar", "corn syrup", "cane molasses", "molasses", "sucrose",
		"fructose", "dextrose", "caramel",
	},
}

// syntheticGroups list supplement-style nutrients. Detection
// de-duplicates per literal ingredient string, so a long supplement
// block in a kibble list produces a correspondingly high count.
var syntheticGroups = GroupList{
	"Vitamins": {
		"vitamin a supplement", "vitamin d3 supplement", "vitamin d supplement",
		"vitamin e supplement", "vitamin b12 supplement", "vitamin supplement",
		"niacin", "niacin supplement", "riboflavin", "riboflavin supplement",
		"thiamine mononitrate", "pyridoxine hydrochloride", "folic acid",
		"biotin", "menadione", "menadione sodium bisulfite complex",
		"ascorbic acid", "l-ascorbyl-2-polyphosphate",
		"d-calcium pantothenate", "calcium pantothenate", "choline chloride",
		"beta carotene supplement",
	},
	"Amino Acids": {
		"dl-methionine", "l-lysine", "l-lysine monohydrochloride",
		"l-threonine", "l-tryptophan", "l-carnitine", "l-cysteine",
		"taurine",
	},
	"Minerals": {
		"zinc sulfate", "zinc oxide", "zinc proteinate",
		"ferrous sulfate", "iron proteinate", "iron oxide",
		"copper sulfate", "copper proteinate",
		"manganese sulfate", "manganous oxide", "manganese proteinate",
		"sodium selenite", "selenium yeast", "calcium iodate",
		"potassium iodide", "cobalt carbonate", "cobalt proteinate",
		"dicalcium phosphate", "monocalcium phosphate", "calcium carbonate",
		"potassium chloride", "magnesium oxide",
	},
}

// longevityGroups are the four bonus sub-tables. Matching merges them;
// de-duplication is per literal ingredient string.
var longevityGroups = GroupList{
	"Herbs": {
		"turmeric", "curcumin", "ginger", "rosemary", "rosemary extract",
		"oregano", "parsley", "basil", "thyme", "milk thistle",
		"dandelion", "dandelion greens", "chamomile", "peppermint",
		"cinnamon", "ashwagandha", "fennel",
	},
	"Botanicals": {
		"green tea extract", "green-tea extract", "decaffeinated green tea extract",
		"blueberries", "cranberries", "pomegranate", "spirulina",
		"kelp", "dried kelp", "chlorella", "alfalfa", "alfalfa meal",
		"yucca schidigera", "yucca schidigera extract", "aloe vera",
		"rose hips", "marigold extract", "elderberry", "turmeric extract",
	},
	"Probiotics": {
		"lactobacillus acidophilus", "dried lactobacillus acidophilus fermentation product",
		"lactobacillus casei", "lactobacillus plantarum",
		"bifidobacterium animalis", "bifidobacterium longum",
		"enterococcus faecium", "dried enterococcus faecium fermentation product",
		"bacillus coagulans", "dried fermentation product",
		"lactobacillus", "bifidobacterium", "probiotic", "probiotics",
	},
	"Other": {
		"glucosamine", "glucosamine hydrochloride", "chondroitin",
		"chondroitin sulfate", "msm", "methylsulfonylmethane",
		"astaxanthin", "coenzyme q10", "coq10", "green lipped mussel",
		"green-lipped mussel", "hyaluronic acid", "colostrum",
		"new zealand green mussel",
	},
}
