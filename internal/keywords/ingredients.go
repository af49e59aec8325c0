// internal/keywords/ingredients.go
package keywords

import "petfood-workers/internal/models"

// The four macro-group tier tables. The classifier runs a main-keyword
// pass over every group and tier before any supporting-keyword pass, so
// a specific phrase ("chicken by-product meal", Low) always beats the
// bare species word ("chicken", Moderate supporting) no matter which
// tier it lives in. Keep specific phrases in Main and generic words in
// Supporting or that ordering breaks.

var proteinTiers = TierTable{
	models.TierHigh: {
		Main: []string{
			"organic chicken", "organic beef", "organic turkey", "organic lamb",
			"organic duck", "organic pork", "organic salmon", "organic eggs",
			"fresh chicken", "fresh beef", "fresh turkey", "fresh lamb",
			"fresh duck", "fresh pork", "fresh salmon", "fresh whitefish",
			"fresh rabbit", "fresh venison",
			"raw chicken", "raw beef", "raw turkey", "raw lamb", "raw duck",
			"raw salmon", "raw goat",
			"wild-caught salmon", "wild caught salmon", "wild salmon",
			"wild-caught whitefish", "wild-caught fish", "wild boar",
			"pasture-raised chicken", "pasture-raised turkey",
			"pasture-raised pork", "pasture-raised lamb",
			"free-range chicken", "free-range turkey",
			"cage-free chicken", "cage-free eggs",
		},
		Supporting: []string{
			"wild-caught", "wild caught", "pasture-raised", "pasture raised",
			"free-range", "free range", "cage-free", "sustainably sourced fish",
		},
	},
	models.TierGood: {
		Main: []string{
			"deboned chicken", "deboned turkey", "deboned beef", "deboned lamb",
			"deboned duck", "deboned salmon", "deboned whitefish", "deboned cod",
			"whole chicken", "whole turkey", "whole herring", "whole mackerel",
			"whole sardines", "whole anchovies", "whole eggs", "whole egg",
			"chicken breast", "chicken thigh", "turkey breast", "muscle meat",
			"grass-fed beef", "grass-fed lamb", "grass-fed bison", "grass fed beef",
			"chicken liver", "beef liver", "turkey liver", "lamb liver",
			"duck liver", "chicken heart", "beef heart", "turkey heart",
			"chicken gizzard", "chicken gizzards", "beef kidney", "green tripe",
			"beef tripe", "salmon fillet", "cod fillet",
		},
		Supporting: []string{
			"deboned", "boneless", "skinless", "grass-fed", "grass fed",
			"whole prey", "organ meat", "organ meats",
		},
	},
	models.TierModerate: {
		Supporting: []string{
			"meat",
			"chicken", "beef", "turkey", "lamb", "duck", "pork", "venison",
			"bison", "buffalo", "rabbit", "goat", "quail", "kangaroo",
			"salmon", "whitefish", "herring", "mackerel", "sardine", "sardines",
			"anchovy", "anchovies", "tuna", "trout", "cod", "pollock",
			"menhaden", "egg", "eggs", "poultry", "fish", "lamb lung",
			"beef lung", "ocean fish",
		},
	},
	models.TierLow: {
		Main: []string{
			"by-product", "by-products", "byproduct", "byproducts",
			"chicken by-product meal", "poultry by-product meal",
			"meat by-products", "animal digest", "digest",
			"meat meal", "meat and bone meal", "bone meal", "meal",
			"feather meal", "blood meal", "corn gluten meal",
			"pea protein", "soy protein", "soy protein isolate",
			"pea protein isolate", "potato protein", "corn protein",
			"plant protein", "textured vegetable protein",
			"hydrolyzed protein", "unspecified meat", "meat flavor",
			"4d meat", "mystery meat", "animal protein product",
		},
		Supporting: []string{
			"rendered",
		},
	},
}

// fatTiers deliberately has no Moderate tier.
var fatTiers = TierTable{
	models.TierHigh: {
		Main: []string{
			"salmon oil", "fish oil", "krill oil", "herring oil",
			"anchovy oil", "sardine oil", "menhaden fish oil", "menhaden oil",
			"cod liver oil", "pollock oil", "wild salmon oil", "duck fat",
			"algal oil", "algae oil",
		},
		Supporting: []string{
			"omega-3", "omega 3", "dha", "epa", "omega-3 fatty acids",
		},
	},
	models.TierGood: {
		Main: []string{
			"flaxseed oil", "flax oil", "ground flaxseed oil",
			"avocado oil", "olive oil", "extra virgin olive oil",
			"coconut oil", "hemp oil", "hempseed oil", "hemp seed oil",
			"chicken fat", "beef fat", "lamb fat", "pork fat",
		},
		Supporting: []string{
			"cold-pressed oil", "cold pressed oil", "omega-6", "omega 6",
			"preserved with mixed tocopherols",
		},
	},
	models.TierLow: {
		Main: []string{
			"canola oil", "corn oil", "palm oil", "soybean oil",
			"vegetable oil", "sunflower oil", "safflower oil",
			"cottonseed oil", "rapeseed oil", "seed oil",
			"hydrogenated oil", "partially hydrogenated oil", "hydrogenated",
			"animal fat", "poultry fat", "tallow", "lard", "mineral oil",
		},
		Supporting: []string{
			"rendered fat", "shortening", "generic fat",
		},
	},
}

var carbTiers = TierTable{
	models.TierHigh: {
		Main: []string{
			"sweet potato", "sweet potatoes", "pumpkin", "butternut squash",
			"squash", "lentils", "red lentils", "green lentils",
			"chickpeas", "garbanzo beans", "peas", "green peas", "pea",
			"kidney beans", "black beans", "navy beans", "carrots", "carrot",
			"parsnips", "beets",
		},
		Supporting: []string{
			"legumes", "beans", "blueberries", "cranberries", "apples",
			"apple", "banana", "spinach", "kale", "broccoli", "celery",
			"zucchini", "green beans",
		},
	},
	models.TierGood: {
		Main: []string{
			"oats", "oatmeal", "whole oats", "rolled oats", "steel-cut oats",
			"whole grain oats", "quinoa", "brown rice", "whole grain brown rice",
			"barley", "pearled barley", "whole grain barley", "millet",
			"sorghum", "whole grain sorghum", "buckwheat", "rye", "amaranth",
			"chia", "farro",
		},
		Supporting: []string{
			"whole grain", "whole grains", "ancient grains",
		},
	},
	models.TierModerate: {
		Main: []string{
			"white rice", "white potato", "white potatoes", "potatoes",
			"tapioca", "tapioca starch", "potato starch", "cassava",
			"cassava root flour", "rice flour", "potato flour", "rice bran",
		},
		Supporting: []string{
			"rice", "potato", "starch", "dried potatoes",
		},
	},
	models.TierLow: {
		Main: []string{
			"corn", "ground corn", "ground yellow corn", "whole grain corn",
			"cornmeal", "corn meal", "corn gluten", "corn starch", "corn syrup",
			"wheat", "whole wheat", "wheat flour", "wheat gluten",
			"wheat middlings", "cracked wheat",
			"soy", "soybean", "soybean meal", "soy flour",
			"brewers rice", "brewer's rice", "white flour", "enriched flour",
			"maltodextrin", "semolina",
		},
		Supporting: []string{
			"gluten", "middlings", "mill run", "grain fragments",
		},
	},
}

var fiberTiers = TierTable{
	models.TierHigh: {
		Main: []string{
			"pumpkin", "pumpkin puree", "flaxseed", "ground flaxseed",
			"flax seed", "whole flaxseed", "chia seed", "chia seeds",
			"psyllium", "psyllium husk", "psyllium seed husk",
		},
		Supporting: []string{
			"soluble fiber", "miscanthus grass",
		},
	},
	models.TierGood: {
		Main: []string{
			"beet pulp", "dried beet pulp", "dried plain beet pulp",
			"chicory root", "dried chicory root", "chicory root extract",
			"inulin", "fructooligosaccharides", "fructooligosaccharide", "fos",
			"dried kelp",
		},
		Supporting: []string{
			"prebiotic", "prebiotics", "prebiotic fiber",
		},
	},
	models.TierModerate: {
		Main: []string{
			"cellulose", "powdered cellulose", "pea fiber", "tomato pomace",
			"apple pomace", "dried tomato pomace",
		},
		Supporting: []string{
			"pomace", "hulls", "fiber blend",
		},
	},
	models.TierLow: {
		Main: []string{
			"soybean hulls", "soy hulls", "corn fiber", "corn bran",
			"cottonseed hulls", "peanut hulls", "oat hulls", "rice hulls",
			"wheat bran",
		},
		Supporting: []string{
			"floor sweepings", "mill waste",
		},
	},
}
