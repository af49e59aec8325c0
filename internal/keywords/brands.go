// internal/keywords/brands.go
package keywords

// brandNames is the known-brand list for the brand detector. Display
// casing is kept; the detector normalizes both sides before matching
// and sorts longest-first so "Blue Buffalo Wilderness" wins over
// "Blue Buffalo".
var brandNames = []string{
	"A Pup Above",
	"Acana",
	"Alpo",
	"American Journey",
	"Answers Pet Food",
	"Beneful",
	"Blue Buffalo",
	"Blue Buffalo Wilderness",
	"Bravo",
	"Canidae",
	"Caru",
	"Castor & Pollux",
	"Cesar",
	"Darwin's",
	"Diamond",
	"Diamond Naturals",
	"Eukanuba",
	"Evermore",
	"Fancy Feast",
	"Feline Natural",
	"Freshpet",
	"Friskies",
	"Fromm",
	"Grandma Lucy's",
	"Gravy Train",
	"Greenies",
	"Halo",
	"Hill's",
	"Hill's Science Diet",
	"Iams",
	"Instinct",
	"JustFoodForDogs",
	"K9 Natural",
	"Kibbles 'n Bits",
	"Merrick",
	"Natural Balance",
	"Nature's Variety",
	"Nom Nom",
	"Northwest Naturals",
	"Nulo",
	"Nutro",
	"OC Raw",
	"Ol' Roy",
	"Ollie",
	"Open Farm",
	"Orijen",
	"Pedigree",
	"Portland Pet Food",
	"Primal",
	"Purina",
	"Purina ONE",
	"Purina Pro Plan",
	"Rachael Ray Nutrish",
	"Raised Right",
	"Redbarn",
	"Royal Canin",
	"Sheba",
	"Smallbatch",
	"Sojos",
	"Solid Gold",
	"Spot & Tango",
	"Stella & Chewy's",
	"Steve's Real Food",
	"Taste of the Wild",
	"Tender & True",
	"The Farmer's Dog",
	"The Honest Kitchen",
	"Tiki Cat",
	"Tiki Dog",
	"Tucker's",
	"Victor",
	"Vital Essentials",
	"Wellness",
	"Weruva",
	"Ziwi Peak",
	"Zignature",
}
