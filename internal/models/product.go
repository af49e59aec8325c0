// internal/models/product.go
package models

// FoodCategory is the physical form of the food as sold.
type FoodCategory string

const (
	FoodCategoryRaw   FoodCategory = "Raw"
	FoodCategoryFresh FoodCategory = "Fresh"
	FoodCategoryDry   FoodCategory = "Dry"
	FoodCategoryWet   FoodCategory = "Wet"
	FoodCategorySoft  FoodCategory = "Soft"
	FoodCategoryOther FoodCategory = "Other"
)

// SourcingIntegrity grades where the ingredients come from.
type SourcingIntegrity string

const (
	SourcingHumanGradeOrganic SourcingIntegrity = "Human Grade (organic)"
	SourcingHumanGrade        SourcingIntegrity = "Human Grade"
	SourcingFeedGrade         SourcingIntegrity = "Feed Grade"
	SourcingOther             SourcingIntegrity = "Other"
)

// ProcessingMethod is how the food was treated before sale. The
// parenthesised variants are composites the classifier can emit as a
// primary/secondary pair.
type ProcessingMethod string

const (
	ProcessingUncookedNotFrozen      ProcessingMethod = "Uncooked (Not Frozen)"
	ProcessingUncookedFlashFrozen    ProcessingMethod = "Uncooked (Flash Frozen)"
	ProcessingUncookedFrozen         ProcessingMethod = "Uncooked (Frozen)"
	ProcessingLightlyCookedNotFrozen ProcessingMethod = "Lightly Cooked (Not Frozen)"
	ProcessingLightlyCookedFrozen    ProcessingMethod = "Lightly Cooked (Frozen)"
	ProcessingFreezeDried            ProcessingMethod = "Freeze Dried"
	ProcessingAirDried               ProcessingMethod = "Air Dried"
	ProcessingDehydrated             ProcessingMethod = "Dehydrated"
	ProcessingBaked                  ProcessingMethod = "Baked"
	ProcessingExtruded               ProcessingMethod = "Extruded"
	ProcessingRetorted               ProcessingMethod = "Retorted"
	ProcessingOther                  ProcessingMethod = "Other"
)

type NutritionallyAdequate string

const (
	AdequateYes   NutritionallyAdequate = "Yes"
	AdequateNo    NutritionallyAdequate = "No"
	AdequateOther NutritionallyAdequate = "Other"
)

// MacroGroup is the ingredient macro-nutrient family.
type MacroGroup string

const (
	MacroProtein MacroGroup = "Protein"
	MacroFat     MacroGroup = "Fat"
	MacroCarb    MacroGroup = "Carb"
	MacroFiber   MacroGroup = "Fiber"
	MacroOther   MacroGroup = "Other"
)

// QualityTier ranks ingredients within a macro group, best first.
type QualityTier string

const (
	TierHigh     QualityTier = "High"
	TierGood     QualityTier = "Good"
	TierModerate QualityTier = "Moderate"
	TierLow      QualityTier = "Low"
	TierOther    QualityTier = "Other"
)

// Handling context enums supplied by the caller for dynamic scoring.
// The literal values are what the intake form produces.
type FoodStorage string

const (
	StorageFreezer        FoodStorage = "Freezer"
	StorageRefrigerator   FoodStorage = "Refrigerator"
	StorageCoolDryAway    FoodStorage = "Cool Dry Space (Away from moisture)"
	StorageCoolDryNotAway FoodStorage = "Cool Dry Space (Not away from moisture)"
)

type PackagingSize string

const (
	PackagingOneMonth       PackagingSize = "a month"
	PackagingTwoMonths      PackagingSize = "2 month"
	PackagingThreePlusMonth PackagingSize = "3+ month"
)

type ShelfLife string

const (
	ShelfLifeWeek       ShelfLife = "7Day"
	ShelfLifeTwoWeeks   ShelfLife = "8-14 Day"
	ShelfLifeOverTwoWks ShelfLife = "15+Day"
)

// HandlingContext is the caller-supplied, request-scoped half of the
// dynamic score. None of it is ever persisted.
type HandlingContext struct {
	Storage       FoodStorage   `json:"storage,omitempty"`
	PackagingSize PackagingSize `json:"packagingSize,omitempty"`
	ShelfLife     ShelfLife     `json:"shelfLife,omitempty"`
}

// ProductText is the bag of raw text fields the catalog supplies for a
// single product. Every field is optional; classifiers must tolerate
// any subset being empty.
type ProductText struct {
	Name                   string `json:"name,omitempty"`
	Category               string `json:"category,omitempty"`
	Details                string `json:"details,omitempty"`
	MoreDetails            string `json:"moreDetails,omitempty"`
	Specifications         string `json:"specifications,omitempty"`
	Ingredients            string `json:"ingredients,omitempty"`
	GuaranteedAnalysis     string `json:"guaranteedAnalysis,omitempty"`
	CaloricContent         string `json:"caloricContent,omitempty"`
	FeedingInstructions    string `json:"feedingInstructions,omitempty"`
	TransitionInstructions string `json:"transitionInstructions,omitempty"`
}

// ProductDetail is one scraped catalog row as stored in product_details.
type ProductDetail struct {
	ID                     int64  `json:"id"`
	ProductID              int64  `json:"productId"`
	ProductName            string `json:"productName"`
	ProductCategory        string `json:"productCategory,omitempty"`
	ProductURL             string `json:"productUrl,omitempty"`
	ImageURL               string `json:"imageUrl,omitempty"`
	Price                  string `json:"price,omitempty"`
	Size                   string `json:"size,omitempty"`
	Details                string `json:"details,omitempty"`
	MoreDetails            string `json:"moreDetails,omitempty"`
	Specifications         string `json:"specifications,omitempty"`
	Ingredients            string `json:"ingredients,omitempty"`
	CaloricContent         string `json:"caloricContent,omitempty"`
	GuaranteedAnalysis     string `json:"guaranteedAnalysis,omitempty"`
	FeedingInstructions    string `json:"feedingInstructions,omitempty"`
	TransitionInstructions string `json:"transitionInstructions,omitempty"`
}

// Text collects the row's free-text fields for the classifier pipeline.
func (d *ProductDetail) Text() ProductText {
	return ProductText{
		Name:                   d.ProductName,
		Category:               d.ProductCategory,
		Details:                d.Details,
		MoreDetails:            d.MoreDetails,
		Specifications:         d.Specifications,
		Ingredients:            d.Ingredients,
		GuaranteedAnalysis:     d.GuaranteedAnalysis,
		CaloricContent:         d.CaloricContent,
		FeedingInstructions:    d.FeedingInstructions,
		TransitionInstructions: d.TransitionInstructions,
	}
}
