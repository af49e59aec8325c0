// internal/classifier/category.go
package classifier

import (
	"petfood-workers/internal/keywords"
	"petfood-workers/internal/models"
)

// categoryPriority breaks ties between food categories. Raw and Fresh
// come first: their indicators are rarely incidental, while "kibble"
// or "canned" show up in comparative marketing copy all the time.
var categoryPriority = []string{
	string(models.FoodCategoryRaw),
	string(models.FoodCategoryFresh),
	string(models.FoodCategoryDry),
	string(models.FoodCategoryWet),
	string(models.FoodCategorySoft),
}

// CategoryClassifier decides the physical form of the food.
type CategoryClassifier struct {
	g *genericClassifier
}

func NewCategoryClassifier(lib *keywords.Library) *CategoryClassifier {
	return &CategoryClassifier{
		g: newGenericClassifier("food category", lib.Category, categoryPriority,
			string(models.FoodCategoryOther), true),
	}
}

// Classify runs the contest over the name, listed category and
// descriptive fields. The ingredient list is deliberately excluded:
// "raw chicken" as an ingredient says nothing about the product form.
func (c *CategoryClassifier) Classify(text models.ProductText) models.ClassificationResult {
	combined := CombineFields(text.Name, text.Category, text.Details, text.MoreDetails, text.Specifications)
	return c.g.classify(combined)
}
