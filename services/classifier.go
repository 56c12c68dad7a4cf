package services

import (
	"strings"

	"marketplace-analyzer/models"
)

// scoredCategories are the categories that collect keyword votes. Anything
// without a unique winner falls back to general.
var scoredCategories = []models.Category{
	models.CategoryVehicle,
	models.CategoryElectronics,
	models.CategoryProperty,
}

var categoryKeywords = map[models.Category][]string{
	models.CategoryVehicle: {
		"car", "truck", "suv", "sedan", "coupe", "hatchback", "wagon", "minivan", "pickup",
		"motorcycle", "toyota", "honda", "ford", "chevrolet", "chevy", "nissan", "bmw",
		"audi", "mercedes", "volkswagen", "vw", "hyundai", "kia", "mazda", "subaru",
		"jeep", "dodge", "ram", "tesla", "lexus", "acura", "gmc", "civic", "corolla",
		"camry", "accord", "f150", "f-150", "awd", "4x4", "mileage",
	},
	models.CategoryElectronics: {
		"iphone", "ipad", "macbook", "imac", "laptop", "phone", "smartphone", "samsung",
		"galaxy", "pixel", "playstation", "ps4", "ps5", "xbox", "nintendo", "switch",
		"console", "tv", "television", "monitor", "camera", "airpods", "headphones",
		"gpu", "rtx", "gtx", "tablet", "computer", "pc", "steam deck", "apple watch",
		"speaker", "drone",
	},
	models.CategoryProperty: {
		"apartment", "apt", "condo", "house", "home", "room", "studio", "bedroom",
		"bed", "bath", "bathroom", "rent", "rental", "lease", "sublet", "sublease",
		"townhouse", "townhome", "duplex", "basement", "bdrm", "br", "for rent",
		"utilities included", "sqft",
	},
}

// Classify assigns a listing to a category by counting keyword hits in its
// title. Single-word keywords must match a whole token; multi-word keywords
// match anywhere in the lowered title. The category with the strictly highest
// count wins; a tie at the top, including no hits at all, yields general.
func Classify(title string) models.Category {
	tokens := tokenize(title)
	lower := strings.ToLower(title)

	best := models.CategoryGeneral
	bestScore := 0
	tied := false

	for _, cat := range scoredCategories {
		score := keywordHits(categoryKeywords[cat], tokens, lower)
		switch {
		case score > bestScore:
			best, bestScore, tied = cat, score, false
		case score == bestScore:
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return models.CategoryGeneral
	}
	return best
}

func keywordHits(keywords, tokens []string, lower string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				hits++
			}
			continue
		}
		for _, t := range tokens {
			if t == kw {
				hits++
			}
		}
	}
	return hits
}
