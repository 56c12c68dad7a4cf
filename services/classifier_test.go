package services

import (
	"testing"

	"marketplace-analyzer/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		title string
		want  models.Category
	}{
		{"2015 Honda Civic EX", models.CategoryVehicle},
		{"iPhone 13 Pro 256GB", models.CategoryElectronics},
		{"2 bedroom apartment for rent", models.CategoryProperty},
		{"Steam Deck 512gb", models.CategoryElectronics},
		{"Oak desk", models.CategoryGeneral},
		{"", models.CategoryGeneral},
		// one vote each for vehicle and electronics
		{"car phone mount", models.CategoryGeneral},
	}
	for _, tt := range tests {
		if got := Classify(tt.title); got != tt.want {
			t.Errorf("Classify(%q) = %q; want %q", tt.title, got, tt.want)
		}
	}
}

func TestClassifyMatchesWholeTokens(t *testing.T) {
	// "scar" and "cart" must not count as "car".
	if got := Classify("scarf and cart"); got != models.CategoryGeneral {
		t.Errorf("got %q, want general", got)
	}
}
