package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryThresholds holds the savings percentage above which a listing is
// considered too good to be true, per category.
type CategoryThresholds struct {
	Car         float64 `yaml:"car"`
	Electronics float64 `yaml:"electronics"`
	Property    float64 `yaml:"property"`
	General     float64 `yaml:"general"`
}

// HighlightColors maps advisory outcomes to CSS colors.
type HighlightColors struct {
	GoodDeal      string `yaml:"good_deal"`
	Overpriced    string `yaml:"overpriced"`
	PotentialScam string `yaml:"potential_scam"`
}

// Analysis holds the options recognized by the scoring engine. A value may be
// swapped into a running session between analysis passes.
type Analysis struct {
	MinPriceForAnalysis  float64            `yaml:"min_price_for_analysis"`
	RobustZGood          float64            `yaml:"robust_z_good"`
	RobustZBad           float64            `yaml:"robust_z_bad"`
	ScamKeywords         []string           `yaml:"scam_keywords"`
	CategoryThresholds   CategoryThresholds `yaml:"category_thresholds"`
	MinSampleSize        int                `yaml:"min_sample_size"`
	VehicleMultiplierCap float64            `yaml:"vehicle_multiplier_cap"`
	HighlightColors      HighlightColors    `yaml:"highlight_colors"`
}

// DefaultAnalysis returns the documented defaults.
func DefaultAnalysis() Analysis {
	return Analysis{
		MinPriceForAnalysis: 50,
		RobustZGood:         1.8,
		RobustZBad:          1.8,
		ScamKeywords:        []string{"urgent", "must sell", "cash only", "no returns"},
		CategoryThresholds: CategoryThresholds{
			Car:         50,
			Electronics: 55,
			Property:    50,
			General:     66,
		},
		MinSampleSize:        5,
		VehicleMultiplierCap: 4,
		HighlightColors: HighlightColors{
			GoodDeal:      "rgba(0, 255, 0, 0.2)",
			Overpriced:    "rgba(255, 255, 0, 0.2)",
			PotentialScam: "rgba(255, 0, 0, 0.2)",
		},
	}
}

// LoadAnalysisFile reads a YAML file over the defaults. Keys missing from
// the file keep their default values.
func LoadAnalysisFile(path string) (Analysis, error) {
	a := DefaultAnalysis()
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("config: read analysis file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("config: parse analysis file %q: %w", path, err)
	}
	a.Normalize()
	return a, nil
}

// Normalize replaces invalid values with defaults and lowercases keywords.
// Zero is a valid price floor; negative floors and non-positive z thresholds
// are not.
func (a *Analysis) Normalize() {
	def := DefaultAnalysis()

	if a.MinPriceForAnalysis < 0 {
		a.MinPriceForAnalysis = def.MinPriceForAnalysis
	}
	if a.RobustZGood <= 0 {
		a.RobustZGood = def.RobustZGood
	}
	if a.RobustZBad <= 0 {
		a.RobustZBad = def.RobustZBad
	}
	if a.MinSampleSize < 1 {
		a.MinSampleSize = def.MinSampleSize
	}
	if a.VehicleMultiplierCap < 1 {
		a.VehicleMultiplierCap = def.VehicleMultiplierCap
	}

	if a.ScamKeywords == nil {
		a.ScamKeywords = def.ScamKeywords
	}
	keywords := make([]string, 0, len(a.ScamKeywords))
	for _, kw := range a.ScamKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	a.ScamKeywords = keywords

	fixThreshold(&a.CategoryThresholds.Car, def.CategoryThresholds.Car)
	fixThreshold(&a.CategoryThresholds.Electronics, def.CategoryThresholds.Electronics)
	fixThreshold(&a.CategoryThresholds.Property, def.CategoryThresholds.Property)
	fixThreshold(&a.CategoryThresholds.General, def.CategoryThresholds.General)

	if a.HighlightColors.GoodDeal == "" {
		a.HighlightColors.GoodDeal = def.HighlightColors.GoodDeal
	}
	if a.HighlightColors.Overpriced == "" {
		a.HighlightColors.Overpriced = def.HighlightColors.Overpriced
	}
	if a.HighlightColors.PotentialScam == "" {
		a.HighlightColors.PotentialScam = def.HighlightColors.PotentialScam
	}
}

func fixThreshold(v *float64, fallback float64) {
	if *v <= 0 || *v > 100 {
		*v = fallback
	}
}
