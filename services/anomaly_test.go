package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
)

func fixedClock() time.Time { return time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC) }

func recordsAt(title, secondary string, prices ...float64) []models.ListingRecord {
	out := make([]models.ListingRecord, len(prices))
	for i, p := range prices {
		out[i] = models.ListingRecord{Title: title, SecondaryText: secondary, Price: p}
	}
	return out
}

func TestAnalyzeGeneralOutlierIsDeal(t *testing.T) {
	cfg := config.DefaultAnalysis()
	cfg.MinPriceForAnalysis = 0
	cfg.RobustZGood = 0.5
	e := NewPriceAnomalyEngine(cfg)

	agg := recordsAt("oak desk", "", 100, 100, 100, 100, 10)
	res, ok := e.Analyze(agg[4], agg)
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Category != models.CategoryGeneral {
		t.Errorf("Category: got %q, want general", res.Category)
	}
	if res.SavingsPercent != 90 {
		t.Errorf("SavingsPercent: got %.2f, want 90", res.SavingsPercent)
	}
	if res.Score != 40 {
		t.Errorf("Score: got %.2f, want 40", res.Score)
	}
	if res.Tier != models.TierTooGoodToBeTrue {
		t.Errorf("Tier: got %q, want %q", res.Tier, models.TierTooGoodToBeTrue)
	}
	if !res.Tier.IsDeal() {
		t.Error("too-good-to-be-true should count as a deal")
	}
}

func TestAnalyzeGeneralOutlierIsOverpriced(t *testing.T) {
	cfg := config.DefaultAnalysis()
	cfg.MinPriceForAnalysis = 0
	cfg.RobustZBad = 1.0
	e := NewPriceAnomalyEngine(cfg)

	agg := recordsAt("oak desk", "", 10, 10, 10, 10, 100)
	res, ok := e.Analyze(agg[4], agg)
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Score != -40 {
		t.Errorf("Score: got %.2f, want -40", res.Score)
	}
	if res.Tier != models.TierOverpriced {
		t.Errorf("Tier: got %q, want %q", res.Tier, models.TierOverpriced)
	}
	if !res.Tier.IsExpensive() {
		t.Error("overpriced should count as expensive")
	}
	if !strings.Contains(res.Rationale, "overpriced") {
		t.Errorf("Rationale: got %q", res.Rationale)
	}
}

func TestAnalyzeInsufficientSample(t *testing.T) {
	e := NewPriceAnomalyEngine(config.DefaultAnalysis())
	agg := recordsAt("oak desk", "", 100, 120, 140, 160)
	if _, ok := e.Analyze(agg[0], agg); ok {
		t.Error("expected no result for a sample of 4")
	}

	// prices at or below the floor do not count toward the sample
	agg = recordsAt("oak desk", "", 100, 120, 140, 160, 50)
	if _, ok := e.Analyze(agg[0], agg); ok {
		t.Error("expected no result when only 4 listings clear the floor")
	}
}

func TestAnalyzeListingAtFloorIsUnscored(t *testing.T) {
	e := NewPriceAnomalyEngine(config.DefaultAnalysis())
	agg := recordsAt("oak desk", "", 100, 120, 140, 160, 180)
	cheap := models.ListingRecord{Title: "oak desk", Price: 50}
	if _, ok := e.Analyze(cheap, agg); ok {
		t.Error("listing priced at the floor should be unscored")
	}
}

func TestAnalyzeElectronicsUsesRetailReference(t *testing.T) {
	e := NewPriceAnomalyEngine(config.DefaultAnalysis())
	agg := recordsAt("iphone", "", 600, 700, 800, 900, 1000)

	res, ok := e.Analyze(models.ListingRecord{Title: "iphone 15 pro", Price: 500}, agg)
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Category != models.CategoryElectronics {
		t.Errorf("Category: got %q, want electronics", res.Category)
	}
	if res.SavingsPercent != 49.95 {
		t.Errorf("SavingsPercent: got %.2f, want 49.95", res.SavingsPercent)
	}
	if res.Score != 30 {
		t.Errorf("Score: got %.2f, want 30", res.Score)
	}
	if res.Tier != models.TierExcellent {
		t.Errorf("Tier: got %q, want excellent", res.Tier)
	}
	if !strings.Contains(res.Rationale, "iphone 15 pro") {
		t.Errorf("Rationale should name the retail model: %q", res.Rationale)
	}

	sealed, _ := e.Analyze(models.ListingRecord{Title: "iphone 15 pro", SecondaryText: "sealed in box", Price: 500}, agg)
	if sealed.Score != 35 {
		t.Errorf("sealed Score: got %.2f, want 35", sealed.Score)
	}
}

func TestAnalyzeElectronicsDamaged(t *testing.T) {
	e := NewPriceAnomalyEngine(config.DefaultAnalysis())
	agg := recordsAt("ps5", "", 300, 350, 400, 450, 500)

	res, ok := e.Analyze(models.ListingRecord{Title: "ps5 broken hdmi", Price: 450}, agg)
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Score != -15 {
		t.Errorf("Score: got %.2f, want -15", res.Score)
	}
	if res.Tier != models.TierHighPrice {
		t.Errorf("Tier: got %q, want high-price", res.Tier)
	}

	mixed, ok := e.Analyze(models.ListingRecord{Title: "PS5 Broken HDMI", Price: 450}, agg)
	if !ok || mixed.Score != res.Score {
		t.Errorf("mixed-case Score: got %.2f, want %.2f", mixed.Score, res.Score)
	}
}

func TestAnalyzeVehicleNormalizesWear(t *testing.T) {
	e := NewPriceAnomalyEngine(config.DefaultAnalysis()).WithClock(fixedClock)
	agg := recordsAt("2016 honda civic", "100,000 km", 10000, 10000, 10000, 10000, 10000)

	res, ok := e.Analyze(models.ListingRecord{Title: "2016 honda civic", SecondaryText: "100,000 km", Price: 6000}, agg)
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Category != models.CategoryVehicle {
		t.Errorf("Category: got %q, want vehicle", res.Category)
	}
	if res.SavingsPercent != 40 {
		t.Errorf("SavingsPercent: got %.2f, want 40", res.SavingsPercent)
	}
	if res.Score != 30 {
		t.Errorf("Score: got %.2f, want 30", res.Score)
	}
	if res.Tier != models.TierExcellent {
		t.Errorf("Tier: got %q, want excellent", res.Tier)
	}
}

func TestVehicleMultiplier(t *testing.T) {
	e := NewPriceAnomalyEngine(config.DefaultAnalysis())

	fresh := e.vehicleMultiplier(models.ListingRecord{Title: "2026 tesla", SecondaryText: "0 km"}, 2026)
	if fresh != 1 {
		t.Errorf("new car with no mileage: got %.3f, want 1", fresh)
	}

	worn := e.vehicleMultiplier(models.ListingRecord{Title: "1990 truck", SecondaryText: "400,000 km"}, 2026)
	if worn != 4 {
		t.Errorf("worn car should hit the cap: got %.3f, want 4", worn)
	}

	unknown := e.vehicleMultiplier(models.ListingRecord{Title: "truck"}, 2026)
	if unknown != unknownMileageFactor {
		t.Errorf("unknown mileage and year: got %.3f, want %.3f", unknown, unknownMileageFactor)
	}
}

func TestAnalyzePropertyAdjustments(t *testing.T) {
	e := NewPriceAnomalyEngine(config.DefaultAnalysis())
	title := "2 bedroom apartment for rent"
	agg := recordsAt(title, "", 2000, 2000, 2000, 2000, 1500)

	res, ok := e.Analyze(models.ListingRecord{Title: title, SecondaryText: "furnished, downtown", Price: 1500}, agg)
	if !ok {
		t.Fatal("expected a result")
	}
	if res.Category != models.CategoryProperty {
		t.Errorf("Category: got %q, want property", res.Category)
	}
	// 25% savings * 0.7 + 5 premium + 3 furnished
	if res.Score != 25.5 {
		t.Errorf("Score: got %.2f, want 25.5", res.Score)
	}

	bare, _ := e.Analyze(models.ListingRecord{Title: title, SecondaryText: "unfurnished", Price: 1500}, agg)
	if bare.Score != 14.5 {
		t.Errorf("unfurnished Score: got %.2f, want 14.5", bare.Score)
	}

	tests := []struct {
		secondary string
		want      float64
	}{
		{"Furnished, Downtown", 25.5},
		{"UNFURNISHED", 14.5},
	}
	for _, tt := range tests {
		got, _ := e.Analyze(models.ListingRecord{Title: "2 Bedroom Apartment For Rent", SecondaryText: tt.secondary, Price: 1500}, agg)
		if got.Score != tt.want {
			t.Errorf("%q Score: got %.2f, want %.2f", tt.secondary, got.Score, tt.want)
		}
	}
}

func TestThresholdOverride(t *testing.T) {
	cfg := config.DefaultAnalysis()
	cfg.CategoryThresholds.Electronics = 40
	e := NewPriceAnomalyEngine(cfg)
	agg := recordsAt("iphone", "", 600, 700, 800, 900, 1000)

	res, _ := e.Analyze(models.ListingRecord{Title: "iphone 15 pro", Price: 500}, agg)
	if res.Tier != models.TierTooGoodToBeTrue {
		t.Errorf("Tier: got %q, want too-good-to-be-true at a 40%% threshold", res.Tier)
	}
}

func TestSavingsPercent(t *testing.T) {
	tests := []struct {
		price, ref, want float64
	}{
		{50, 100, 50},
		{150, 100, -50},
		{100, 0, 0},
		{100000, 10, -999},
	}
	for _, tt := range tests {
		if got := savingsPercent(tt.price, tt.ref); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("savingsPercent(%v, %v) = %v; want %v", tt.price, tt.ref, got, tt.want)
		}
	}
}
