package services

import (
	"strings"
	"testing"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
)

func TestIsSuspiciousPrice(t *testing.T) {
	tests := []struct {
		name      string
		price     float64
		title     string
		median    float64
		hasMedian bool
		want      bool
	}{
		{"high-value far below median", 20, "iphone 15 pro", 800, true, true},
		{"high-value above relative floor", 200, "iphone 15", 800, true, false},
		{"relative floor never below 30", 25, "airpods", 100, true, true},
		{"absolute floor without median", 40, "ps5 disc edition", 0, false, true},
		{"absolute floor met", 60, "ps5 disc edition", 0, false, false},
		{"not a high-value item", 1, "oak desk", 500, true, false},
	}
	for _, tt := range tests {
		got := IsSuspiciousPrice(tt.price, tt.title, tt.median, tt.hasMedian)
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDetectKeyword(t *testing.T) {
	d := NewScamSignalDetector(config.DefaultAnalysis())

	sig := d.Detect(models.ListingRecord{Title: "oak desk", SecondaryText: "MUST SELL today", Price: 80}, 100, true)
	if !sig.Suspicious {
		t.Fatal("expected suspicious for blacklisted phrase")
	}
	if len(sig.Reasons) != 1 || !strings.Contains(sig.Reasons[0], "must sell") {
		t.Errorf("Reasons: got %v", sig.Reasons)
	}
}

func TestDetectPriceAndKeywordCombined(t *testing.T) {
	d := NewScamSignalDetector(config.DefaultAnalysis())

	sig := d.Detect(models.ListingRecord{Title: "macbook pro urgent", Price: 10}, 900, true)
	if !sig.Suspicious {
		t.Fatal("expected suspicious")
	}
	if len(sig.Reasons) != 2 {
		t.Errorf("expected keyword and price reasons, got %v", sig.Reasons)
	}
}

func TestDetectClean(t *testing.T) {
	d := NewScamSignalDetector(config.DefaultAnalysis())
	sig := d.Detect(models.ListingRecord{Title: "oak desk", SecondaryText: "ottawa", Price: 80}, 100, true)
	if sig.Suspicious || len(sig.Reasons) != 0 {
		t.Errorf("expected clean signal, got %+v", sig)
	}
}

func TestDetectCustomKeywords(t *testing.T) {
	cfg := config.DefaultAnalysis()
	cfg.ScamKeywords = []string{"  Wire Transfer "}
	d := NewScamSignalDetector(cfg)

	if !d.Detect(models.ListingRecord{Title: "sofa", SecondaryText: "wire transfer only"}, 0, false).Suspicious {
		t.Error("configured keyword should be matched case-insensitively")
	}
	if d.Detect(models.ListingRecord{Title: "sofa", SecondaryText: "urgent"}, 0, false).Suspicious {
		t.Error("default keywords should be replaced by the configured list")
	}
}
