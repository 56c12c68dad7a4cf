package services

import (
	"fmt"
	"math"
	"strings"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
)

const (
	absolutePriceFloor = 50
	minRelativeFloor   = 30
	relativeFloorRate  = 0.15
)

// highValueKeywords name items whose genuine listings rarely sit near zero.
var highValueKeywords = []string{
	"iphone", "macbook", "playstation", "ps5", "xbox", "nintendo switch",
	"ipad", "airpods", "galaxy s", "rtx", "steam deck", "rolex", "canon eos",
}

// ScamSignalDetector runs the keyword and price-floor heuristics. It is
// independent of the anomaly score and runs after it.
type ScamSignalDetector struct {
	keywords []string
}

// NewScamSignalDetector creates a detector using cfg.ScamKeywords as the
// blacklist of urgency and payment phrases.
func NewScamSignalDetector(cfg config.Analysis) *ScamSignalDetector {
	cfg.Normalize()
	return &ScamSignalDetector{keywords: cfg.ScamKeywords}
}

// IsSuspiciousPrice reports whether a high-value item is priced below the
// floor: max(30, 15% of the sample median) when a median is known, else 50.
func IsSuspiciousPrice(price float64, title string, median float64, hasMedian bool) bool {
	lower := strings.ToLower(title)
	if len(containsAny(lower, highValueKeywords)) == 0 {
		return false
	}
	return price < priceFloor(median, hasMedian)
}

func priceFloor(median float64, hasMedian bool) float64 {
	if hasMedian && median > 0 {
		return math.Max(minRelativeFloor, relativeFloorRate*median)
	}
	return absolutePriceFloor
}

// Detect flags a listing when its text contains a blacklisted phrase or its
// price trips the high-value floor. Either alone is sufficient.
func (d *ScamSignalDetector) Detect(l models.ListingRecord, median float64, hasMedian bool) models.ScamSignal {
	text := strings.ToLower(l.Title + " " + l.SecondaryText)
	var sig models.ScamSignal

	for _, kw := range containsAny(text, d.keywords) {
		sig.Reasons = append(sig.Reasons, fmt.Sprintf("contains %q", kw))
	}
	if IsSuspiciousPrice(l.Price, l.Title, median, hasMedian) {
		sig.Reasons = append(sig.Reasons,
			fmt.Sprintf("high-value item priced under %.0f", priceFloor(median, hasMedian)))
	}
	sig.Suspicious = len(sig.Reasons) > 0
	return sig
}
