package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
)

const (
	savingsClamp = 999

	vehicleScoreWeight  = 0.75
	propertyScoreWeight = 0.7

	// Mileage doubles the normalized price every 130,000 km; unknown mileage
	// is charged a flat multiplier.
	mileageDoublingKm     = 130000
	unknownMileageFactor  = 1.5
	agePenaltyPerYear     = 0.08
	maxAgeYears           = 20
	refurbishedMedianRate = 0.7
)

// expectedRetail maps recognized model keywords to a typical retail price.
// Longer keywords are matched first so "iphone 15 pro max" wins over
// "iphone 15".
var expectedRetail = map[string]float64{
	"iphone 15 pro max":    1199,
	"iphone 15 pro":        999,
	"iphone 15":            799,
	"iphone 14 pro max":    1099,
	"iphone 14 pro":        999,
	"iphone 14":            699,
	"iphone 13 pro":        899,
	"iphone 13":            599,
	"iphone 12":            449,
	"galaxy s24 ultra":     1299,
	"galaxy s24":           799,
	"galaxy s23":           699,
	"pixel 8 pro":          999,
	"pixel 8":              699,
	"ps5":                  499,
	"playstation 5":        499,
	"ps4":                  299,
	"playstation 4":        299,
	"xbox series x":        499,
	"xbox series s":        299,
	"nintendo switch oled": 349,
	"switch oled":          349,
	"nintendo switch":      299,
	"steam deck":           399,
	"macbook air m1":       999,
	"macbook air m2":       1099,
	"macbook air m3":       1099,
	"macbook pro m3":       1599,
	"macbook pro m2":       1299,
	"ipad pro":             999,
	"ipad air":             599,
	"airpods pro":          249,
	"rtx 4090":             1599,
	"rtx 4080":             1199,
	"rtx 4070":             599,
	"rtx 3080":             699,
	"rtx 3070":             499,
}

// retailKeys holds expectedRetail's keys, longest first.
var retailKeys = func() []string {
	keys := make([]string, 0, len(expectedRetail))
	for k := range expectedRetail {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var (
	sealedKeywords      = []string{"brand new", "sealed", "new in box", "unopened", "never used", "bnib"}
	damagedKeywords     = []string{"broken", "cracked", "damaged", "for parts", "not working", "parts only", "water damage"}
	refurbishedKeywords = []string{"refurbished", "refurb"}
	premiumKeywords     = []string{"downtown", "waterfront", "ocean view", "city view", "penthouse", "lakefront", "beachfront", "city centre", "city center"}
)

// PriceAnomalyEngine scores listings against the aggregate using
// category-specific formulas.
type PriceAnomalyEngine struct {
	cfg config.Analysis
	now func() time.Time
}

// NewPriceAnomalyEngine creates an engine bound to one configuration value.
func NewPriceAnomalyEngine(cfg config.Analysis) *PriceAnomalyEngine {
	cfg.Normalize()
	return &PriceAnomalyEngine{cfg: cfg, now: time.Now}
}

// WithClock overrides the clock used for vehicle age. Used by tests.
func (e *PriceAnomalyEngine) WithClock(now func() time.Time) *PriceAnomalyEngine {
	e.now = now
	return e
}

// PriceSample is the statistics of one analysis pass, computed once from the
// aggregate and shared by every listing scored in that pass.
type PriceSample struct {
	Prices           []float64
	Median           float64
	MAD              float64
	NormalizedMedian float64
}

// NewSample builds the pass statistics from the aggregate. It reports false
// when fewer than MinSampleSize listings are priced above the floor.
func (e *PriceAnomalyEngine) NewSample(records []models.ListingRecord) (*PriceSample, bool) {
	var prices, normalized []float64
	year := e.now().Year()
	for _, r := range records {
		if r.Price <= e.cfg.MinPriceForAnalysis {
			continue
		}
		prices = append(prices, r.Price)
		normalized = append(normalized, r.Price*e.vehicleMultiplier(r, year))
	}
	if len(prices) < e.cfg.MinSampleSize {
		return nil, false
	}

	median := Median(prices)
	return &PriceSample{
		Prices:           prices,
		Median:           median,
		MAD:              MAD(prices, median),
		NormalizedMedian: Median(normalized),
	}, true
}

// Analyze scores one listing against the aggregate. It reports false when
// the aggregate is too small or the listing is priced at or below the floor.
func (e *PriceAnomalyEngine) Analyze(listing models.ListingRecord, aggregate []models.ListingRecord) (models.AnalysisResult, bool) {
	sample, ok := e.NewSample(aggregate)
	if !ok {
		return models.AnalysisResult{}, false
	}
	return e.Score(listing, sample)
}

// Score applies the listing's category formula against precomputed pass
// statistics.
func (e *PriceAnomalyEngine) Score(listing models.ListingRecord, sample *PriceSample) (models.AnalysisResult, bool) {
	if sample == nil || listing.Price <= e.cfg.MinPriceForAnalysis || sample.Median <= 0 {
		return models.AnalysisResult{}, false
	}

	cat := Classify(listing.Title)
	var sc categoryScore
	switch cat {
	case models.CategoryVehicle:
		sc = e.scoreVehicle(listing, sample)
	case models.CategoryElectronics:
		sc = e.scoreElectronics(listing, sample)
	case models.CategoryProperty:
		sc = e.scoreProperty(listing, sample)
	default:
		sc = e.scoreGeneral(listing, sample)
	}

	tier := e.tier(cat, sc.savings, sc.score)
	return models.AnalysisResult{
		Score:          round2(sc.score),
		Rationale:      rationale(tier, sc),
		Category:       cat,
		SavingsPercent: round2(sc.savings),
		Tier:           tier,
	}, true
}

type categoryScore struct {
	score     float64
	savings   float64
	reference string
	notes     []string
}

func (e *PriceAnomalyEngine) scoreGeneral(l models.ListingRecord, s *PriceSample) categoryScore {
	z := RobustZ(l.Price, s.Median, s.MAD)
	good, bad := e.cfg.RobustZGood, e.cfg.RobustZBad

	var score float64
	switch {
	case z <= -good:
		score = 10 + math.Min(30, (-z-good)*10)
	case z >= bad:
		score = -(10 + math.Min(30, (z-bad)*10))
	}
	return categoryScore{
		score:     score,
		savings:   savingsPercent(l.Price, s.Median),
		reference: "median",
		notes:     []string{fmt.Sprintf("robust z %.2f", z)},
	}
}

func (e *PriceAnomalyEngine) scoreVehicle(l models.ListingRecord, s *PriceSample) categoryScore {
	mult := e.vehicleMultiplier(l, e.now().Year())
	savings := savingsPercent(l.Price*mult, s.NormalizedMedian)
	return categoryScore{
		score:     savings * vehicleScoreWeight,
		savings:   savings,
		reference: "mileage/age-adjusted median",
		notes:     []string{fmt.Sprintf("value multiplier %.2fx", mult)},
	}
}

// vehicleMultiplier converts a price into a wear-adjusted price so that a
// high-mileage older car looks as expensive as it really is.
func (e *PriceAnomalyEngine) vehicleMultiplier(l models.ListingRecord, currentYear int) float64 {
	mileage := unknownMileageFactor
	if km, ok := ParseMileageKm(l.SecondaryText); ok {
		mileage = math.Pow(2, km/mileageDoublingKm)
	} else if km, ok := ParseMileageKm(l.Title); ok {
		mileage = math.Pow(2, km/mileageDoublingKm)
	}

	age := 1.0
	if year, ok := ParseModelYear(l.Title, currentYear); ok {
		years := math.Max(0, math.Min(maxAgeYears, float64(currentYear-year)))
		age = 1 + agePenaltyPerYear*years
	}

	return math.Min(mileage*age, e.cfg.VehicleMultiplierCap)
}

func (e *PriceAnomalyEngine) scoreElectronics(l models.ListingRecord, s *PriceSample) categoryScore {
	text := strings.ToLower(l.Title + " " + l.SecondaryText)
	sc := categoryScore{reference: "sample median"}

	ref := s.Median
	if model, price, ok := lookupRetail(l.Title); ok {
		ref = price
		sc.reference = "expected retail for " + model
	}
	sc.savings = savingsPercent(l.Price, ref)

	switch {
	case sc.savings >= 40:
		sc.score = 30
	case sc.savings >= 25:
		sc.score = 20
	case sc.savings >= 10:
		sc.score = 10
	case sc.savings <= -20:
		sc.score = -25
	case sc.savings <= -5:
		sc.score = -12
	}

	if hits := containsAny(text, sealedKeywords); len(hits) > 0 {
		sc.score += 5
		sc.notes = append(sc.notes, "new/sealed")
	}
	if hits := containsAny(text, damagedKeywords); len(hits) > 0 {
		sc.score -= 15
		sc.notes = append(sc.notes, "damaged: "+hits[0])
	}
	if hits := containsAny(text, refurbishedKeywords); len(hits) > 0 && l.Price < refurbishedMedianRate*s.Median {
		sc.score += 5
		sc.notes = append(sc.notes, "refurbished well below median")
	}
	return sc
}

func (e *PriceAnomalyEngine) scoreProperty(l models.ListingRecord, s *PriceSample) categoryScore {
	text := strings.ToLower(l.Title + " " + l.SecondaryText)
	savings := savingsPercent(l.Price, s.Median)
	sc := categoryScore{
		score:     savings * propertyScoreWeight,
		savings:   savings,
		reference: "median",
	}

	if hits := containsAny(text, premiumKeywords); len(hits) > 0 {
		sc.score += 5
		sc.notes = append(sc.notes, "premium location: "+hits[0])
	}
	switch {
	case strings.Contains(text, "unfurnished"):
		sc.score -= 3
		sc.notes = append(sc.notes, "unfurnished")
	case strings.Contains(text, "furnished"):
		sc.score += 3
		sc.notes = append(sc.notes, "furnished")
	}
	return sc
}

// tier applies the too-good-to-be-true override before the score buckets.
func (e *PriceAnomalyEngine) tier(cat models.Category, savings, score float64) models.Tier {
	if savings >= e.threshold(cat) {
		return models.TierTooGoodToBeTrue
	}
	switch {
	case score >= 25:
		return models.TierExcellent
	case score >= 10:
		return models.TierGood
	case score >= 0:
		return models.TierFair
	case score <= -20:
		return models.TierOverpriced
	case score <= -10:
		return models.TierHighPrice
	default:
		return models.TierNeutral
	}
}

func (e *PriceAnomalyEngine) threshold(cat models.Category) float64 {
	t := e.cfg.CategoryThresholds
	switch cat {
	case models.CategoryVehicle:
		return t.Car
	case models.CategoryElectronics:
		return t.Electronics
	case models.CategoryProperty:
		return t.Property
	default:
		return t.General
	}
}

func rationale(tier models.Tier, sc categoryScore) string {
	var msg string
	switch tier {
	case models.TierTooGoodToBeTrue:
		msg = fmt.Sprintf("Too good to be true: %.0f%% below %s, probable mispricing or scam", sc.savings, sc.reference)
	case models.TierExcellent:
		msg = fmt.Sprintf("Excellent deal! %.0f%% below %s", sc.savings, sc.reference)
	case models.TierGood:
		msg = fmt.Sprintf("Good deal! %.0f%% below %s", sc.savings, sc.reference)
	case models.TierFair:
		msg = fmt.Sprintf("Fair price (%+.0f%% vs %s)", -sc.savings, sc.reference)
	case models.TierNeutral:
		msg = fmt.Sprintf("Slightly above %s (%.0f%%)", sc.reference, -sc.savings)
	case models.TierHighPrice:
		msg = fmt.Sprintf("High price: %.0f%% above %s", -sc.savings, sc.reference)
	case models.TierOverpriced:
		msg = fmt.Sprintf("Potentially overpriced (%.0f%% above %s)", -sc.savings, sc.reference)
	}
	if len(sc.notes) > 0 {
		msg += " [" + strings.Join(sc.notes, "; ") + "]"
	}
	return msg
}

func lookupRetail(title string) (string, float64, bool) {
	lower := strings.ToLower(title)
	for _, k := range retailKeys {
		if strings.Contains(lower, k) {
			return k, expectedRetail[k], true
		}
	}
	return "", 0, false
}

// savingsPercent is the signed percentage price sits below ref, clamped to
// ±999. A non-positive reference yields 0.
func savingsPercent(price, ref float64) float64 {
	if ref <= 0 {
		return 0
	}
	s := (ref - price) / ref * 100
	return math.Max(-savingsClamp, math.Min(savingsClamp, s))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
