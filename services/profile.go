package services

import (
	"math"
	"strings"
	"sync"
	"time"

	"marketplace-analyzer/models"
)

const (
	unratedSellerPenalty = 0.15
	recencyWeight        = 0.075
	maxRecencyIndex      = 2
	tier1Weight          = 0.10
	tier2Weight          = 0.05
	negotiableDamping    = 0.75
	highMileageKm        = 200000

	safeCeiling    = 0.2
	cautionCeiling = 0.4
)

// tier1Phrases are urgency and untraceable-payment phrases.
var tier1Phrases = []string{
	"act fast", "act now", "urgent", "limited time offer", "cash app", "cashapp",
	"no viewing", "bitcoin", "ethereum", "crypto", "pay with gift card",
}

// tier2Phrases are negotiation and soft payment phrases.
var tier2Phrases = []string{
	"paypal", "or best offer", "obo", "hold it", "gift card", "refurbished",
}

const (
	flagUnratedSeller = "Non-reputable seller"
	flagNewAccount    = "Brand new account"
	flagPressure      = "You will likely be pressured to pay more than listed price."
	flagHighMileage   = "High mileage. Poor resale value"
	flagStale         = "Seller either rarely checks in, or no one wants this for a reason."
)

// RiskProfile holds the risk assessment of one listing detail view. Every
// change to its attributes recomputes the report from scratch.
type RiskProfile struct {
	mu     sync.RWMutex
	now    func() time.Time
	report models.RiskReport
	loaded bool
}

// NewRiskProfile creates an empty profile.
func NewRiskProfile() *RiskProfile {
	return &RiskProfile{now: time.Now}
}

// WithClock overrides the clock used for account recency. Used by tests.
func (p *RiskProfile) WithClock(now func() time.Time) *RiskProfile {
	p.now = now
	return p
}

// Ingest replaces the attribute snapshot and returns the recomputed report.
func (p *RiskProfile) Ingest(attrs models.SingleListingAttributes) models.RiskReport {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report = AssessRisk(attrs, p.now().Year())
	p.loaded = true
	return p.report
}

// OnDescriptionRevealed adopts text when it is longer than the stored
// description and recomputes. It reports whether the report changed.
func (p *RiskProfile) OnDescriptionRevealed(text string) (models.RiskReport, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded || len(text) <= len(p.report.Attributes.Description) {
		return p.report, false
	}
	p.report = AssessRisk(p.report.Attributes.WithDescription(text), p.now().Year())
	return p.report, true
}

// Report returns the latest report.
func (p *RiskProfile) Report() models.RiskReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.report
}

// AssessRisk derives a report from one attribute snapshot. It is pure, so a
// stored snapshot always reproduces the same score.
func AssessRisk(attrs models.SingleListingAttributes, currentYear int) models.RiskReport {
	r := models.RiskReport{
		Attributes:         attrs,
		RedFlags:           []string{},
		ConcerningKeywords: []string{},
	}
	score := 0.0

	if !attrs.SellerHighlyRated {
		score += unratedSellerPenalty
		r.RedFlags = append(r.RedFlags, flagUnratedSeller)
	}

	// 1 when the seller joined last year, 4 when they joined this year.
	if idx := recencyIndex(attrs.SellerJoinYear, currentYear); idx > 0 {
		score += recencyWeight * float64(idx*idx)
		if idx == maxRecencyIndex {
			r.RedFlags = append(r.RedFlags, flagNewAccount)
		}
	}

	desc := strings.ToLower(attrs.Description)
	for _, kw := range containsAny(desc, tier1Phrases) {
		score += tier1Weight
		r.ConcerningKeywords = append(r.ConcerningKeywords, kw)
	}
	for _, kw := range containsAny(desc, tier2Phrases) {
		score += tier2Weight
		r.ConcerningKeywords = append(r.ConcerningKeywords, kw)
		if kw == "or best offer" || kw == "obo" {
			r.RedFlags = appendOnce(r.RedFlags, flagPressure)
		}
	}

	if attrs.Type == models.ListingTypeVehicle {
		if km, ok := ParseMileageKm(attrs.DistanceDriven); ok && km > highMileageKm {
			r.RedFlags = append(r.RedFlags, flagHighMileage)
		}
	}

	if isStale(attrs.Date) {
		r.RedFlags = append(r.RedFlags, flagStale)
	}

	if strings.Contains(desc, "negotiable") {
		score *= negotiableDamping
	}

	r.ScamScore = score
	r.Conclusion = conclude(score)
	return r
}

func recencyIndex(joinYear, currentYear int) int {
	if joinYear <= 0 {
		return 0
	}
	idx := joinYear - currentYear + maxRecencyIndex
	return int(math.Max(0, math.Min(maxRecencyIndex, float64(idx))))
}

// isStale reports listings up for three weeks or more, or any number of
// months or years.
func isStale(date string) bool {
	n, unit, ok := ParseListedAge(date)
	if !ok {
		return false
	}
	switch unit {
	case "year", "month":
		return true
	case "week":
		return n > 2
	}
	return false
}

func conclude(score float64) models.Conclusion {
	switch {
	case score <= safeCeiling:
		return models.ConclusionLikelySafe
	case score <= cautionCeiling:
		return models.ConclusionCaution
	default:
		return models.ConclusionHighRisk
	}
}

func appendOnce(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
