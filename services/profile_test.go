package services

import (
	"math"
	"testing"

	"marketplace-analyzer/models"
)

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func TestAssessRiskHighRisk(t *testing.T) {
	attrs := models.SingleListingAttributes{
		Type:           models.ListingTypeGeneral,
		Description:    "URGENT sale, pay by cash app only",
		SellerJoinYear: 2026,
	}
	r := AssessRisk(attrs, 2026)

	// 0.15 unrated + 0.3 new account + 0.1 urgent + 0.1 cash app
	if math.Abs(r.ScamScore-0.65) > 1e-9 {
		t.Errorf("ScamScore: got %v, want 0.65", r.ScamScore)
	}
	if r.Conclusion != models.ConclusionHighRisk {
		t.Errorf("Conclusion: got %q", r.Conclusion)
	}
	if !hasFlag(r.RedFlags, flagUnratedSeller) || !hasFlag(r.RedFlags, flagNewAccount) {
		t.Errorf("RedFlags: got %v", r.RedFlags)
	}
	if len(r.ConcerningKeywords) != 2 {
		t.Errorf("ConcerningKeywords: got %v", r.ConcerningKeywords)
	}
}

func TestAssessRiskNegotiableDamping(t *testing.T) {
	attrs := models.SingleListingAttributes{
		Description:    "urgent sale, pay by cash app only. price negotiable",
		SellerJoinYear: 2026,
	}
	r := AssessRisk(attrs, 2026)
	if math.Abs(r.ScamScore-0.65*0.75) > 1e-9 {
		t.Errorf("ScamScore: got %v, want %v", r.ScamScore, 0.65*0.75)
	}
	if r.Conclusion != models.ConclusionHighRisk {
		t.Errorf("Conclusion: got %q", r.Conclusion)
	}
}

func TestAssessRiskConclusions(t *testing.T) {
	tests := []struct {
		name  string
		attrs models.SingleListingAttributes
		want  models.Conclusion
	}{
		{
			name:  "established rated seller",
			attrs: models.SingleListingAttributes{SellerHighlyRated: true, SellerJoinYear: 2015, Description: "great condition"},
			want:  models.ConclusionLikelySafe,
		},
		{
			name:  "unrated seller alone",
			attrs: models.SingleListingAttributes{Description: "great condition"},
			want:  models.ConclusionLikelySafe,
		},
		{
			name:  "last-year account with offers and urgency",
			attrs: models.SingleListingAttributes{SellerHighlyRated: true, SellerJoinYear: 2025, Description: "urgent, obo, paypal ok"},
			want:  models.ConclusionCaution,
		},
	}
	for _, tt := range tests {
		r := AssessRisk(tt.attrs, 2026)
		if r.Conclusion != tt.want {
			t.Errorf("%s: got %q (score %.3f), want %q", tt.name, r.Conclusion, r.ScamScore, tt.want)
		}
	}
}

func TestAssessRiskPressureFlag(t *testing.T) {
	r := AssessRisk(models.SingleListingAttributes{
		SellerHighlyRated: true,
		Description:       "$500 or best offer, obo",
	}, 2026)

	count := 0
	for _, f := range r.RedFlags {
		if f == flagPressure {
			count++
		}
	}
	if count != 1 {
		t.Errorf("pressure flag should appear once, got %d in %v", count, r.RedFlags)
	}
}

func TestAssessRiskRecency(t *testing.T) {
	tests := []struct {
		joinYear int
		want     float64
	}{
		{2026, 0.3},
		{2025, 0.075},
		{2024, 0},
		{0, 0},
	}
	for _, tt := range tests {
		r := AssessRisk(models.SingleListingAttributes{SellerHighlyRated: true, SellerJoinYear: tt.joinYear}, 2026)
		if math.Abs(r.ScamScore-tt.want) > 1e-9 {
			t.Errorf("joinYear %d: got %v, want %v", tt.joinYear, r.ScamScore, tt.want)
		}
	}
}

func TestAssessRiskMileageAndStaleness(t *testing.T) {
	car := models.SingleListingAttributes{
		Type:              models.ListingTypeVehicle,
		SellerHighlyRated: true,
		DistanceDriven:    "150,000 miles",
		Date:              "3 weeks ago",
	}
	r := AssessRisk(car, 2026)
	if !hasFlag(r.RedFlags, flagHighMileage) {
		t.Errorf("expected high mileage flag, got %v", r.RedFlags)
	}
	if !hasFlag(r.RedFlags, flagStale) {
		t.Errorf("expected stale flag, got %v", r.RedFlags)
	}
	if r.ScamScore != 0 {
		t.Errorf("flags alone should not score: got %v", r.ScamScore)
	}

	car.DistanceDriven = "150,000 km"
	car.Date = "2 weeks ago"
	r = AssessRisk(car, 2026)
	if hasFlag(r.RedFlags, flagHighMileage) || hasFlag(r.RedFlags, flagStale) {
		t.Errorf("unexpected flags: %v", r.RedFlags)
	}

	general := models.SingleListingAttributes{SellerHighlyRated: true, DistanceDriven: "900,000 km", Date: "over a year ago"}
	r = AssessRisk(general, 2026)
	if hasFlag(r.RedFlags, flagHighMileage) {
		t.Error("mileage applies to vehicles only")
	}
	if !hasFlag(r.RedFlags, flagStale) {
		t.Error("a year-old listing should be stale")
	}
}

func TestAssessRiskIsDeterministic(t *testing.T) {
	attrs := models.SingleListingAttributes{Description: "bitcoin only, act fast", SellerJoinYear: 2025}
	a := AssessRisk(attrs, 2026)
	b := AssessRisk(attrs, 2026)
	if a.ScamScore != b.ScamScore || a.Conclusion != b.Conclusion || len(a.RedFlags) != len(b.RedFlags) {
		t.Errorf("reports differ: %+v vs %+v", a, b)
	}
}

func TestRiskProfileDescriptionReveal(t *testing.T) {
	p := NewRiskProfile().WithClock(fixedClock)

	if _, changed := p.OnDescriptionRevealed("anything"); changed {
		t.Error("reveal before ingest should be ignored")
	}

	p.Ingest(models.SingleListingAttributes{SellerHighlyRated: true, Description: "nice bike... See more"})
	if got := p.Report().ScamScore; got != 0 {
		t.Fatalf("initial score: got %v, want 0", got)
	}

	r, changed := p.OnDescriptionRevealed("nice bike, pay with bitcoin, act now")
	if !changed {
		t.Fatal("longer description should be adopted")
	}
	if math.Abs(r.ScamScore-0.2) > 1e-9 {
		t.Errorf("ScamScore after reveal: got %v, want 0.2", r.ScamScore)
	}
	if p.Report().Attributes.Description != "nice bike, pay with bitcoin, act now" {
		t.Errorf("stored description: got %q", p.Report().Attributes.Description)
	}

	if _, changed := p.OnDescriptionRevealed("short"); changed {
		t.Error("shorter description should be ignored")
	}
}
