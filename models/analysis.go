package models

// Category is the coarse classification that selects a pricing formula.
type Category string

const (
	CategoryVehicle     Category = "vehicle"
	CategoryElectronics Category = "electronics"
	CategoryProperty    Category = "property"
	CategoryGeneral     Category = "general"
)

// Tier is the advisory bucket a listing lands in after scoring.
type Tier string

const (
	TierTooGoodToBeTrue Tier = "too-good-to-be-true"
	TierExcellent       Tier = "excellent"
	TierGood            Tier = "good"
	TierFair            Tier = "fair"
	TierNeutral         Tier = "neutral"
	TierHighPrice       Tier = "high-price"
	TierOverpriced      Tier = "overpriced"
)

// IsDeal reports whether the tier marks a listing as priced below its
// reference. Too-good-to-be-true counts as a deal.
func (t Tier) IsDeal() bool {
	return t == TierTooGoodToBeTrue || t == TierExcellent || t == TierGood
}

// IsExpensive reports whether the tier marks a listing as priced above its
// reference.
func (t Tier) IsExpensive() bool {
	return t == TierHighPrice || t == TierOverpriced
}

// AnalysisResult is produced per listing per analysis pass and consumed
// immediately by the highlighting decision.
type AnalysisResult struct {
	Score          float64  `json:"score"`
	Rationale      string   `json:"rationale"`
	Category       Category `json:"category"`
	SavingsPercent float64  `json:"savings_percent"`
	Tier           Tier     `json:"tier"`
}

// ScamSignal is the outcome of the independent scam pass.
type ScamSignal struct {
	Suspicious bool     `json:"suspicious"`
	Reasons    []string `json:"reasons,omitempty"`
}

// ColorToken names a highlight style; the sink maps it to a concrete color.
type ColorToken string

const (
	ColorGoodDeal      ColorToken = "good-deal"
	ColorOverpriced    ColorToken = "overpriced"
	ColorPotentialScam ColorToken = "potential-scam"
)

// Decision is what one analysis pass concluded for one visible listing.
type Decision struct {
	Record ListingRecord
	// Result is nil when the listing was left unscored (insufficient sample
	// or non-positive reference price).
	Result *AnalysisResult
	Scam   ScamSignal
}

// ScoredListing is an aggregate row joined with its latest analysis, used for
// export and reporting.
type ScoredListing struct {
	Key       string          `json:"key"`
	Record    ListingRecord   `json:"record"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Scam      ScamSignal      `json:"scam"`
	SessionID string          `json:"session_id"`
	Keyword   string          `json:"keyword"`
}
