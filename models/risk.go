package models

import "errors"

// ErrUnavailable is returned by extractors when a detail page does not have
// the structure they expect. Callers must not guess a listing type.
var ErrUnavailable = errors.New("unable to extract listing data")

// ListingType is the detail-page classification derived from its layout.
type ListingType string

const (
	ListingTypeGeneral        ListingType = "general"
	ListingTypeVehicle        ListingType = "vehicle"
	ListingTypePropertyRental ListingType = "property rental"
	ListingTypePropertySale   ListingType = "property sale"
)

// SingleListingAttributes is an immutable snapshot of what was read from a
// single listing's detail view. A revealed description produces a new
// snapshot via WithDescription.
type SingleListingAttributes struct {
	Type ListingType `json:"type"`
	// Date is the relative listing age as shown, e.g. "3 weeks ago".
	Date        string `json:"date"`
	Description string `json:"description"`
	// Condition is empty when the page has no condition row.
	Condition string `json:"condition,omitempty"`
	// DistanceDriven is the raw odometer text for vehicles, e.g. "120,000 km".
	DistanceDriven string `json:"distance_driven,omitempty"`
	// SellerJoinYear is 0 when the profile does not show it.
	SellerJoinYear    int  `json:"seller_join_year,omitempty"`
	SellerHighlyRated bool `json:"seller_highly_rated"`
}

// WithDescription returns a copy carrying a replaced description.
func (a SingleListingAttributes) WithDescription(text string) SingleListingAttributes {
	a.Description = text
	return a
}

// Conclusion buckets a scam score.
type Conclusion string

const (
	ConclusionLikelySafe Conclusion = "Most likely safe."
	ConclusionCaution    Conclusion = "Scam possible, proceed with caution."
	ConclusionHighRisk   Conclusion = "Scam likely. Use extreme caution or find a different listing."
)

// RiskReport is derived wholesale from one attribute snapshot.
type RiskReport struct {
	ScamScore          float64                 `json:"scam_score"`
	Conclusion         Conclusion              `json:"conclusion"`
	RedFlags           []string                `json:"red_flags"`
	ConcerningKeywords []string                `json:"concerning_keywords"`
	Attributes         SingleListingAttributes `json:"attributes"`
}
