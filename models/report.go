package models

// SessionReport summarizes the aggregate of one keyword context.
type SessionReport struct {
	Keyword        string
	SessionID      string
	TotalListings  int
	PricedListings int
	MedianPrice    float64
	MAD            float64
	MinPrice       float64
	MaxPrice       float64
	ByCategory     map[Category]int
	ByTier         map[Tier]int
	Unscored       int
	Suspicious     int
	BestDeals      []ScoredListing
	Flagged        []ScoredListing
}
