package marketplace

import (
	"strconv"
	"strings"

	"marketplace-analyzer/models"
	"marketplace-analyzer/services"
)

// Attribute-row counts that identify the detail layout.
const (
	propertyElementCount = 15
	vehicleElementCount  = 8
	generalElementCount  = 3
)

// DetailPayload is what detailProbeJS reports about an open listing.
type DetailPayload struct {
	Found        bool     `json:"found"`
	ElementCount int      `json:"elementCount"`
	Category     string   `json:"category"`
	Date         string   `json:"date"`
	Description  string   `json:"description"`
	Condition    string   `json:"condition"`
	Driven       string   `json:"driven"`
	SellerLines  []string `json:"sellerLines"`
}

// ParseDetail turns a probe payload into listing attributes. It returns
// models.ErrUnavailable when the layout was not recognized rather than
// guessing a type.
func ParseDetail(p DetailPayload) (models.SingleListingAttributes, error) {
	if !p.Found || p.ElementCount < generalElementCount {
		return models.SingleListingAttributes{}, models.ErrUnavailable
	}

	attrs := models.SingleListingAttributes{
		Date:        services.NormalizeText(p.Date),
		Description: strings.TrimSpace(p.Description),
	}
	switch {
	case p.ElementCount >= propertyElementCount:
		attrs.Type = models.ListingTypePropertyRental
		if strings.EqualFold(strings.TrimSpace(p.Category), "home sales") {
			attrs.Type = models.ListingTypePropertySale
		}
	case p.ElementCount >= vehicleElementCount:
		attrs.Type = models.ListingTypeVehicle
		attrs.DistanceDriven = drivenDistance(p.Driven)
	default:
		attrs.Type = models.ListingTypeGeneral
		attrs.Condition = strings.ToLower(strings.TrimSpace(p.Condition))
	}

	attrs.SellerJoinYear, attrs.SellerHighlyRated = sellerInfo(p.SellerLines)
	return attrs, nil
}

// drivenDistance strips the "Driven" label from an odometer row.
func drivenDistance(text string) string {
	lower := strings.ToLower(services.NormalizeText(text))
	if i := strings.Index(lower, "driven "); i >= 0 {
		return lower[i+len("driven "):]
	}
	return lower
}

// sellerInfo reads the join year and rating badge from the seller rows.
func sellerInfo(lines []string) (joinYear int, highlyRated bool) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "highly rated"):
			highlyRated = true
		case strings.Contains(lower, "joined facebook"):
			if i := strings.LastIndex(lower, "in "); i >= 0 {
				fields := strings.Fields(lower[i+len("in "):])
				if len(fields) > 0 {
					if y, err := strconv.Atoi(fields[0]); err == nil {
						joinYear = y
					}
				}
			}
		}
	}
	return joinYear, highlyRated
}
