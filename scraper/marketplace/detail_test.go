package marketplace

import (
	"errors"
	"testing"

	"marketplace-analyzer/models"
)

func TestParseDetailClassifiesByElementCount(t *testing.T) {
	tests := []struct {
		name    string
		payload DetailPayload
		want    models.ListingType
	}{
		{"general", DetailPayload{Found: true, ElementCount: 3}, models.ListingTypeGeneral},
		{"vehicle", DetailPayload{Found: true, ElementCount: 8}, models.ListingTypeVehicle},
		{"rental", DetailPayload{Found: true, ElementCount: 15, Category: "Rentals"}, models.ListingTypePropertyRental},
		{"sale", DetailPayload{Found: true, ElementCount: 17, Category: "Home Sales"}, models.ListingTypePropertySale},
	}
	for _, tt := range tests {
		attrs, err := ParseDetail(tt.payload)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if attrs.Type != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, attrs.Type, tt.want)
		}
	}
}

func TestParseDetailUnavailable(t *testing.T) {
	for _, p := range []DetailPayload{
		{Found: false, ElementCount: 20},
		{Found: true, ElementCount: 2},
	} {
		if _, err := ParseDetail(p); !errors.Is(err, models.ErrUnavailable) {
			t.Errorf("payload %+v: got %v, want ErrUnavailable", p, err)
		}
	}
}

func TestParseDetailFields(t *testing.T) {
	attrs, err := ParseDetail(DetailPayload{
		Found:        true,
		ElementCount: 9,
		Date:         "  Listed 3 weeks ago ",
		Description:  " Runs great. Cash only. ",
		Driven:       "Driven 210,000 km",
		SellerLines:  []string{"Highly rated on Marketplace", "Joined Facebook in 2019"},
	})
	if err != nil {
		t.Fatalf("ParseDetail: %v", err)
	}
	if attrs.Date != "Listed 3 weeks ago" {
		t.Errorf("Date: got %q", attrs.Date)
	}
	if attrs.Description != "Runs great. Cash only." {
		t.Errorf("Description: got %q", attrs.Description)
	}
	if attrs.DistanceDriven != "210,000 km" {
		t.Errorf("DistanceDriven: got %q", attrs.DistanceDriven)
	}
	if attrs.SellerJoinYear != 2019 || !attrs.SellerHighlyRated {
		t.Errorf("seller: got %d, %v", attrs.SellerJoinYear, attrs.SellerHighlyRated)
	}
}

func TestParseDetailGeneralCondition(t *testing.T) {
	attrs, _ := ParseDetail(DetailPayload{Found: true, ElementCount: 4, Condition: "Used - Like New"})
	if attrs.Condition != "used - like new" {
		t.Errorf("Condition: got %q", attrs.Condition)
	}
	if attrs.SellerJoinYear != 0 || attrs.SellerHighlyRated {
		t.Errorf("missing seller rows should leave defaults, got %+v", attrs)
	}
}
