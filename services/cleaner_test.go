package services

import (
	"testing"

	"marketplace-analyzer/models"
	"marketplace-analyzer/utils"
)

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$120", 120},
		{"ca$1,200", 1200},
		{"", 0},
		{"free", 0},
		{"$1,200.50", 1200.50},
		{"€99", 99},
	}

	for _, tt := range tests {
		got := ParsePrice(tt.raw)
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerParsesCard(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cards := []models.RawCard{{
		Lines:  []string{"$8,500", "2015 Honda Civic  EX", "Toronto, ON", "120K km"},
		Href:   "https://www.facebook.com/marketplace/item/123456/?ref=search",
		Handle: "h1",
	}}

	got := c.Clean(cards, "")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.Price != 8500 {
		t.Errorf("Price: got %.2f, want 8500", r.Price)
	}
	if r.Title != "2015 honda civic ex" {
		t.Errorf("Title: got %q", r.Title)
	}
	if r.SecondaryText != "120k km" {
		t.Errorf("SecondaryText: got %q", r.SecondaryText)
	}
	if r.ExternalID != "123456" {
		t.Errorf("ExternalID: got %q, want 123456", r.ExternalID)
	}
	if r.Handle != "h1" {
		t.Errorf("Handle: got %q, want h1", r.Handle)
	}
}

func TestCleanerSkipsJustListedAndCrossedOutPrice(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cards := []models.RawCard{
		{Lines: []string{"Just listed", "$50", "Oak desk", "Ottawa", "solid wood"}, Handle: "a"},
		{Lines: []string{"CA$900", "CA$1,100", "iPhone 13", "Toronto", "like new"}, Handle: "b"},
	}

	got := c.Clean(cards, "")
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Price != 50 || got[0].Title != "oak desk" || got[0].SecondaryText != "solid wood" {
		t.Errorf("just-listed card parsed as %+v", got[0])
	}
	if got[1].Price != 900 || got[1].Title != "iphone 13" || got[1].SecondaryText != "like new" {
		t.Errorf("crossed-out card parsed as %+v", got[1])
	}
}

func TestCleanerDropsUnparseableCards(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cards := []models.RawCard{
		{Lines: []string{"Sponsored"}, Handle: "a"},
		{Lines: []string{"$40"}, Handle: "b"},
		{Lines: nil, Handle: "c"},
	}
	if got := c.Clean(cards, ""); len(got) != 0 {
		t.Errorf("expected 0 records, got %d", len(got))
	}
}

func TestCleanerKeywordFilter(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cards := []models.RawCard{
		{Lines: []string{"$8,500", "2015 Honda Civic", "Toronto"}, Handle: "a"},
		{Lines: []string{"$600", "iPhone 13", "Toronto"}, Handle: "b"},
	}

	got := c.Clean(cards, "  Civic ")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Title != "2015 honda civic" {
		t.Errorf("Title: got %q", got[0].Title)
	}
}

func TestCleanerDeduplicatesHandles(t *testing.T) {
	c := NewCleaner(newTestLogger())
	card := models.RawCard{Lines: []string{"$100", "Bike", "Ottawa"}, Handle: "same"}
	got := c.Clean([]models.RawCard{card, card, card}, "")
	if len(got) != 1 {
		t.Errorf("expected 1 record after dedup, got %d", len(got))
	}
}

func TestExtractItemID(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://www.facebook.com/marketplace/item/987654321/?ref=search", "987654321"},
		{"/marketplace/item/42/", "42"},
		{"https://www.facebook.com/marketplace/toronto", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractItemID(tt.href); got != tt.want {
			t.Errorf("ExtractItemID(%q) = %q; want %q", tt.href, got, tt.want)
		}
	}
}

func TestParseMileageKm(t *testing.T) {
	tests := []struct {
		text   string
		want   float64
		wantOK bool
	}{
		{"120,000 km", 120000, true},
		{"Driven 85K miles", 136000, true},
		{"90000 mi", 144000, true},
		{"no odometer here", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseMileageKm(tt.text)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseMileageKm(%q) = %.0f, %v; want %.0f, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseModelYear(t *testing.T) {
	if y, ok := ParseModelYear("2015 honda civic", 2026); !ok || y != 2015 {
		t.Errorf("got %d, %v; want 2015, true", y, ok)
	}
	if _, ok := ParseModelYear("honda civic 2035", 2026); ok {
		t.Error("future year should be ignored")
	}
	if _, ok := ParseModelYear("honda civic", 2026); ok {
		t.Error("title without year should not parse")
	}
}

func TestParseListedAge(t *testing.T) {
	tests := []struct {
		text     string
		wantN    int
		wantUnit string
		wantOK   bool
	}{
		{"3 weeks ago", 3, "week", true},
		{"Listed over a year ago", 1, "year", true},
		{"about an hour ago", 1, "hour", true},
		{"listed 2 days ago", 2, "day", true},
		{"yesterday", 0, "", false},
	}
	for _, tt := range tests {
		n, unit, ok := ParseListedAge(tt.text)
		if n != tt.wantN || unit != tt.wantUnit || ok != tt.wantOK {
			t.Errorf("ParseListedAge(%q) = %d, %q, %v; want %d, %q, %v",
				tt.text, n, unit, ok, tt.wantN, tt.wantUnit, tt.wantOK)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  hello   world  ", "hello world"},
		{"\n\ttabbed\n", "tabbed"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
