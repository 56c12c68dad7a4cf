package marketplace

import (
	"strings"
	"testing"
)

const taggedCollection = `
<div aria-label="Collection of Marketplace items">
  <a href="/marketplace/item/111/?ref=search" data-mpa-id="mpa-1">
    <img src="x.jpg">
    <div><span>CA$8,500</span></div>
    <div><span>2015 Honda Civic</span></div>
    <div><span>Toronto, ON</span></div>
    <div><span>120K km</span></div>
  </a>
  <a href="/marketplace/item/222/" data-mpa-id="mpa-2">
    <span>CA$900</span><span>CA$1,100</span>
    <span>iPhone 13</span><span>Ottawa</span>
    <script>var x = 1;</script>
  </a>
  <a href="/marketplace/toronto/">See more</a>
</div>`

func TestParseCollectionTagged(t *testing.T) {
	cards, err := ParseCollection(strings.NewReader(taggedCollection))
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}

	c := cards[0]
	if c.Handle != "mpa-1" {
		t.Errorf("Handle: got %q, want mpa-1", c.Handle)
	}
	if c.Href != "/marketplace/item/111/?ref=search" {
		t.Errorf("Href: got %q", c.Href)
	}
	want := []string{"CA$8,500", "2015 Honda Civic", "Toronto, ON", "120K km"}
	if strings.Join(c.Lines, "|") != strings.Join(want, "|") {
		t.Errorf("Lines: got %q, want %q", c.Lines, want)
	}

	if got := strings.Join(cards[1].Lines, "|"); got != "CA$900|CA$1,100|iPhone 13|Ottawa" {
		t.Errorf("script text should be skipped, got %q", got)
	}
}

func TestParseCollectionUntaggedFallback(t *testing.T) {
	page := `<html><body><div role="main">
		<div class="card"><a href="https://www.facebook.com/marketplace/item/333/"><span>$40</span><span>Oak desk</span></a></div>
		<a href="/marketplace/category/free">Free stuff</a>
	</div></body></html>`

	cards, err := ParseCollection(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Handle != "" {
		t.Errorf("untagged card should have no handle, got %q", cards[0].Handle)
	}
	if cards[0].Href != "https://www.facebook.com/marketplace/item/333/" {
		t.Errorf("Href: got %q", cards[0].Href)
	}
}

func TestParseCollectionEmpty(t *testing.T) {
	cards, err := ParseCollection(strings.NewReader(`<div role="main"></div>`))
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("expected no cards, got %d", len(cards))
	}
}
