package marketplace

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"marketplace-analyzer/models"
)

const itemPathFragment = "/marketplace/item/"

// ParseCollection reads listing cards out of collection markup. Cards tagged
// with a handle attribute are used when present; otherwise, as in a saved
// results page, every item link is a card without a handle.
func ParseCollection(r io.Reader) ([]models.RawCard, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("marketplace: parse collection: %w", err)
	}

	var cards []models.RawCard
	collectCards(doc, &cards, func(n *html.Node) (models.ElementHandle, bool) {
		h := attr(n, handleAttr)
		return models.ElementHandle(h), h != ""
	})
	if len(cards) > 0 {
		return cards, nil
	}

	collectCards(doc, &cards, func(n *html.Node) (models.ElementHandle, bool) {
		return "", n.DataAtom == atom.A && strings.Contains(attr(n, "href"), itemPathFragment)
	})
	return cards, nil
}

// collectCards walks the tree and turns every node accepted by isCard into a
// card. Cards are not searched for nested cards.
func collectCards(n *html.Node, cards *[]models.RawCard, isCard func(*html.Node) (models.ElementHandle, bool)) {
	if n.Type == html.ElementNode {
		if skipElement(n) {
			return
		}
		if handle, ok := isCard(n); ok {
			*cards = append(*cards, models.RawCard{
				Lines:  textLines(n),
				Href:   cardHref(n),
				Handle: handle,
			})
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectCards(c, cards, isCard)
	}
}

// textLines returns the non-empty text nodes under n in document order. Each
// text node of a card (price, title, location, mileage) renders on its own
// line.
func textLines(n *html.Node) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
			return
		case html.ElementNode:
			if skipElement(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return lines
}

func cardHref(n *html.Node) string {
	if n.DataAtom == atom.A {
		if href := attr(n, "href"); href != "" {
			return href
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if href := cardHref(c); strings.Contains(href, itemPathFragment) {
			return href
		}
	}
	return ""
}

func skipElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Svg:
		return true
	}
	return attr(n, "aria-hidden") == "true"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
