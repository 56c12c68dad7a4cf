package models

import (
	"strconv"
	"strings"
	"time"
)

// ElementHandle is an opaque reference to the rendered node a listing was
// read from. The highlight adapter resolves it back to a live element, which
// may have been evicted in the meantime.
type ElementHandle string

// ListingRecord is one listing as read from the results collection.
// It is immutable once ingested, except for DetectedAt which the aggregate
// store sets on first sight.
type ListingRecord struct {
	// ExternalID is the marketplace item id when the link exposes one.
	ExternalID    string
	Price         float64
	Title         string
	SecondaryText string
	Handle        ElementHandle
	DetectedAt    time.Time
}

// Key returns the identity used for deduplication: the external id when
// present, otherwise a composite of normalized title, price and secondary
// text. The composite path is best-effort: identical text from two sellers
// collapses into one record, and a repriced listing is treated as new.
func (r ListingRecord) Key() string {
	if id := strings.TrimSpace(r.ExternalID); id != "" {
		return "item:" + id
	}
	return CompositeKey(r.Title, r.Price, r.SecondaryText)
}

// CompositeKey builds the fallback identity for listings without an id.
func CompositeKey(title string, price float64, secondary string) string {
	return normalizeKeyPart(title) + "_" +
		strconv.FormatFloat(price, 'f', -1, 64) + "_" +
		normalizeKeyPart(secondary)
}

func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// RawCard is the unprocessed text of one rendered listing card, in document
// order, before price and title lines are located.
type RawCard struct {
	Lines  []string
	Href   string
	Handle ElementHandle
}
