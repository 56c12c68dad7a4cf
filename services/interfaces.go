package services

import (
	"context"

	"marketplace-analyzer/models"
)

// RecordExtractor reads listings out of the rendered page.
type RecordExtractor interface {
	// ExtractVisible returns the structurally valid listing cards currently
	// rendered, skipping any it cannot parse. A nil slice with a nil error
	// means the collection itself is absent.
	ExtractVisible(ctx context.Context, keyword string) ([]models.ListingRecord, error)
	// ExtractSingle reads the open detail view. It returns
	// models.ErrUnavailable when the page does not have the expected shape.
	ExtractSingle(ctx context.Context) (models.SingleListingAttributes, error)
}

// HighlightSink decorates listing elements. Both methods are fire-and-forget
// and silently do nothing when the handle no longer resolves.
type HighlightSink interface {
	Apply(handle models.ElementHandle, color models.ColorToken, tooltip string)
	Reset(handle models.ElementHandle)
}
