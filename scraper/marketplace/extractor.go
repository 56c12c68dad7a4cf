package marketplace

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"marketplace-analyzer/models"
	"marketplace-analyzer/services"
	"marketplace-analyzer/utils"
)

type collectionPayload struct {
	Found bool   `json:"found"`
	HTML  string `json:"html"`
}

// Extractor reads listings from the tab carried by the context passed to its
// methods, which must descend from a chromedp tab context.
type Extractor struct {
	cleaner *services.Cleaner
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(cleaner *services.Cleaner, retry *utils.RetryConfig, logger *utils.Logger) *Extractor {
	return &Extractor{cleaner: cleaner, retry: retry, logger: logger}
}

// ExtractVisible tags the rendered listing cards and parses them. It returns
// nil without error when the page has no listing collection.
func (e *Extractor) ExtractVisible(ctx context.Context, keyword string) ([]models.ListingRecord, error) {
	var payload collectionPayload
	err := e.retry.Do(ctx, "read-collection", func(ctx context.Context) error {
		return chromedp.Run(ctx, chromedp.Evaluate(collectionJS, &payload))
	})
	if err != nil {
		return nil, fmt.Errorf("marketplace: read collection: %w", err)
	}
	if !payload.Found {
		return nil, nil
	}

	cards, err := ParseCollection(strings.NewReader(payload.HTML))
	if err != nil {
		return nil, err
	}
	e.logger.Debug("[extractor] %d cards rendered", len(cards))
	return e.cleaner.Clean(cards, keyword), nil
}

// ExtractSingle reads the open detail view.
func (e *Extractor) ExtractSingle(ctx context.Context) (models.SingleListingAttributes, error) {
	var payload DetailPayload
	if err := chromedp.Run(ctx, chromedp.Evaluate(detailProbeJS, &payload)); err != nil {
		return models.SingleListingAttributes{}, fmt.Errorf("marketplace: probe detail: %w", err)
	}
	e.logger.Debug("[extractor] Detail probe: found=%v elements=%d", payload.Found, payload.ElementCount)
	return ParseDetail(payload)
}

// ExpandDescription clicks "See more" inside the description that starts
// like current. It reports whether there was anything to expand.
func (e *Extractor) ExpandDescription(ctx context.Context, current string) (bool, error) {
	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expandDescriptionJS(current), &clicked)); err != nil {
		return false, fmt.Errorf("marketplace: expand description: %w", err)
	}
	return clicked, nil
}
