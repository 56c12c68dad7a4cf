package marketplace

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
	"marketplace-analyzer/utils"
)

// Highlighter colors tagged listing cards in one tab. Handles whose node has
// been evicted are skipped by the page script.
type Highlighter struct {
	tab    context.Context
	logger *utils.Logger

	mu     sync.RWMutex
	colors config.HighlightColors
}

// NewHighlighter creates a Highlighter for tab.
func NewHighlighter(tab context.Context, colors config.HighlightColors, logger *utils.Logger) *Highlighter {
	return &Highlighter{tab: tab, colors: colors, logger: logger}
}

// SetColors replaces the palette used by later Apply calls.
func (h *Highlighter) SetColors(colors config.HighlightColors) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors = colors
}

func (h *Highlighter) Apply(handle models.ElementHandle, color models.ColorToken, tooltip string) {
	if handle == "" {
		return
	}
	h.eval(handle, highlightJS(string(handle), h.css(color), tooltip))
}

func (h *Highlighter) Reset(handle models.ElementHandle) {
	if handle == "" {
		return
	}
	h.eval(handle, resetJS(string(handle)))
}

func (h *Highlighter) css(color models.ColorToken) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch color {
	case models.ColorGoodDeal:
		return h.colors.GoodDeal
	case models.ColorOverpriced:
		return h.colors.Overpriced
	case models.ColorPotentialScam:
		return h.colors.PotentialScam
	}
	return ""
}

func (h *Highlighter) eval(handle models.ElementHandle, js string) {
	var live bool
	if err := chromedp.Run(h.tab, chromedp.Evaluate(js, &live)); err != nil {
		h.logger.Debug("[highlight] %s: %v", handle, err)
		return
	}
	if !live {
		h.logger.Debug("[highlight] %s no longer on the page", handle)
	}
}
