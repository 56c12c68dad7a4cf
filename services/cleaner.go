package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"marketplace-analyzer/models"
	"marketplace-analyzer/utils"
)

var (
	// priceRegexp captures numeric price values
	priceRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// currencyRegexp recognizes a line that is a price rather than a title
	currencyRegexp = regexp.MustCompile(`^\s*(?:[a-z]{0,3}[$€£¥₹]|free\b)`)
	// itemIDRegexp captures the marketplace item id from a listing link
	itemIDRegexp = regexp.MustCompile(`/marketplace/item/(\d+)`)
	// mileageRegexp captures odometer readings such as "120k km" or "85,000 miles"
	mileageRegexp = regexp.MustCompile(`(\d[\d,.]*)\s*(k)?\s*(km|kms|kilometers|kilometres|mi|miles)\b`)
	// yearRegexp captures a plausible model year
	yearRegexp = regexp.MustCompile(`\b(19[5-9]\d|20\d\d)\b`)
)

const justListed = "just listed"

// Cleaner turns raw listing cards into ListingRecords. Cards it cannot parse
// are skipped, never fabricated.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean processes the cards of one collection snapshot. When keyword is
// non-empty, only cards whose title contains it are returned. Cards repeated
// within the snapshot (same element handle) are dropped.
func (c *Cleaner) Clean(cards []models.RawCard, keyword string) []models.ListingRecord {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	seen := utils.NewKeySet()
	result := make([]models.ListingRecord, 0, len(cards))
	var unparsed, unmatched int

	for _, card := range cards {
		if card.Handle != "" && !seen.Add(string(card.Handle)) {
			continue
		}

		rec, ok := c.parseCard(card, keyword)
		if !ok {
			if rec.Title == "" {
				unparsed++
			} else {
				unmatched++
			}
			continue
		}
		result = append(result, rec)
	}

	c.logger.Debug("[cleaner] Cleaned %d cards -> %d records (unparsed %d, off-keyword %d)",
		len(cards), len(result), unparsed, unmatched)
	return result
}

// parseCard locates the price line, skips crossed-out prices, and reads the
// title and secondary text that follow. A returned record with a title but
// ok=false means the card did not match the keyword.
func (c *Cleaner) parseCard(card models.RawCard, keyword string) (models.ListingRecord, bool) {
	lines := make([]string, 0, len(card.Lines))
	for _, l := range card.Lines {
		if l = strings.ToLower(NormalizeText(l)); l != "" {
			lines = append(lines, l)
		}
	}

	idx := 0
	for idx < len(lines) && (lines[idx] == justListed || ParsePrice(lines[idx]) == 0) {
		idx++
	}
	if idx >= len(lines) {
		return models.ListingRecord{}, false
	}
	price := ParsePrice(lines[idx])

	titleIdx := idx + 1
	for titleIdx < len(lines) && isPriceLine(lines[titleIdx]) {
		titleIdx++
	}
	if titleIdx >= len(lines) {
		return models.ListingRecord{}, false
	}

	rec := models.ListingRecord{
		ExternalID: ExtractItemID(card.Href),
		Price:      price,
		Title:      lines[titleIdx],
		Handle:     card.Handle,
	}
	if titleIdx+2 < len(lines) {
		rec.SecondaryText = lines[titleIdx+2]
	}

	if keyword != "" && !strings.Contains(rec.Title, keyword) {
		return rec, false
	}
	return rec, true
}

func isPriceLine(s string) bool {
	return currencyRegexp.MatchString(s)
}

// ParsePrice extracts the first numeric value of a price string.
// Examples:
//
//	"$1,200" → 1200
//	"ca$45.50" → 45.5
//	"free" → 0
func ParsePrice(raw string) float64 {
	match := priceRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return val
}

// ExtractItemID returns the numeric marketplace item id in a listing link, or
// "" when the link does not carry one.
func ExtractItemID(href string) string {
	m := itemIDRegexp.FindStringSubmatch(href)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// ParseMileageKm reads an odometer value from free text and converts miles
// to kilometres. Returns false when no reading is present.
func ParseMileageKm(text string) (float64, bool) {
	m := mileageRegexp.FindStringSubmatch(strings.ToLower(text))
	if len(m) < 4 {
		return 0, false
	}
	num := strings.ReplaceAll(m[1], ",", "")
	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "k" {
		val *= 1000
	}
	if strings.HasPrefix(m[3], "mi") {
		val *= 1.6
	}
	return val, true
}

// ParseModelYear returns the first plausible model year in a title. Years
// more than one year in the future are ignored.
func ParseModelYear(title string, currentYear int) (int, bool) {
	for _, m := range yearRegexp.FindAllString(title, -1) {
		year, err := strconv.Atoi(m)
		if err == nil && year <= currentYear+1 {
			return year, true
		}
	}
	return 0, false
}

// ParseListedAge reads relative listing ages such as "3 weeks ago",
// "over a year ago" or "listed 2 days ago" into a count and a singular unit.
func ParseListedAge(text string) (int, string, bool) {
	var fields []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		switch f {
		case "listed", "ago", "over", "about", "almost", "in":
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) < 2 {
		return 0, "", false
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil {
		if fields[0] != "a" && fields[0] != "an" {
			return 0, "", false
		}
		n = 1
	}
	unit := strings.TrimSuffix(strings.TrimRight(fields[1], ".,"), "s")
	return n, unit, true
}

// NormalizeText strips leading/trailing whitespace and collapses internal whitespace.
func NormalizeText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// tokenize lowercases s and splits it into alphanumeric words.
func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// containsAny returns the phrases of list found in text.
func containsAny(text string, list []string) []string {
	var hits []string
	for _, kw := range list {
		if kw != "" && strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
