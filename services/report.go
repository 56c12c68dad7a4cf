package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"marketplace-analyzer/models"
	"marketplace-analyzer/utils"
)

const reportListSize = 5

// ReportService summarizes a session snapshot.
type ReportService struct {
	logger *utils.Logger
	floor  float64
}

// NewReportService creates a ReportService. Prices at or below floor are
// left out of the price statistics, as in the analysis passes.
func NewReportService(logger *utils.Logger, floor float64) *ReportService {
	return &ReportService{logger: logger, floor: floor}
}

func (s *ReportService) Generate(rows []models.ScoredListing) *models.SessionReport {
	report := &models.SessionReport{
		ByCategory: make(map[models.Category]int),
		ByTier:     make(map[models.Tier]int),
	}
	if len(rows) == 0 {
		return report
	}

	report.TotalListings = len(rows)
	report.Keyword = rows[0].Keyword
	report.SessionID = rows[0].SessionID

	var prices []float64
	var deals []models.ScoredListing
	for _, r := range rows {
		if r.Record.Price > s.floor {
			prices = append(prices, r.Record.Price)
		}
		if r.Result == nil {
			report.Unscored++
		} else {
			report.ByCategory[r.Result.Category]++
			report.ByTier[r.Result.Tier]++
			if r.Result.Tier.IsDeal() && r.Result.Tier != models.TierTooGoodToBeTrue && !r.Scam.Suspicious {
				deals = append(deals, r)
			}
		}
		if r.Scam.Suspicious {
			report.Suspicious++
		}
		if r.Scam.Suspicious || (r.Result != nil && r.Result.Tier == models.TierTooGoodToBeTrue) {
			report.Flagged = append(report.Flagged, r)
		}
	}

	if len(prices) > 0 {
		report.PricedListings = len(prices)
		report.MedianPrice = round2(Median(prices))
		report.MAD = round2(MAD(prices, report.MedianPrice))
		report.MinPrice, report.MaxPrice = prices[0], prices[0]
		for _, p := range prices {
			if p < report.MinPrice {
				report.MinPrice = p
			}
			if p > report.MaxPrice {
				report.MaxPrice = p
			}
		}
	}

	sort.SliceStable(deals, func(i, j int) bool {
		return deals[i].Result.SavingsPercent > deals[j].Result.SavingsPercent
	})
	if len(deals) > reportListSize {
		deals = deals[:reportListSize]
	}
	report.BestDeals = deals

	s.logger.Debug("[report] %d listings, %d priced, %d flagged", report.TotalListings, report.PricedListings, len(report.Flagged))
	return report
}

// Print writes the report to w.
func (s *ReportService) Print(w io.Writer, r *models.SessionReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	header := color.New(color.FgMagenta, color.Bold)
	section := color.New(color.FgYellow, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	header.Fprintf(w, "\n%s\n", sep)
	header.Fprintf(w, "  MARKETPLACE ANALYSIS: %q\n", r.Keyword)
	header.Fprintf(w, "%s\n\n", sep)

	fmt.Fprintf(w, "%s\n  %s\n", section("  Overview"), thin)
	fmt.Fprintf(w, "  Session             : %s\n", gray(r.SessionID))
	fmt.Fprintf(w, "  Listings collected  : %s\n", bold(r.TotalListings))
	fmt.Fprintf(w, "  Unscored            : %s\n", bold(r.Unscored))
	fmt.Fprintf(w, "  Potential scams     : %s\n\n", red(r.Suspicious))

	fmt.Fprintf(w, "%s\n  %s\n", section("  Price Statistics"), thin)
	if r.PricedListings > 0 {
		fmt.Fprintf(w, "  Median price : %s\n", green(fmt.Sprintf("$%.2f", r.MedianPrice)))
		fmt.Fprintf(w, "  MAD          : %s\n", green(fmt.Sprintf("$%.2f", r.MAD)))
		fmt.Fprintf(w, "  Range        : $%.2f to $%.2f (%d priced)\n", r.MinPrice, r.MaxPrice, r.PricedListings)
	} else {
		fmt.Fprintln(w, "  No price data available")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n  %s\n", section("  Tiers"), thin)
	if len(r.ByTier) == 0 {
		fmt.Fprintln(w, "  Nothing scored yet")
	}
	for _, tier := range []models.Tier{
		models.TierTooGoodToBeTrue, models.TierExcellent, models.TierGood, models.TierFair,
		models.TierNeutral, models.TierHighPrice, models.TierOverpriced,
	} {
		if n := r.ByTier[tier]; n > 0 {
			fmt.Fprintf(w, "  %-22s %s (%d)\n", tier, strings.Repeat("█", n), n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n  %s\n", section("  Best Deals"), thin)
	if len(r.BestDeals) == 0 {
		fmt.Fprintln(w, "  No deals found")
	}
	for i, d := range r.BestDeals {
		fmt.Fprintf(w, "  %s %-36s %s %s\n", bold(fmt.Sprintf("%d.", i+1)), truncate(d.Record.Title, 34),
			green(fmt.Sprintf("$%.2f", d.Record.Price)), gray(fmt.Sprintf("(%.0f%% below)", d.Result.SavingsPercent)))
	}
	fmt.Fprintln(w)

	if len(r.Flagged) > 0 {
		fmt.Fprintf(w, "%s\n  %s\n", section("  Flagged"), thin)
		for _, f := range r.Flagged {
			reason := strings.Join(f.Scam.Reasons, "; ")
			if reason == "" && f.Result != nil {
				reason = f.Result.Rationale
			}
			fmt.Fprintf(w, "  %-36s %s\n    %s\n", truncate(f.Record.Title, 34),
				red(fmt.Sprintf("$%.2f", f.Record.Price)), gray(reason))
		}
		fmt.Fprintln(w)
	}

	header.Fprintf(w, "%s\n\n", sep)
}

// PrintRisk writes a single-listing risk report to w.
func (s *ReportService) PrintRisk(w io.Writer, url string, r models.RiskReport) {
	verdict := color.New(color.FgGreen, color.Bold)
	switch r.Conclusion {
	case models.ConclusionCaution:
		verdict = color.New(color.FgYellow, color.Bold)
	case models.ConclusionHighRisk:
		verdict = color.New(color.FgRed, color.Bold)
	}
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s\n", color.New(color.FgCyan, color.Bold).Sprint(url))
	fmt.Fprintf(w, "  Type       : %s\n", r.Attributes.Type)
	if r.Attributes.Date != "" {
		fmt.Fprintf(w, "  Listed     : %s\n", r.Attributes.Date)
	}
	fmt.Fprintf(w, "  Scam score : %s\n", verdict.Sprintf("%.2f", r.ScamScore))
	fmt.Fprintf(w, "  Conclusion : %s\n", verdict.Sprint(r.Conclusion))
	for _, f := range r.RedFlags {
		fmt.Fprintf(w, "    ! %s\n", f)
	}
	if len(r.ConcerningKeywords) > 0 {
		fmt.Fprintf(w, "  Keywords   : %s\n", gray(strings.Join(r.ConcerningKeywords, ", ")))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
