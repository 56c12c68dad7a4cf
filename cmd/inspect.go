package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marketplace-analyzer/models"
	"marketplace-analyzer/scraper/marketplace"
	"marketplace-analyzer/services"
	"marketplace-analyzer/utils"
)

var (
	flagJSON       bool
	flagRevealWait time.Duration
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <listing-url>...",
	Short: "Score seller and description risk for single listings",
	Long: `Open each listing's detail page and assess it for scam risk: seller rating
and account age, urgency and payment phrases in the description, mileage for
vehicles and how long the listing has been up.

The description is expanded before the final score so hidden text counts.
Several URLs are inspected concurrently (MAX_CONCURRENCY, RATE_LIMIT_MS).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&flagJSON, "json", false, "print reports as JSON")
	inspectCmd.Flags().DurationVar(&flagRevealWait, "reveal-wait", 2*time.Second, "how long to wait for an expanded description")
}

type inspection struct {
	URL    string             `json:"url"`
	Report *models.RiskReport `json:"report,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if flagJSON && flagLogLevel == "" {
		logger = utils.NewLoggerWithLevel(utils.LevelWarn)
	}

	browser, err := marketplace.NewBrowser(cfg, logger)
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}
	defer browser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
	extractor := marketplace.NewExtractor(services.NewCleaner(logger), retry, logger)

	results := make([]inspection, len(args))
	pool := utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs)
	for i, url := range args {
		i, url := i, url
		results[i].URL = url
		pool.Submit(ctx, func(ctx context.Context) {
			report, err := inspectListing(ctx, browser, extractor, url, logger)
			if err != nil {
				logger.Warn("[inspect] %s: %v", url, err)
				results[i].Error = err.Error()
				return
			}
			results[i].Report = &report
		})
	}
	pool.Wait()

	for i := range results {
		if results[i].Report == nil && results[i].Error == "" {
			results[i].Error = "not inspected: interrupted"
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	reporter := services.NewReportService(logger, cfg.Analysis.MinPriceForAnalysis)
	for _, r := range results {
		if r.Report == nil {
			fmt.Printf("\n%s\n  %s\n", r.URL, r.Error)
			continue
		}
		reporter.PrintRisk(os.Stdout, r.URL, *r.Report)
	}
	return nil
}

// inspectListing reads one detail page in its own tab. Text revealed by
// expanding the description within flagRevealWait is folded into the report.
func inspectListing(ctx context.Context, browser *marketplace.Browser, extractor *marketplace.Extractor,
	url string, logger *utils.Logger) (models.RiskReport, error) {

	tab, cancel := browser.NewTab()
	defer cancel()
	stopAfter := context.AfterFunc(ctx, cancel)
	defer stopAfter()

	if err := browser.Navigate(tab, url); err != nil {
		return models.RiskReport{}, err
	}
	attrs, err := extractor.ExtractSingle(tab)
	if err != nil {
		return models.RiskReport{}, err
	}

	profile := services.NewRiskProfile()
	report := profile.Ingest(attrs)
	logger.Debug("[inspect] %s: %s listing, initial score %.2f", url, attrs.Type, report.ScamScore)

	revealed, stopWatch, err := watchReveals(marketplace.NewDescriptionWatcher(tab, logger), profile, attrs.Description)
	if err != nil {
		logger.Debug("[inspect] %s: description not watchable: %v", url, err)
		return profile.Report(), nil
	}
	defer stopWatch()

	expanded, err := extractor.ExpandDescription(tab, attrs.Description)
	if err != nil || !expanded {
		return profile.Report(), nil
	}

	select {
	case <-revealed:
	case <-time.After(flagRevealWait):
		logger.Debug("[inspect] %s: no description change after expanding", url)
	case <-ctx.Done():
	}
	return profile.Report(), nil
}

type revealWatcher interface {
	Watch(current string, onReveal func(text string)) (stop func(), err error)
}

// watchReveals feeds description text revealed in the page into profile. The
// channel receives once the report changes. A failed watch is released
// before returning.
func watchReveals(w revealWatcher, profile *services.RiskProfile, current string) (<-chan struct{}, func(), error) {
	revealed := make(chan struct{}, 1)
	stop, err := w.Watch(current, func(text string) {
		if _, changed := profile.OnDescriptionRevealed(text); changed {
			select {
			case revealed <- struct{}{}:
			default:
			}
		}
	})
	if err != nil {
		if stop != nil {
			stop()
		}
		return nil, nil, err
	}
	return revealed, stop, nil
}
