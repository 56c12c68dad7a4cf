package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marketplace-analyzer/config"
	"marketplace-analyzer/scraper/marketplace"
	"marketplace-analyzer/services"
	"marketplace-analyzer/utils"
)

var (
	flagDuration   time.Duration
	flagAutoscroll time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <keyword>",
	Short: "Open a marketplace search and highlight listings as they load",
	Long: `Open the marketplace search for a keyword in Chrome and score every listing
as it renders. Scroll the page (or pass --autoscroll) to load more listings;
each new batch is scored against everything seen so far.

Runs until interrupted or until --duration elapses. Send SIGHUP to reload the
analysis options without losing collected listings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDuration, "duration", 0, "stop after this long (e.g. 10m); 0 runs until interrupted")
	watchCmd.Flags().DurationVar(&flagAutoscroll, "autoscroll", 0, "scroll the results page at this interval (e.g. 3s)")
	addExportFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	keyword := strings.Join(args, " ")

	browser, err := marketplace.NewBrowser(cfg, logger)
	if err != nil {
		return fmt.Errorf("starting browser: %w", err)
	}
	defer browser.Close()

	tab := browser.Context()
	if err := browser.Navigate(tab, cfg.SearchURL(keyword)); err != nil {
		return err
	}

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
	extractor := marketplace.NewExtractor(services.NewCleaner(logger), retry, logger)
	highlighter := marketplace.NewHighlighter(tab, cfg.Analysis.HighlightColors, logger)
	source := marketplace.NewMutationSource(tab, logger)

	session := services.NewSession(extractor, highlighter, source, cfg.Analysis,
		time.Duration(cfg.FrameMs)*time.Millisecond, logger)
	session.Store().OnChange(func(count int) {
		if count > 0 {
			logger.Info("[watch] %d listings collected", count)
		}
	})

	ctx, stop := signal.NotifyContext(tab, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flagDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagDuration)
		defer cancel()
	}

	if err := session.Start(ctx, keyword); err != nil {
		logger.Warn("[watch] Initial scan failed: %v", err)
	}
	logger.Info("[watch] Watching %q, press Ctrl+C to stop", keyword)

	watchLoop(ctx, cfg, browser, session, logger)

	rows := session.Snapshot()
	session.Dispose()
	logger.Info("[watch] Stopped with %d listings", len(rows))
	return finish(cfg, rows, logger)
}

// watchLoop blocks until ctx is done, scrolling the page on the autoscroll
// interval and reloading analysis options on SIGHUP.
func watchLoop(ctx context.Context, cfg *config.Config, browser *marketplace.Browser,
	session *services.Session, logger *utils.Logger) {

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	var scroll <-chan time.Time
	if flagAutoscroll > 0 {
		ticker := time.NewTicker(flagAutoscroll)
		defer ticker.Stop()
		scroll = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-scroll:
			if err := browser.Scroll(browser.Context()); err != nil && ctx.Err() == nil {
				logger.Warn("[watch] Scroll failed: %v", err)
			}
		case <-hup:
			reloaded, err := config.Load(flagConfig)
			if err != nil {
				logger.Warn("[watch] Reload failed, keeping current options: %v", err)
				continue
			}
			cfg.Analysis = reloaded.Analysis
			session.SetConfig(cfg.Analysis)
			logger.Info("[watch] Analysis options reloaded")
		}
	}
}
