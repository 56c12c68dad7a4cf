package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
	"marketplace-analyzer/scheduler"
	"marketplace-analyzer/scraper/marketplace"
	"marketplace-analyzer/services"
	"marketplace-analyzer/utils"
)

var flagKeyword string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <page.html>...",
	Short: "Score listings from saved search result pages",
	Long: `Parse marketplace search result pages saved from a browser and run the same
price and scam analysis as watch, without opening Chrome. All files are
treated as one search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagKeyword, "keyword", "", "only keep listings whose title contains this keyword")
	analyzeCmd.Flags().BoolVar(&flagJSON, "json", false, "print the scored listings as JSON instead of a report")
	addExportFlags(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if flagJSON && flagLogLevel == "" {
		logger = utils.NewLoggerWithLevel(utils.LevelWarn)
	}

	rows, err := analyzeFiles(cmd.Context(), args, flagKeyword, cfg.Analysis, logger)
	if err != nil {
		return err
	}

	if flagJSON {
		flagNoReport = true
		if err := finish(cfg, rows, logger); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return finish(cfg, rows, logger)
}

// analyzeFiles runs one session pass over saved pages and returns the scored
// aggregate. Nothing is highlighted.
func analyzeFiles(ctx context.Context, paths []string, keyword string, analysis config.Analysis,
	logger *utils.Logger) ([]models.ScoredListing, error) {

	extractor := marketplace.NewFileExtractor(paths, services.NewCleaner(logger), logger)
	session := services.NewSession(extractor, nil, nil, analysis, scheduler.DefaultFrame, logger)
	defer session.Dispose()

	if err := session.Start(ctx, keyword); err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}
