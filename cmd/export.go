package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketplace-analyzer/config"
	"marketplace-analyzer/models"
	"marketplace-analyzer/services"
	"marketplace-analyzer/storage"
	"marketplace-analyzer/utils"
)

var flagNoReport bool

func addExportFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagCSV, "csv", "", "write the session snapshot to this CSV file")
	c.Flags().BoolVar(&flagPersist, "persist", false, "store the session snapshot in PostgreSQL")
	c.Flags().BoolVar(&flagNoReport, "no-report", false, "skip the summary report")
}

// openWriters opens the exporters selected on the command line. Nothing is
// written anywhere unless a flag asks for it.
func openWriters(cfg *config.Config, logger *utils.Logger) ([]storage.SnapshotWriter, error) {
	var writers []storage.SnapshotWriter
	if flagCSV != "" {
		w, err := storage.NewCSVWriter(flagCSV)
		if err != nil {
			return nil, fmt.Errorf("opening CSV: %w", err)
		}
		writers = append(writers, w)
	}
	if flagPersist {
		w, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			closeWriters(writers, logger)
			logger.Error("[export] Check the POSTGRES_* settings and that the server is reachable")
			return nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		writers = append(writers, w)
	}
	return writers, nil
}

func closeWriters(writers []storage.SnapshotWriter, logger *utils.Logger) {
	for _, w := range writers {
		if err := w.Close(); err != nil {
			logger.Warn("[export] Close failed: %v", err)
		}
	}
}

// finish exports the snapshot and prints the session report.
func finish(cfg *config.Config, rows []models.ScoredListing, logger *utils.Logger) error {
	writers, err := openWriters(cfg, logger)
	if err != nil {
		return err
	}
	defer closeWriters(writers, logger)

	for _, w := range writers {
		if err := w.Write(rows); err != nil {
			return fmt.Errorf("exporting snapshot: %w", err)
		}
	}
	if len(writers) > 0 {
		logger.Info("[export] Exported %d listings", len(rows))
	}

	if !flagNoReport {
		reporter := services.NewReportService(logger, cfg.Analysis.MinPriceForAnalysis)
		reporter.Print(os.Stdout, reporter.Generate(rows))
	}
	return nil
}
