package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketplace-analyzer/services"
	"marketplace-analyzer/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Reprint the report of a session stored with --persist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		pg, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			return fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		defer pg.Close()

		rows, err := pg.FetchSession(args[0])
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Printf("No listings stored for session %s.\n", args[0])
			return nil
		}

		reporter := services.NewReportService(logger, cfg.Analysis.MinPriceForAnalysis)
		reporter.Print(os.Stdout, reporter.Generate(rows))
		return nil
	},
}
