package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketplace-analyzer/config"
	"marketplace-analyzer/utils"
)

var version = "dev"

var (
	flagConfig   string
	flagLogLevel string
	flagCSV      string
	flagPersist  bool
)

var rootCmd = &cobra.Command{
	Use:   "marketplace-analyzer",
	Short: "Price anomaly and scam signals for marketplace listings",
	Long: `marketplace-analyzer watches marketplace search results, scores every listing
against the prices seen in the same search and highlights deals, overpriced
listings and likely scams. Single listings can be inspected for seller risk.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to analysis YAML (overrides ANALYSIS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marketplace-analyzer %s\n", version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *utils.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return cfg, utils.NewLoggerWithLevel(utils.ParseLevel(level)), nil
}
