package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schoolscraper/internal/monitoring"
	"schoolscraper/internal/storage"
	"schoolscraper/pkg/logger"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <input.csv>",
	Short: "Fill in missing contact details for a saved dataset",
	Long: `Enrich visits the detail page of every school in the input CSV that
is missing a phone number or website and fills in whatever it finds. The
result is written next to the input file, with periodic checkpoints saved
along the way.

Example:
  schoolscraper enrich texas_schools_basic_data.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer log.Sync()

		input := args[0]
		metrics := monitoring.NewMetrics()
		count, err := runEnrich(cmd.Context(), cfg, metrics, log, input)
		if err != nil {
			return err
		}

		log.Info("enrichment finished",
			zap.Int("records", count),
			zap.String("output", storage.EnrichedPath(input)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
