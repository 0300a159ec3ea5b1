package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schoolscraper/internal/monitoring"
	"schoolscraper/pkg/logger"
)

var (
	scrapeFilters []string
	scrapeOutput  string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect the school directory into a CSV file",
	Long: `Scrape applies the requested grade-level filters to the directory
search page, walks every result page, and saves the schools it finds to a
CSV file. Partial results are saved even when the crawl stops early.

Example:
  schoolscraper scrape --filter Kindergarten --output schools.csv`,
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

		metrics := monitoring.NewMetrics()
		count, err := runScrape(cmd.Context(), cfg, metrics, log, scrapeFilters, scrapeOutput)
		if err != nil {
			return err
		}

		log.Info("scrape finished",
			zap.Int("records", count),
			zap.String("output", scrapeOutput))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringArrayVar(&scrapeFilters, "filter",
		[]string{"Prekindergarten", "Kindergarten", "Early Education"},
		"grade level to filter by, repeatable")
	scrapeCmd.Flags().StringVar(&scrapeOutput, "output",
		"texas_schools_basic_data.csv", "CSV file to write")

	rootCmd.AddCommand(scrapeCmd)
}
