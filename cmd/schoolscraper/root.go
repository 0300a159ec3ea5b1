package main

import (
	"github.com/spf13/cobra"

	"schoolscraper/internal/config"
)

var headless bool

var rootCmd = &cobra.Command{
	Use:   "schoolscraper",
	Short: "Scrape and enrich the Texas school directory",
	Long: `schoolscraper walks the txschools.gov school directory with a headless
browser, collects every school matching the requested grade-level filters
into a CSV dataset, and enriches saved datasets with phone numbers and
website links from each school's detail page.

Configuration is read from a .env file and environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "run the browser headless")
}

// loadConfig reads the environment configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = headless
	}
	return cfg, nil
}
