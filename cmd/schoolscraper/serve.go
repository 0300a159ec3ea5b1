package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"schoolscraper/internal/api"
	"schoolscraper/internal/jobs"
	"schoolscraper/internal/monitoring"
	"schoolscraper/internal/storage"
	"schoolscraper/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scraper as a job-queue HTTP service",
	Long: `Serve starts an HTTP server that accepts scrape and enrichment jobs
and runs them one at a time on a single browser worker.

The server provides:
  POST /api/scrape      - queue a directory crawl
  POST /api/enrich      - queue an enrichment pass over a saved CSV
  GET  /api/jobs/{id}   - job status
  GET  /api/schools     - look up an archived school by URL
  GET  /api/health      - health check
  GET  /metrics         - Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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

		var archive *storage.PostgresStore
		if cfg.PostgresURL != "" {
			archive, err = storage.NewPostgresStore(ctx, cfg.PostgresURL)
			if err != nil {
				return fmt.Errorf("connecting to postgres: %w", err)
			}
			defer archive.Close()
		}

		runner := jobs.NewRunner(func(ctx context.Context, job jobs.Job) (int, error) {
			switch job.Kind {
			case jobs.KindScrape:
				return runScrape(ctx, cfg, metrics, log, job.Filters, job.Output)
			case jobs.KindEnrich:
				return runEnrich(ctx, cfg, metrics, log, job.Input)
			default:
				return 0, fmt.Errorf("unknown job kind %q", job.Kind)
			}
		}, metrics, log)
		runner.Start(ctx)

		server := api.NewServer(cfg, runner, archive, metrics, log)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		log.Info("server started", zap.String("port", cfg.ServerPort))

		select {
		case err := <-errCh:
			runner.Stop()
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		runner.Stop()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info("server exiting")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
