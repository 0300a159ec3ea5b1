package main

import (
	"context"

	"go.uber.org/zap"

	"schoolscraper/internal/browser"
	"schoolscraper/internal/config"
	"schoolscraper/internal/crawler"
	"schoolscraper/internal/domain"
	"schoolscraper/internal/enricher"
	"schoolscraper/internal/monitoring"
	"schoolscraper/internal/storage"
	"schoolscraper/internal/txschools"
)

// runScrape walks the directory listing and saves what it collected to
// output. Partial results are saved even when the crawl stops early; the
// crawl error, if any, is still returned.
func runScrape(ctx context.Context, cfg *config.Config, m *monitoring.Metrics, logger *zap.Logger, filters []string, output string) (int, error) {
	session := browser.NewSession(cfg, logger)
	if err := session.Start(ctx); err != nil {
		return 0, err
	}
	defer session.Close()

	site := txschools.New(cfg)
	store := domain.NewRecordStore()
	c := crawler.New(cfg, session, site, store, m, logger)

	if err := c.ApplyFilters(ctx, filters); err != nil {
		return 0, err
	}

	crawlErr := c.CollectAll(ctx)

	recs := store.Records()
	if err := storage.SaveCSV(output, recs); err != nil {
		if crawlErr != nil {
			logger.Error("failed to save partial results", zap.Error(err))
			return len(recs), crawlErr
		}
		return len(recs), err
	}
	logger.Info("dataset saved", zap.String("path", output), zap.Int("records", len(recs)))

	if crawlErr == nil {
		archiveRecords(ctx, cfg, logger, recs)
	}
	return len(recs), crawlErr
}

// runEnrich loads a saved dataset, fills in missing contact details from the
// detail pages, and writes the enriched copy next to the input.
func runEnrich(ctx context.Context, cfg *config.Config, m *monitoring.Metrics, logger *zap.Logger, input string) (int, error) {
	recs, err := storage.LoadCSV(input)
	if err != nil {
		return 0, err
	}
	logger.Info("dataset loaded", zap.String("path", input), zap.Int("records", len(recs)))

	session := browser.NewSession(cfg, logger)
	if err := session.Start(ctx); err != nil {
		return 0, err
	}
	defer session.Close()

	site := txschools.New(cfg)
	store := domain.NewRecordStoreFrom(recs)
	runner := enricher.New(cfg, session, site, storage.CSVSink{}, m, logger)

	if err := runner.Run(ctx, store, storage.CheckpointPath(input), storage.EnrichedPath(input)); err != nil {
		return store.Len(), err
	}

	archiveRecords(ctx, cfg, logger, store.Records())
	return store.Len(), nil
}

// archiveRecords mirrors the dataset into Postgres when POSTGRES_URL is set.
// Archiving is best effort: failures are logged, never fatal.
func archiveRecords(ctx context.Context, cfg *config.Config, logger *zap.Logger, recs []domain.Record) {
	if cfg.PostgresURL == "" || len(recs) == 0 {
		return
	}

	store, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to postgres", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.ArchiveRecords(ctx, recs); err != nil {
		logger.Error("failed to archive records", zap.Error(err))
		return
	}
	logger.Info("records archived", zap.Int("records", len(recs)))
}
