package enricher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"schoolscraper/internal/browser"
	"schoolscraper/internal/config"
	"schoolscraper/internal/domain"
	"schoolscraper/internal/monitoring"
)

// Site is the detail-page surface the enricher drives.
type Site interface {
	Name() string
	ContentMarker() browser.Selector
	ParseDetail(doc *goquery.Document) domain.Contact
}

// Sink persists snapshots of the record set during and after the run.
type Sink interface {
	Save(path string, recs []domain.Record) error
}

// Runner fills missing phone/website fields one record at a time, flushing
// partial progress at a fixed cadence so a crash late in the run loses
// little work.
type Runner struct {
	cfg     *config.Config
	driver  browser.Driver
	site    Site
	sink    Sink
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

func New(cfg *config.Config, d browser.Driver, site Site, sink Sink, m *monitoring.Metrics, l *zap.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		driver:  d,
		site:    site,
		sink:    sink,
		metrics: m,
		logger:  l,
	}
}

// Run processes every record in store in its original order. Snapshots go to
// checkpointPath every CheckpointInterval records (counted 1-indexed) and to
// finalPath after the pass. Checkpoint failures are logged, not fatal; a
// failing final save is.
func (r *Runner) Run(ctx context.Context, store *domain.RecordStore, checkpointPath, finalPath string) error {
	total := store.Len()
	r.logger.Info("starting enrichment", zap.Int("records", total))

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		store.Set(i, r.processRecord(ctx, store.Get(i)))

		pos := i + 1
		if r.cfg.ProgressInterval > 0 && pos%r.cfg.ProgressInterval == 0 {
			r.logger.Info("enrichment progress", zap.Int("processed", pos), zap.Int("total", total))
		}
		if r.cfg.CheckpointInterval > 0 && pos%r.cfg.CheckpointInterval == 0 {
			if err := r.sink.Save(checkpointPath, store.Records()); err != nil {
				r.logger.Error("error saving checkpoint",
					zap.String("path", checkpointPath),
					zap.Error(err))
				r.metrics.IncErrorsTotal("checkpoint_failed")
			} else {
				r.metrics.IncCheckpoints()
				r.logger.Info("checkpoint saved",
					zap.String("path", checkpointPath),
					zap.Int("processed", pos))
			}
		}
	}

	if err := r.sink.Save(finalPath, store.Records()); err != nil {
		return fmt.Errorf("saving enriched dataset: %w", err)
	}
	r.logStats(store, finalPath)
	return nil
}

// processRecord returns the record with any newly scraped fields merged in.
// Failures are local: the record comes back unchanged and the run moves on.
func (r *Runner) processRecord(ctx context.Context, rec domain.Record) domain.Record {
	r.logger.Info("processing school", zap.String("name", rec.Name))

	if rec.Complete() {
		r.logger.Info("skipping school with complete data", zap.String("name", rec.Name))
		return rec
	}

	if err := r.driver.Navigate(ctx, rec.URL); err != nil {
		r.logger.Error("error processing school",
			zap.String("name", rec.Name),
			zap.String("url", rec.URL),
			zap.Error(err))
		r.metrics.IncErrorsTotal("record_failed")
		return rec
	}

	merged, changed := domain.Merge(rec, r.extractDetail(ctx))
	if changed {
		if merged.Phone != rec.Phone {
			r.metrics.IncRecordsEnriched("phone")
			r.logger.Info("updated phone",
				zap.String("name", rec.Name),
				zap.String("phone", merged.Phone))
		}
		if merged.Website != rec.Website {
			r.metrics.IncRecordsEnriched("website")
			r.logger.Info("updated website",
				zap.String("name", rec.Name),
				zap.String("website", merged.Website))
		}
	}

	r.rateLimit(ctx)
	return merged
}

// extractDetail waits for the detail page to render and parses it. Failures
// yield an empty contact, never an error. A marker timeout is soft: whatever
// has rendered gets parsed.
func (r *Runner) extractDetail(ctx context.Context) domain.Contact {
	if _, err := r.driver.WaitFor(ctx, r.site.ContentMarker(), browser.Presence); err != nil {
		r.logger.Error("error extracting data", zap.Error(err))
		r.metrics.IncErrorsTotal("extract_failed")
		return domain.Contact{}
	}

	pageHTML, err := r.driver.PageHTML(ctx)
	if err != nil {
		r.logger.Error("error extracting data", zap.Error(err))
		r.metrics.IncErrorsTotal("extract_failed")
		return domain.Contact{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		r.logger.Error("error parsing detail page", zap.Error(err))
		r.metrics.IncErrorsTotal("extract_failed")
		return domain.Contact{}
	}
	return r.site.ParseDetail(doc)
}

// rateLimit pauses after each processed record to avoid hammering the site.
func (r *Runner) rateLimit(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(r.cfg.RateLimit) * time.Second):
	}
}

func (r *Runner) logStats(store *domain.RecordStore, path string) {
	phones, websites := 0, 0
	for _, rec := range store.Records() {
		if rec.HasPhone() {
			phones++
		}
		if rec.HasWebsite() {
			websites++
		}
	}
	r.logger.Info("enrichment complete",
		zap.Int("records", store.Len()),
		zap.Int("with_phone", phones),
		zap.Int("with_website", websites),
		zap.String("output", path))
}
