package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"

	"schoolscraper/internal/browser"
	"schoolscraper/internal/config"
	"schoolscraper/internal/domain"
	"schoolscraper/internal/monitoring"
)

// Site is the listing-page surface the crawler drives. One implementation
// exists per directory site; the pagination and dedup logic lives here and
// never changes across sites.
type Site interface {
	Name() string
	SearchURL() string
	ApplyFilters(ctx context.Context, d browser.Driver, filters []string) error
	Rows() browser.Selector
	NextButton() browser.Selector
	NextDisabled(node *cdp.Node) bool
	ParseRow(row *goquery.Selection) (domain.Record, error)
}

// Crawler walks a paginated results table and accumulates unique records.
type Crawler struct {
	cfg     *config.Config
	driver  browser.Driver
	site    Site
	store   *domain.RecordStore
	metrics *monitoring.Metrics
	logger  *zap.Logger

	seen        map[string]struct{}
	currentPage int
}

func New(cfg *config.Config, d browser.Driver, site Site, store *domain.RecordStore, m *monitoring.Metrics, l *zap.Logger) *Crawler {
	return &Crawler{
		cfg:         cfg,
		driver:      d,
		site:        site,
		store:       store,
		metrics:     m,
		logger:      l,
		seen:        make(map[string]struct{}),
		currentPage: 1,
	}
}

// CurrentPage returns the 1-based page the crawler is on. It only moves
// forward, by exactly one per successful advance.
func (c *Crawler) CurrentPage() int {
	return c.currentPage
}

// ApplyFilters navigates to the site's search page and narrows the listing.
// Values are applied in order and add to prior selections. A missing filter
// control is fatal for the run.
func (c *Crawler) ApplyFilters(ctx context.Context, filters []string) error {
	if err := c.driver.Navigate(ctx, c.site.SearchURL()); err != nil {
		return err
	}
	if err := c.site.ApplyFilters(ctx, c.driver, filters); err != nil {
		return fmt.Errorf("applying filters: %w", err)
	}
	c.logger.Info("filters applied", zap.Strings("filters", filters))
	return nil
}

// CollectAll walks the results table page by page until no enabled next
// control remains. Pagination failures keep the records collected so far;
// only context cancellation and advance-retry exhaustion reach the caller.
func (c *Crawler) CollectAll(ctx context.Context) error {
	for {
		rows, err := c.driver.WaitFor(ctx, c.site.Rows(), browser.Presence)
		if err != nil {
			return c.pageFailure(ctx, err)
		}
		if rows == nil {
			c.logger.Error("no rows appeared, stopping crawl", zap.Int("page", c.currentPage))
			c.metrics.IncErrorsTotal("rows_missing")
			return nil
		}

		if err := c.extractPage(ctx, false); err != nil {
			return c.pageFailure(ctx, err)
		}
		c.metrics.IncPagesCrawled()

		next, err := c.driver.WaitFor(ctx, c.site.NextButton(), browser.Clickable)
		if err != nil {
			return c.pageFailure(ctx, err)
		}
		if next == nil || c.site.NextDisabled(next) {
			c.logger.Info("reached last page",
				zap.Int("page", c.currentPage),
				zap.Int("records", c.store.Len()))
			return nil
		}

		if err := c.advancePage(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.metrics.IncErrorsTotal("advance_failed")
			return fmt.Errorf("advancing past page %d: %w", c.currentPage, err)
		}
		c.currentPage++
		c.logger.Info("moving to page", zap.Int("page", c.currentPage))
	}
}

// pageFailure ends the crawl while keeping partial results: the error is
// logged and swallowed unless the context itself was canceled.
func (c *Crawler) pageFailure(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.logger.Error("error during pagination", zap.Int("page", c.currentPage), zap.Error(err))
	c.metrics.IncErrorsTotal("pagination")
	return nil
}

// extractPage reads every row on the current page. A stale node means the
// table re-rendered under us; the whole page is re-read once, and a second
// stale occurrence drops the affected row only.
func (c *Crawler) extractPage(ctx context.Context, retried bool) error {
	nodes, err := c.driver.Nodes(ctx, c.site.Rows())
	if err != nil {
		return err
	}
	for _, node := range nodes {
		rowHTML, err := c.driver.NodeHTML(ctx, node)
		if err != nil {
			if browser.IsStale(err) {
				if !retried {
					c.logger.Warn("encountered stale row, retrying page", zap.Int("page", c.currentPage))
					return c.extractPage(ctx, true)
				}
				c.logger.Error("stale row after page retry, dropping row", zap.Int("page", c.currentPage))
				c.metrics.IncRowsSkipped("stale")
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("error reading row", zap.Int("page", c.currentPage), zap.Error(err))
			c.metrics.IncRowsSkipped("read_failed")
			continue
		}
		c.ingestRow(rowHTML)
	}
	return nil
}

// ingestRow parses one row and appends it unless its URL was already seen.
func (c *Crawler) ingestRow(rowHTML string) {
	row, err := rowSelection(rowHTML)
	if err != nil {
		c.logger.Error("error parsing row markup", zap.Int("page", c.currentPage), zap.Error(err))
		c.metrics.IncRowsSkipped("parse_failed")
		return
	}
	rec, err := c.site.ParseRow(row)
	if err != nil {
		c.logger.Error("error processing row", zap.Int("page", c.currentPage), zap.Error(err))
		c.metrics.IncRowsSkipped("parse_failed")
		return
	}
	if _, ok := c.seen[rec.URL]; ok {
		c.metrics.IncRowsSkipped("duplicate")
		return
	}

	rec.PageNumber = c.currentPage
	c.store.Add(rec)
	c.seen[rec.URL] = struct{}{}
	c.metrics.IncRecordsExtracted()
	c.logger.Info("processed school", zap.String("name", rec.Name), zap.Int("page", c.currentPage))
}

// rowSelection parses a single <tr> fragment. The html5 parser drops table
// rows that appear outside a table, so the fragment is rewrapped first.
func rowSelection(rowHTML string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table><tbody>" + rowHTML + "</tbody></table>"))
	if err != nil {
		return nil, err
	}
	return doc.Find("tr").First(), nil
}

// advancePage clicks the pager control and confirms rows exist on the new
// page. Stale and intercepted clicks retry on a fixed backoff; the last
// error is returned once attempts run out.
func (c *Crawler) advancePage(ctx context.Context) error {
	return retry.Do(
		func() error {
			if err := c.driver.Click(ctx, c.site.NextButton()); err != nil {
				return err
			}
			// Soft confirmation: a wait timeout still counts as advanced.
			_, err := c.driver.WaitFor(ctx, c.site.Rows(), browser.Presence)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxClickRetries)),
		retry.Delay(1*time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return browser.IsStale(err) || browser.IsNotClickable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("click failed",
				zap.Uint("attempt", n+1),
				zap.Int("max_retries", c.cfg.MaxClickRetries),
				zap.Error(err))
		}),
	)
}
