package crawler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolscraper/internal/browser"
	"schoolscraper/internal/browser/browsertest"
	"schoolscraper/internal/config"
	"schoolscraper/internal/domain"
	"schoolscraper/internal/monitoring"
	"schoolscraper/internal/txschools"
)

var testMetrics = monitoring.NewMetrics()

func testConfig() *config.Config {
	return &config.Config{
		WaitTimeout:     1,
		PageLoadTimeout: 5,
		MaxClickRetries: 3,
		WindowWidth:     1024,
		WindowHeight:    768,
	}
}

func rowHTML(name, href, district string) string {
	return fmt.Sprintf(
		`<tr class="MuiTableRow-root">`+
			`<td class="MuiTableCell-root"><div><a href="%s">%s</a></div></td>`+
			`<td class="MuiTableCell-root"><a href="/districts/1">%s</a></td>`+
			`<td class="MuiTableCell-root"><div>100 MAIN ST, AUSTIN, TX 78701</div></td>`+
			`<td class="MuiTableCell-root">PK-5</td>`+
			`</tr>`,
		href, name, district)
}

func newTestCrawler(pages []browsertest.Page) (*Crawler, *browsertest.Fake, *domain.RecordStore) {
	cfg := testConfig()
	site := txschools.New(cfg)
	fake := &browsertest.Fake{
		RowsSel: site.Rows(),
		NextSel: site.NextButton(),
		Pages:   pages,
	}
	store := domain.NewRecordStore()
	return New(cfg, fake, site, store, testMetrics, zap.NewNop()), fake, store
}

func TestCollectAllDeduplicatesAcrossPages(t *testing.T) {
	pages := []browsertest.Page{
		{Rows: []string{
			rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD"),
			rowHTML("Travis Elementary", "/schools/2/overview", "AUSTIN ISD"),
		}},
		{Rows: []string{
			rowHTML("Travis Elementary", "/schools/2/overview", "AUSTIN ISD"),
			rowHTML("Lamar Middle", "/schools/3/overview", "AUSTIN ISD"),
		}, LastPage: true},
	}
	c, fake, store := newTestCrawler(pages)

	require.NoError(t, c.CollectAll(context.Background()))

	recs := store.Records()
	require.Len(t, recs, 3)
	require.Equal(t, "https://txschools.gov/schools/1/overview", recs[0].URL)
	require.Equal(t, "https://txschools.gov/schools/2/overview", recs[1].URL)
	require.Equal(t, "https://txschools.gov/schools/3/overview", recs[2].URL)
	require.Equal(t, []int{1, 1, 2}, []int{recs[0].PageNumber, recs[1].PageNumber, recs[2].PageNumber})
	require.Equal(t, 2, c.CurrentPage())
	require.Equal(t, 1, fake.Clicks)
}

func TestCollectAllStopsWhenRowsNeverAppear(t *testing.T) {
	pages := []browsertest.Page{
		{Rows: []string{
			rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD"),
			rowHTML("Travis Elementary", "/schools/2/overview", "AUSTIN ISD"),
		}},
		{NoRows: true},
	}
	c, _, store := newTestCrawler(pages)

	// The failure is absorbed; whatever was collected stays collected.
	require.NoError(t, c.CollectAll(context.Background()))
	require.Equal(t, 2, store.Len())
	require.Equal(t, 2, c.CurrentPage())
}

func TestCollectAllEndsOnMissingNextButton(t *testing.T) {
	pages := []browsertest.Page{
		{Rows: []string{rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD")}, NoNext: true},
	}
	c, fake, store := newTestCrawler(pages)

	require.NoError(t, c.CollectAll(context.Background()))
	require.Equal(t, 1, store.Len())
	require.Equal(t, 1, c.CurrentPage())
	require.Equal(t, 0, fake.Clicks)
}

func TestAdvanceRecoversAfterRetryableClickFailures(t *testing.T) {
	pages := []browsertest.Page{
		{Rows: []string{
			rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD"),
			rowHTML("Travis Elementary", "/schools/2/overview", "AUSTIN ISD"),
		}},
		{Rows: []string{rowHTML("Lamar Middle", "/schools/3/overview", "AUSTIN ISD")}, LastPage: true},
	}
	c, fake, store := newTestCrawler(pages)
	fake.ClickErrs = []error{browser.ErrStaleNode, browser.ErrNotClickable, nil}

	require.NoError(t, c.CollectAll(context.Background()))
	require.Equal(t, 3, store.Len())
	require.Equal(t, 3, fake.Clicks)
	// The two failed attempts do not move the cursor; the success does, once.
	require.Equal(t, 2, c.CurrentPage())
}

func TestAdvanceRetryExhaustionPropagates(t *testing.T) {
	pages := []browsertest.Page{
		{Rows: []string{
			rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD"),
			rowHTML("Travis Elementary", "/schools/2/overview", "AUSTIN ISD"),
		}},
		{Rows: []string{rowHTML("Lamar Middle", "/schools/3/overview", "AUSTIN ISD")}},
	}
	c, fake, store := newTestCrawler(pages)
	fake.ClickErrs = []error{browser.ErrStaleNode, browser.ErrStaleNode, browser.ErrStaleNode}

	err := c.CollectAll(context.Background())
	require.Error(t, err)
	require.True(t, browser.IsStale(err))
	require.Equal(t, 3, fake.Clicks)
	// Partial results survive the failed advance.
	require.Equal(t, 2, store.Len())
	require.Equal(t, 1, c.CurrentPage())
}

func TestAdvanceNonRetryableErrorFailsFast(t *testing.T) {
	pages := []browsertest.Page{
		{Rows: []string{rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD")}},
		{Rows: []string{rowHTML("Lamar Middle", "/schools/3/overview", "AUSTIN ISD")}},
	}
	c, fake, store := newTestCrawler(pages)
	fake.ClickErrs = []error{errors.New("browser crashed")}

	err := c.CollectAll(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, fake.Clicks)
	require.Equal(t, 1, store.Len())
}

func TestExtractPageRetriesOnceOnStaleRows(t *testing.T) {
	pages := []browsertest.Page{
		{
			Rows: []string{
				rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD"),
				rowHTML("Travis Elementary", "/schools/2/overview", "AUSTIN ISD"),
			},
			StaleReads: map[int]int{1: 1},
			LastPage:   true,
		},
	}
	c, _, store := newTestCrawler(pages)

	require.NoError(t, c.CollectAll(context.Background()))
	// The page was re-read once: the first row dedups, the stale row recovers.
	require.Equal(t, 2, store.Len())
	recs := store.Records()
	require.Equal(t, "Austin High School", recs[0].Name)
	require.Equal(t, "Travis Elementary", recs[1].Name)
}

func TestExtractPageDropsRowOnSecondStale(t *testing.T) {
	pages := []browsertest.Page{
		{
			Rows: []string{
				rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD"),
				rowHTML("Travis Elementary", "/schools/2/overview", "AUSTIN ISD"),
			},
			StaleReads: map[int]int{1: 2},
			LastPage:   true,
		},
	}
	c, _, store := newTestCrawler(pages)

	require.NoError(t, c.CollectAll(context.Background()))
	require.Equal(t, 1, store.Len())
	require.Equal(t, "Austin High School", store.Get(0).Name)
}

func TestCollectAllHonorsCancellation(t *testing.T) {
	pages := []browsertest.Page{
		{Rows: []string{rowHTML("Austin High School", "/schools/1/overview", "AUSTIN ISD")}},
	}
	c, _, _ := newTestCrawler(pages)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.CollectAll(ctx), context.Canceled)
}

func TestApplyFilters(t *testing.T) {
	c, fake, _ := newTestCrawler(nil)

	require.NoError(t, c.ApplyFilters(context.Background(), []string{"Elementary", "Middle"}))
	require.Equal(t, []string{"https://txschools.gov/?view=schools&lng=en"}, fake.Navigated)
	// Each filter types the value, moves the highlight down, confirms.
	require.Len(t, fake.Keys, 6)
	require.Equal(t, "Elementary", fake.Keys[0])
	require.Equal(t, "Middle", fake.Keys[3])
}
