package txschools

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp/kb"

	"schoolscraper/internal/browser"
	"schoolscraper/internal/config"
)

const (
	baseURL   = "https://txschools.gov"
	searchURL = baseURL + "/?view=schools&lng=en"
)

// Page-structure selectors for the Texas school directory. The rendered
// markup is Material UI, hence the generated class tokens.
var (
	filterInput = browser.ByXPath(`//*[@placeholder="Select a grade level"]`)
	tableRows   = browser.ByXPath(`//table//tbody/tr`)
	nextButton  = browser.ByXPath(`//button[contains(@aria-label, 'Go to next page')]`)
	pageMarker  = browser.ByCSS(".jss16")
)

// Site implements the crawler and enricher hooks for txschools.gov.
type Site struct {
	base   *url.URL
	settle time.Duration
}

func New(cfg *config.Config) *Site {
	base, _ := url.Parse(baseURL)
	return &Site{
		base:   base,
		settle: time.Duration(cfg.FilterSettle) * time.Second,
	}
}

func (s *Site) Name() string      { return "txschools" }
func (s *Site) SearchURL() string { return searchURL }

func (s *Site) Rows() browser.Selector          { return tableRows }
func (s *Site) NextButton() browser.Selector    { return nextButton }
func (s *Site) ContentMarker() browser.Selector { return pageMarker }

// NextDisabled reports whether the pager control is inactive. Material UI
// marks the last page by adding a *-disabled class token to the button.
func (s *Site) NextDisabled(node *cdp.Node) bool {
	return strings.Contains(node.AttributeValue("class"), "disabled")
}

// ApplyFilters drives the grade-level combo box once per filter value:
// open, type the value, move the suggestion highlight down one, confirm.
// Selections are cumulative. The caller has already navigated to SearchURL.
func (s *Site) ApplyFilters(ctx context.Context, d browser.Driver, filters []string) error {
	input, err := d.WaitFor(ctx, filterInput, browser.Clickable)
	if err != nil {
		return err
	}
	if input == nil {
		return fmt.Errorf("grade level filter not found on %s", searchURL)
	}

	for _, value := range filters {
		if err := d.Click(ctx, filterInput); err != nil {
			return fmt.Errorf("opening grade level filter: %w", err)
		}
		if err := d.SendKeys(ctx, filterInput, value); err != nil {
			return fmt.Errorf("typing filter %q: %w", value, err)
		}
		if err := d.SendKeys(ctx, filterInput, kb.ArrowDown); err != nil {
			return fmt.Errorf("selecting filter %q: %w", value, err)
		}
		if err := d.SendKeys(ctx, filterInput, kb.Enter); err != nil {
			return fmt.Errorf("confirming filter %q: %w", value, err)
		}

		// Let the table re-render before the next filter goes in.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.settle):
		}
	}
	return nil
}
