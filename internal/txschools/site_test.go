package txschools

import (
	"context"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/require"

	"schoolscraper/internal/browser"
	"schoolscraper/internal/browser/browsertest"
	"schoolscraper/internal/config"
)

func TestNextDisabled(t *testing.T) {
	site := New(&config.Config{})

	enabled := &cdp.Node{Attributes: []string{"class", "MuiButtonBase-root MuiIconButton-root"}}
	require.False(t, site.NextDisabled(enabled))

	disabled := &cdp.Node{Attributes: []string{"class", "MuiButtonBase-root Mui-disabled"}}
	require.True(t, site.NextDisabled(disabled))

	bare := &cdp.Node{}
	require.False(t, site.NextDisabled(bare))
}

func TestApplyFiltersKeySequence(t *testing.T) {
	site := New(&config.Config{})
	fake := &browsertest.Fake{}

	require.NoError(t, site.ApplyFilters(context.Background(), fake, []string{"Elementary"}))
	require.Equal(t, []string{"Elementary", kb.ArrowDown, kb.Enter}, fake.Keys)
}

func TestApplyFiltersCumulative(t *testing.T) {
	site := New(&config.Config{})
	fake := &browsertest.Fake{}

	require.NoError(t, site.ApplyFilters(context.Background(), fake, []string{"Elementary", "Middle", "High"}))
	require.Equal(t, []string{
		"Elementary", kb.ArrowDown, kb.Enter,
		"Middle", kb.ArrowDown, kb.Enter,
		"High", kb.ArrowDown, kb.Enter,
	}, fake.Keys)
}

func TestApplyFiltersMissingControlIsFatal(t *testing.T) {
	site := New(&config.Config{})
	fake := &browsertest.Fake{Absent: []browser.Selector{filterInput}}

	err := site.ApplyFilters(context.Background(), fake, []string{"Elementary"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "filter not found")
}

func TestSelectorsAndURLs(t *testing.T) {
	site := New(&config.Config{})
	require.Equal(t, "txschools", site.Name())
	require.Equal(t, "https://txschools.gov/?view=schools&lng=en", site.SearchURL())
	require.Equal(t, browser.XPath, site.Rows().Mode)
	require.Equal(t, browser.XPath, site.NextButton().Mode)
	require.Equal(t, browser.CSS, site.ContentMarker().Mode)
}
