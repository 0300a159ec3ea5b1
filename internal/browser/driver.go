package browser

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Condition selects what WaitFor waits on.
type Condition int

const (
	// Presence waits until the element exists in the DOM.
	Presence Condition = iota
	// Clickable waits until the element is visible and enabled.
	Clickable
)

// Selector addresses an element on the page.
type Selector struct {
	Query string
	Mode  Mode
}

// Mode is the query language of a Selector.
type Mode int

const (
	XPath Mode = iota
	CSS
)

func ByXPath(q string) Selector { return Selector{Query: q, Mode: XPath} }
func ByCSS(q string) Selector   { return Selector{Query: q, Mode: CSS} }

func (s Selector) opts() []chromedp.QueryOption {
	if s.Mode == CSS {
		return []chromedp.QueryOption{chromedp.ByQuery}
	}
	return []chromedp.QueryOption{chromedp.BySearch}
}

// Driver is the page-level automation surface the crawler and enricher work
// against. *Session implements it against a live browser; tests substitute
// fakes.
type Driver interface {
	// Navigate loads url and blocks until the page load settles.
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until sel satisfies cond or the configured wait timeout
	// elapses. A timeout is not an error: it logs once and returns (nil, nil)
	// so callers can treat the element as absent.
	WaitFor(ctx context.Context, sel Selector, cond Condition) (*cdp.Node, error)
	// Click scrolls sel into view and clicks it.
	Click(ctx context.Context, sel Selector) error
	// SendKeys types keys into sel.
	SendKeys(ctx context.Context, sel Selector, keys string) error
	// Nodes returns live node handles for every match of sel.
	Nodes(ctx context.Context, sel Selector) ([]*cdp.Node, error)
	// NodeHTML returns the outer HTML of a node handle. It fails with a
	// stale-node error when the handle no longer matches the live DOM.
	NodeHTML(ctx context.Context, node *cdp.Node) (string, error)
	// PageHTML returns the full document HTML.
	PageHTML(ctx context.Context) (string, error)
}
