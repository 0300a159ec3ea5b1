// Package browsertest provides a scripted in-memory Driver for tests.
package browsertest

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"

	"schoolscraper/internal/browser"
)

// Page scripts one listing page served by the Fake.
type Page struct {
	Rows       []string    // outer HTML per row
	StaleReads map[int]int // row index -> stale errors served before success
	NoRows     bool        // rows never appear on this page
	NoNext     bool        // pager button absent
	LastPage   bool        // pager button present but disabled
}

// Fake implements browser.Driver against scripted pages. Selector fields
// tell it which queries mean what; anything else resolves to a plain node.
type Fake struct {
	RowsSel browser.Selector
	NextSel browser.Selector

	// Absent selectors time out: WaitFor returns the (nil, nil) sentinel.
	Absent []browser.Selector

	Pages     []Page
	PageIndex int

	Detail      map[string]string // URL -> detail page HTML
	NavigateErr map[string]error

	// ClickErrs is consumed one entry per pager click; a nil entry lets the
	// click land and advances PageIndex.
	ClickErrs []error

	Navigated []string
	Clicks    int
	Keys      []string

	nodeRows map[*cdp.Node]int
}

var _ browser.Driver = (*Fake)(nil)

func (f *Fake) page() *Page {
	if f.PageIndex < len(f.Pages) {
		return &f.Pages[f.PageIndex]
	}
	return &Page{NoRows: true, NoNext: true}
}

func (f *Fake) absent(sel browser.Selector) bool {
	for _, a := range f.Absent {
		if a == sel {
			return true
		}
	}
	return false
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Navigated = append(f.Navigated, url)
	return f.NavigateErr[url]
}

func (f *Fake) WaitFor(ctx context.Context, sel browser.Selector, cond browser.Condition) (*cdp.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.absent(sel) {
		return nil, nil
	}
	switch sel {
	case f.RowsSel:
		p := f.page()
		if p.NoRows || len(p.Rows) == 0 {
			return nil, nil
		}
		return &cdp.Node{}, nil
	case f.NextSel:
		p := f.page()
		if p.NoRows || p.NoNext {
			return nil, nil
		}
		class := "MuiButtonBase-root MuiIconButton-root"
		if p.LastPage {
			class += " Mui-disabled"
		}
		return &cdp.Node{Attributes: []string{"class", class}}, nil
	default:
		return &cdp.Node{}, nil
	}
}

func (f *Fake) Click(ctx context.Context, sel browser.Selector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sel != f.NextSel {
		return nil
	}
	f.Clicks++
	if len(f.ClickErrs) > 0 {
		err := f.ClickErrs[0]
		f.ClickErrs = f.ClickErrs[1:]
		if err != nil {
			return err
		}
	}
	f.PageIndex++
	f.nodeRows = nil
	return nil
}

func (f *Fake) SendKeys(ctx context.Context, sel browser.Selector, keys string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Keys = append(f.Keys, keys)
	return nil
}

func (f *Fake) Nodes(ctx context.Context, sel browser.Selector) ([]*cdp.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := f.page()
	f.nodeRows = make(map[*cdp.Node]int, len(p.Rows))
	nodes := make([]*cdp.Node, len(p.Rows))
	for i := range p.Rows {
		n := &cdp.Node{BackendNodeID: cdp.BackendNodeID(f.PageIndex*1000 + i + 1)}
		f.nodeRows[n] = i
		nodes[i] = n
	}
	return nodes, nil
}

func (f *Fake) NodeHTML(ctx context.Context, node *cdp.Node) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	i, ok := f.nodeRows[node]
	if !ok {
		return "", browser.ErrStaleNode
	}
	p := f.page()
	if p.StaleReads[i] > 0 {
		p.StaleReads[i]--
		return "", fmt.Errorf("reading node html: %w", browser.ErrStaleNode)
	}
	return p.Rows[i], nil
}

func (f *Fake) PageHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(f.Navigated) == 0 {
		return "", fmt.Errorf("no page loaded")
	}
	return f.Detail[f.Navigated[len(f.Navigated)-1]], nil
}
