package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"schoolscraper/internal/config"
)

// Session owns a single browser for the lifetime of a scrape or enrichment
// run. It is not safe for concurrent use; each run gets its own Session.
type Session struct {
	cfg     *config.Config
	logger  *zap.Logger
	ctx     context.Context
	cancels []context.CancelFunc
}

func NewSession(cfg *config.Config, logger *zap.Logger) *Session {
	return &Session{cfg: cfg, logger: logger}
}

// Start launches the browser. A failure here is fatal for the run: no
// scraping can proceed without a session.
func (s *Session) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", ""),
		chromedp.Flag("disable-dev-shm-usage", ""),
		chromedp.WindowSize(s.cfg.WindowWidth, s.cfg.WindowHeight),
	)
	if s.cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(s.cfg.ProxyURL))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions launches the browser now instead of on first use.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("starting browser session: %w", err)
	}

	s.ctx = browserCtx
	s.cancels = []context.CancelFunc{browserCancel, allocCancel}
	s.logger.Info("browser session started",
		zap.Bool("headless", s.cfg.Headless),
		zap.Int("window_width", s.cfg.WindowWidth),
		zap.Int("window_height", s.cfg.WindowHeight))
	return nil
}

// Close tears the browser down. It is safe to call more than once and on a
// Session that never started.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	tctx, cancel := context.WithTimeout(s.ctx, time.Duration(s.cfg.PageLoadTimeout)*time.Second)
	defer cancel()
	err := chromedp.Run(tctx, chromedp.Navigate(url))
	return s.wrap(ctx, err, "navigating to "+url)
}

func (s *Session) WaitFor(ctx context.Context, sel Selector, cond Condition) (*cdp.Node, error) {
	timeout := time.Duration(s.cfg.WaitTimeout) * time.Second
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var actions []chromedp.Action
	if cond == Clickable {
		actions = append(actions,
			chromedp.WaitVisible(sel.Query, sel.opts()...),
			chromedp.WaitEnabled(sel.Query, sel.opts()...),
		)
	} else {
		actions = append(actions, chromedp.WaitReady(sel.Query, sel.opts()...))
	}
	var nodes []*cdp.Node
	actions = append(actions, chromedp.Nodes(sel.Query, &nodes, sel.opts()...))

	err := chromedp.Run(tctx, actions...)
	if err == nil {
		return nodes[0], nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Error("timeout waiting for element",
			zap.String("selector", sel.Query),
			zap.Duration("timeout", timeout))
		return nil, nil
	}
	return nil, fmt.Errorf("waiting for %s: %w", sel.Query, err)
}

func (s *Session) Click(ctx context.Context, sel Selector) error {
	tctx, cancel := s.op()
	defer cancel()
	err := chromedp.Run(tctx,
		chromedp.ScrollIntoView(sel.Query, sel.opts()...),
		chromedp.Click(sel.Query, sel.opts()...),
	)
	return s.wrap(ctx, err, "clicking "+sel.Query)
}

func (s *Session) SendKeys(ctx context.Context, sel Selector, keys string) error {
	tctx, cancel := s.op()
	defer cancel()
	err := chromedp.Run(tctx, chromedp.SendKeys(sel.Query, keys, sel.opts()...))
	return s.wrap(ctx, err, "sending keys to "+sel.Query)
}

func (s *Session) Nodes(ctx context.Context, sel Selector) ([]*cdp.Node, error) {
	tctx, cancel := s.op()
	defer cancel()
	var nodes []*cdp.Node
	err := chromedp.Run(tctx, chromedp.Nodes(sel.Query, &nodes, sel.opts()...))
	if err != nil {
		return nil, s.wrap(ctx, err, "querying nodes for "+sel.Query)
	}
	return nodes, nil
}

func (s *Session) NodeHTML(ctx context.Context, node *cdp.Node) (string, error) {
	tctx, cancel := s.op()
	defer cancel()
	var html string
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		html, err = dom.GetOuterHTML().WithBackendNodeID(node.BackendNodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", s.wrap(ctx, err, "reading node html")
	}
	return html, nil
}

func (s *Session) PageHTML(ctx context.Context) (string, error) {
	tctx, cancel := s.op()
	defer cancel()
	var html string
	err := chromedp.Run(tctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	if err != nil {
		return "", s.wrap(ctx, err, "reading page html")
	}
	return html, nil
}

func (s *Session) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx, time.Duration(s.cfg.WaitTimeout)*time.Second)
}

func (s *Session) wrap(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%s: %w", msg, err)
}
