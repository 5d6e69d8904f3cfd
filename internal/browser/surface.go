package browser

import (
	"context"
	"fmt"

	"github.com/pagereaper/pagereaper/internal/extract"
	"github.com/pagereaper/pagereaper/internal/utils/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// Options configures the launched browser and the pagination behavior.
type Options struct {
	Headless       bool
	ExpandSelector string
	MaxRounds      int
	IntervalMs     int
	StableRounds   int
}

// Surface owns a single browser tab and exposes it as the remote execution
// surface the orchestrator drives: navigate, run the extraction, and stream
// liveness pings out-of-band while the extraction is computing.
type Surface struct {
	browser *rod.Browser
	page    *rod.Page
	parser  *extract.Parser
	opts    Options
	pings   chan struct{}
}

// Launch starts the browser and returns a connected surface.
func Launch(opts Options, parser *extract.Parser) (*Surface, error) {
	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true).
		Set("disable-extensions").
		Set("disable-default-apps").
		Set("disable-dev-shm-usage").
		Set("window-size", "1366,768")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Surface{
		browser: b,
		parser:  parser,
		opts:    opts,
		pings:   make(chan struct{}, 16),
	}, nil
}

// Close shuts down the browser.
func (s *Surface) Close() {
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
		s.page = nil
	}
}

// Navigate loads url in the owned tab and returns once the top-level load
// completes. There is deliberately no timeout at this layer; stall handling
// wraps the extraction phase, not navigation.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	if err := s.ensurePage(); err != nil {
		return err
	}

	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %s to load failed: %w", url, err)
	}
	return nil
}

// Extract runs the pagination script against the current page, then parses
// the settled DOM into records. The script emits a ping per round; the
// orchestrator observes them through Pings.
func (s *Surface) Extract(ctx context.Context, originURL string) ([]extract.Record, error) {
	if s.page == nil {
		return nil, fmt.Errorf("no page open for %s", originURL)
	}

	page := s.page.Context(ctx)

	_, err := page.Eval(paginationScript,
		s.opts.ExpandSelector, s.opts.MaxRounds, s.opts.IntervalMs, s.opts.StableRounds)
	if err != nil {
		return nil, fmt.Errorf("pagination script failed on %s: %w", originURL, err)
	}

	pageHTML, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page %s: %w", originURL, err)
	}

	return s.parser.Parse(pageHTML, originURL)
}

// Pings returns the out-of-band liveness channel. Delivery is best-effort:
// when nobody is draining, pings are dropped rather than blocking the page.
func (s *Surface) Pings() <-chan struct{} {
	return s.pings
}

// ensurePage creates the single owned tab on first use and installs the
// ping binding. The binding survives navigations, so this happens once.
func (s *Surface) ensurePage() error {
	if s.page != nil {
		return nil
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}

	_, err = page.Expose(PingBinding, func(gson.JSON) (interface{}, error) {
		select {
		case s.pings <- struct{}{}:
		default:
			logger.Debug("liveness ping dropped, channel full")
		}
		return nil, nil
	})
	if err != nil {
		page.Close()
		return fmt.Errorf("failed to expose ping binding: %w", err)
	}

	s.page = page
	return nil
}
