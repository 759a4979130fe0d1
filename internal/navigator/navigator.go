package navigator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/browser"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

const (
	DefaultResponseTimeout = 10 * time.Second
	DefaultSettleDelay     = 2 * time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Option func(*Navigator)

func WithResponseTimeout(d time.Duration) Option {
	return func(n *Navigator) { n.responseTimeout = d }
}

func WithSettleDelay(d time.Duration) Option {
	return func(n *Navigator) { n.settleDelay = d }
}

// WithDashboardPath serves the dashboard from a path other than /dashboard/.
func WithDashboardPath(p string) Option {
	return func(n *Navigator) { n.dashboardPath = p }
}

func WithSleeper(s Sleeper) Option {
	return func(n *Navigator) { n.sleep = s }
}

// WithVisitHook registers fn to run after each successful load, before settling.
func WithVisitHook(fn func(ctx context.Context, url string)) Option {
	return func(n *Navigator) { n.onVisit = fn }
}

// Navigator loads dashboard views in a browser page.
type Navigator struct {
	page            browser.Page
	baseURL         string
	dashboardPath   string
	responseTimeout time.Duration
	settleDelay     time.Duration
	sleep           Sleeper
	onVisit         func(ctx context.Context, url string)
}

func New(page browser.Page, baseURL string, opts ...Option) *Navigator {
	n := &Navigator{
		page:            page,
		baseURL:         strings.TrimRight(baseURL, "/"),
		dashboardPath:   models.DashboardPath,
		responseTimeout: DefaultResponseTimeout,
		settleDelay:     DefaultSettleDelay,
		sleep:           Sleep,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// URL returns the absolute URL of target.
func (n *Navigator) URL(target models.NavigationTarget) string {
	if target.BasePath == "" || target.BasePath == models.DashboardPath {
		target.BasePath = n.dashboardPath
	}
	path := target.Path()
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return n.baseURL + path
}

// Goto loads target and waits for the settle delay. Any failure to load the page
// within the response timeout is a NavigationError.
func (n *Navigator) Goto(ctx context.Context, target models.NavigationTarget) error {
	url := n.URL(target)
	log := zap.S().Named("navigator")

	navCtx, cancel := context.WithTimeout(ctx, n.responseTimeout)
	defer cancel()

	start := time.Now()
	if err := n.page.Navigate(navCtx, url); err != nil {
		log.Warnw("navigation failed", "url", url, "error", err)
		return srvErrors.NewNavigationError(url, err)
	}
	log.Debugw("page loaded", "url", url, "duration", time.Since(start))

	if n.onVisit != nil {
		n.onVisit(ctx, url)
	}
	return n.Settle(ctx, n.settleDelay)
}

// Settle waits d so the single page app can finish rendering.
func (n *Navigator) Settle(ctx context.Context, d time.Duration) error {
	return n.sleep(ctx, d)
}

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
