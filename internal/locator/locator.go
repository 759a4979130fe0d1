package locator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/browser"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/navigator"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

const DefaultInteractionDelay = 500 * time.Millisecond

// Policy decides what Open does when no strategy finds the control.
type Policy int

const (
	// PolicyFallback navigates directly to the query's fallback target.
	PolicyFallback Policy = iota
	// PolicyStrict fails with a LocatorNotFoundError.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "fallback"
}

type Query struct {
	Label string
	// Fallback is loaded under PolicyFallback. The zero value treats Label as a
	// hash route fragment.
	Fallback   models.NavigationTarget
	Policy     Policy
	Strategies []Strategy
}

func (q Query) fallback() models.NavigationTarget {
	if q.Fallback == (models.NavigationTarget{}) {
		return models.RouteFromLabel(q.Label)
	}
	return q.Fallback
}

// Resolution tells how a query was satisfied.
type Resolution struct {
	Strategy string
	Element  browser.Element
	FellBack bool
}

type Option func(*Locator)

func WithInteractionDelay(d time.Duration) Option {
	return func(l *Locator) { l.interactionDelay = d }
}

// Locator finds UI controls by label using an ordered list of strategies.
type Locator struct {
	page             browser.Page
	nav              *navigator.Navigator
	interactionDelay time.Duration
}

func New(page browser.Page, nav *navigator.Navigator, opts ...Option) *Locator {
	l := &Locator{
		page:             page,
		nav:              nav,
		interactionDelay: DefaultInteractionDelay,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Find tries each strategy in order and returns the first element matched by the
// first strategy with at least one match.
func (l *Locator) Find(ctx context.Context, label string, strategies ...Strategy) (Resolution, error) {
	if len(strategies) == 0 {
		strategies = NavigationStrategies()
	}

	tried := make([]string, 0, len(strategies))
	for _, s := range strategies {
		tried = append(tried, s.Name)

		elements, err := l.page.Elements(ctx, s.Selector)
		if err != nil {
			return Resolution{}, err
		}
		for _, el := range elements {
			if s.Match(el, label) {
				zap.S().Named("locator").Debugw("element found", "label", label, "strategy", s.Name, "tag", el.Tag, "index", el.Index)
				return Resolution{Strategy: s.Name, Element: el}, nil
			}
		}
	}
	return Resolution{}, srvErrors.NewLocatorNotFoundError(label, tried...)
}

func (l *Locator) Click(ctx context.Context, el browser.Element, opts browser.ClickOptions) error {
	return l.page.Click(ctx, el, opts)
}

// Open activates the control labelled q.Label and waits for the interaction delay.
// When nothing matches, q.Policy decides between navigating to the fallback target
// and failing.
func (l *Locator) Open(ctx context.Context, q Query) (Resolution, error) {
	res, err := l.Find(ctx, q.Label, q.Strategies...)
	if err == nil {
		if err := l.Click(ctx, res.Element, browser.ClickOptions{Force: true}); err != nil {
			return res, err
		}
		return res, l.nav.Settle(ctx, l.interactionDelay)
	}
	if !srvErrors.IsLocatorNotFoundError(err) || q.Policy == PolicyStrict {
		return Resolution{}, err
	}

	target := q.fallback()
	zap.S().Named("locator").Infow("control not found, navigating directly", "label", q.Label, "target", target.String())
	if err := l.nav.Goto(ctx, target); err != nil {
		return Resolution{FellBack: true}, err
	}
	return Resolution{FellBack: true}, nil
}
