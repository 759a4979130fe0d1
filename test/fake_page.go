package test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/browser"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

// FakeView is the rendered state of one URL in a FakePage.
type FakeView struct {
	Text     string
	Children int
	Elements []browser.Element
	// Exceptions are raised as uncaught page errors when the view loads.
	Exceptions []string
	// Calls are reported to the listener when the view loads.
	Calls []models.APICall
}

// FakePage implements browser.Page in memory.
type FakePage struct {
	BaseURL string

	views       map[string]FakeView
	unreachable map[string]error
	location    string
	listener    browser.Listener
	visits      []string
	clicks      []browser.Element
	closed      bool
	mu          sync.Mutex
}

// NewFakePage creates a page that resolves relative hrefs against baseURL.
func NewFakePage(baseURL string) *FakePage {
	return &FakePage{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		views:       make(map[string]FakeView),
		unreachable: make(map[string]error),
		location:    "about:blank",
	}
}

// AddView registers the view rendered at url.
func (f *FakePage) AddView(url string, v FakeView) *FakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[url] = v
	return f
}

// Fail makes navigation to url fail with err.
func (f *FakePage) Fail(url string, err error) *FakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreachable[url] = err
	return f
}

// Render changes the view shown at url, e.g. to simulate late rendering.
func (f *FakePage) Render(url string, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.views[url]
	v.Text = text
	f.views[url] = v
}

func (f *FakePage) Visits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.visits...)
}

func (f *FakePage) Clicks() []browser.Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]browser.Element(nil), f.clicks...)
}

func (f *FakePage) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.visits = append(f.visits, url)
	if err, ok := f.unreachable[url]; ok {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()
	f.load(url)
	return nil
}

func (f *FakePage) load(url string) {
	f.mu.Lock()
	f.location = url
	v := f.views[url]
	l := f.listener
	f.mu.Unlock()

	if l == nil {
		return
	}
	for _, c := range v.Calls {
		if c.At.IsZero() {
			c.At = time.Now()
		}
		l.OnResponse(c)
	}
	for _, msg := range v.Exceptions {
		l.OnException(msg)
	}
}

func (f *FakePage) current() FakeView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views[f.location]
}

func (f *FakePage) Location(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.location, ctx.Err()
}

func (f *FakePage) BodyText(ctx context.Context) (string, error) {
	return f.current().Text, ctx.Err()
}

func (f *FakePage) BodyChildCount(ctx context.Context) (int, error) {
	return f.current().Children, ctx.Err()
}

// Elements supports the selector forms used by the locator: "*", "tag",
// "[attr]" and comma separated lists of those.
func (f *FakePage) Elements(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []browser.Element
	for _, el := range f.current().Elements {
		if !selects(selector, el) {
			continue
		}
		el.Selector = selector
		el.Index = len(out)
		out = append(out, el)
	}
	return out, nil
}

func selects(selector string, el browser.Element) bool {
	for _, term := range strings.Split(selector, ",") {
		term = strings.TrimSpace(term)
		switch {
		case term == "*":
			return true
		case term == "[href]":
			if el.Href != "" {
				return true
			}
		case strings.EqualFold(term, el.Tag):
			return true
		}
	}
	return false
}

// Click records the click and follows the element's href, if any.
func (f *FakePage) Click(ctx context.Context, el browser.Element, opts browser.ClickOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	els, _ := f.Elements(ctx, el.Selector)
	if el.Index >= len(els) {
		return fmt.Errorf("element %s[%d] is no longer attached", el.Selector, el.Index)
	}
	target := els[el.Index]

	f.mu.Lock()
	f.clicks = append(f.clicks, target)
	loc := f.location
	f.mu.Unlock()

	switch {
	case target.Href == "":
		return nil
	case strings.HasPrefix(target.Href, "#"):
		base, _, _ := strings.Cut(loc, "#")
		f.load(base + target.Href)
	case strings.HasPrefix(target.Href, "/"):
		f.load(f.BaseURL + target.Href)
	default:
		f.load(target.Href)
	}
	return nil
}

func (f *FakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte("\x89PNG\r\n\x1a\n"), nil
}

func (f *FakePage) InjectError(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	l := f.listener
	f.mu.Unlock()
	if l == nil {
		return errors.New("no listener attached")
	}
	l.OnException("Error: " + message)
	return nil
}

func (f *FakePage) SetListener(l browser.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
}

func (f *FakePage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

var _ browser.Page = (*FakePage)(nil)
