package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

type Options struct {
	// RemoteURL is the DevTools websocket of an already running browser. When empty
	// a local browser is started.
	RemoteURL string
	ExecPath  string
	Headless  bool
	Width     int
	Height    int
}

// ChromePage drives a Chromium tab over the DevTools protocol.
type ChromePage struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	listener    Listener
	requests    map[network.RequestID]request
	mu          sync.Mutex
}

func NewChromePage(ctx context.Context, opts Options) (*ChromePage, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(opts.Width, opts.Height),
		)
		if opts.ExecPath != "" {
			execOpts = append(execOpts, chromedp.ExecPath(opts.ExecPath))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	logger := zap.S().Named("chromedp")
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Debugf),
		chromedp.WithErrorf(logger.Debugf),
	)

	p := &ChromePage{
		ctx:         tabCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
		requests:    make(map[network.RequestID]request),
	}
	chromedp.ListenTarget(tabCtx, p.handleEvent)

	// The first Run binds the browser to the long lived context.
	if err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
	); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	zap.S().Named("browser").Infow("browser started", "remote", opts.RemoteURL, "headless", opts.Headless)
	return p, nil
}

func (p *ChromePage) SetListener(l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = l
}

func (p *ChromePage) currentListener() Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listener
}

func (p *ChromePage) handleEvent(ev any) {
	switch e := ev.(type) {
	case *runtime.EventExceptionThrown:
		msg := e.ExceptionDetails.Text
		if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
			msg = e.ExceptionDetails.Exception.Description
		}
		if l := p.currentListener(); l != nil {
			l.OnException(msg)
		}
	case *network.EventRequestWillBeSent:
		p.mu.Lock()
		p.requests[e.RequestID] = request{method: e.Request.Method, url: e.Request.URL}
		p.mu.Unlock()
	case *network.EventResponseReceived:
		req := p.takeRequest(e.RequestID)
		call := models.APICall{
			Method: req.method,
			URL:    e.Response.URL,
			Status: int(e.Response.Status),
			Failed: e.Response.Status >= 400,
			At:     time.Now(),
		}
		if l := p.currentListener(); l != nil {
			l.OnResponse(call)
		}
	case *network.EventLoadingFailed:
		req := p.takeRequest(e.RequestID)
		if e.Canceled {
			return
		}
		call := models.APICall{
			Method: req.method,
			URL:    req.url,
			Failed: true,
			Reason: e.ErrorText,
			At:     time.Now(),
		}
		if l := p.currentListener(); l != nil && req.url != "" {
			l.OnResponse(call)
		}
	}
}

type request struct {
	method string
	url    string
}

func (p *ChromePage) takeRequest(id network.RequestID) request {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.requests[id]
	delete(p.requests, id)
	return r
}

// run executes actions on the tab, bounded by ctx.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return errors.Join(ctx.Err(), err)
	}
	return err
}

// Navigate performs a full document load. Going through about:blank first turns
// hash-only changes into real loads.
func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *ChromePage) Location(ctx context.Context) (string, error) {
	var url string
	err := p.run(ctx, chromedp.Location(&url))
	return url, err
}

func (p *ChromePage) BodyText(ctx context.Context) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Evaluate(`document.body ? document.body.textContent : ""`, &text))
	return text, err
}

func (p *ChromePage) BodyChildCount(ctx context.Context) (int, error) {
	var n int
	err := p.run(ctx, chromedp.Evaluate(`document.body ? document.body.children.length : 0`, &n))
	return n, err
}

type elementJSON struct {
	Index int    `json:"index"`
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Href  string `json:"href"`
	Leaf  bool   `json:"leaf"`
}

const elementsScript = `Array.from(document.querySelectorAll(%s)).map((el, i) => ({
	index: i,
	tag: el.tagName.toLowerCase(),
	text: (el.innerText || el.textContent || "").trim(),
	href: el.getAttribute("href") || "",
	leaf: el.children.length === 0
}))`

func (p *ChromePage) Elements(ctx context.Context, selector string) ([]Element, error) {
	sel, err := json.Marshal(selector)
	if err != nil {
		return nil, err
	}
	var raw []elementJSON
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(elementsScript, sel), &raw)); err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(raw))
	for _, r := range raw {
		out = append(out, Element{
			Selector: selector,
			Index:    r.Index,
			Tag:      r.Tag,
			Text:     r.Text,
			Href:     r.Href,
			Leaf:     r.Leaf,
		})
	}
	return out, nil
}

const clickScript = `(() => {
	const el = document.querySelectorAll(%s)[%d];
	if (!el) return "missing";
	if (!%t && el.getClientRects().length === 0) return "hidden";
	el.scrollIntoView({block: "center"});
	el.click();
	return "ok";
})()`

func (p *ChromePage) Click(ctx context.Context, el Element, opts ClickOptions) error {
	sel, err := json.Marshal(el.Selector)
	if err != nil {
		return err
	}
	var res string
	if err := p.run(ctx, chromedp.Evaluate(fmt.Sprintf(clickScript, sel, el.Index, opts.Force), &res)); err != nil {
		return err
	}
	switch res {
	case "ok":
		return nil
	case "hidden":
		return fmt.Errorf("element %s[%d] is not visible", el.Selector, el.Index)
	default:
		return fmt.Errorf("element %s[%d] is no longer attached", el.Selector, el.Index)
	}
}

func (p *ChromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

func (p *ChromePage) InjectError(ctx context.Context, message string) error {
	msg, err := json.Marshal(message)
	if err != nil {
		return err
	}
	var id any
	return p.run(ctx, chromedp.Evaluate(fmt.Sprintf(`setTimeout(() => { throw new Error(%s); }, 0)`, msg), &id))
}

func (p *ChromePage) Close() error {
	p.cancel()
	p.allocCancel()
	return nil
}
