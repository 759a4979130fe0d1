package browser

import "github.com/chromedp/cdproto/network"

// NewDetachedPage returns a ChromePage without a browser, to feed it CDP events.
func NewDetachedPage() *ChromePage {
	return &ChromePage{requests: make(map[network.RequestID]request)}
}

func (p *ChromePage) HandleEvent(ev any) {
	p.handleEvent(ev)
}

func (p *ChromePage) PendingRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}
