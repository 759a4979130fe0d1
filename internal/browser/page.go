package browser

import (
	"context"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

// Element describes a DOM element matched by a selector. Index is its position in the
// selector's result list at query time and is only meaningful until the DOM changes.
type Element struct {
	Selector string
	Index    int
	Tag      string
	Text     string
	Href     string
	Leaf     bool
}

type ClickOptions struct {
	// Force clicks the element even when it is hidden or covered.
	Force bool
}

// Listener receives events of the page. Calls arrive on the browser event goroutine
// and must not block.
type Listener interface {
	OnException(message string)
	OnResponse(call models.APICall)
}

// Page is one browsing context.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	BodyText(ctx context.Context) (string, error)
	BodyChildCount(ctx context.Context) (int, error)
	Elements(ctx context.Context, selector string) ([]Element, error)
	Click(ctx context.Context, el Element, opts ClickOptions) error
	Screenshot(ctx context.Context) ([]byte, error)
	// InjectError raises an uncaught error inside the page, outside any handler.
	InjectError(ctx context.Context, message string) error
	SetListener(l Listener)
	Close() error
}
