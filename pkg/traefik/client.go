package traefik

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	v1 "github.com/david-garcia-garcia/traefik-with-plugins/api/v1"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

const (
	defaultPerPage = 100
	nextPageHeader = "X-Next-Page"

	pathOverview    = "/api/overview"
	pathVersion     = "/api/version"
	pathRouters     = "/api/http/routers"
	pathMiddlewares = "/api/http/middlewares"
	pathServices    = "/api/http/services"
)

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

func WithPerPage(n int) ClientOption {
	return func(cl *Client) { cl.perPage = n }
}

// Client reads the Traefik introspection API. It never writes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	perPage    int
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		perPage:    defaultPerPage,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Overview returns entity counts per section.
// GET /api/overview
func (c *Client) Overview(ctx context.Context) (*v1.Overview, error) {
	var o v1.Overview
	if _, err := c.get(ctx, pathOverview, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GET /api/version
func (c *Client) Version(ctx context.Context) (*v1.Version, error) {
	var v v1.Version
	if _, err := c.get(ctx, pathVersion, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GET /api/http/routers
func (c *Client) Routers(ctx context.Context) ([]v1.Router, error) {
	return list[v1.Router](ctx, c, pathRouters)
}

// GET /api/http/middlewares
func (c *Client) Middlewares(ctx context.Context) ([]v1.Middleware, error) {
	return list[v1.Middleware](ctx, c, pathMiddlewares)
}

// GET /api/http/services
func (c *Client) Services(ctx context.Context) ([]v1.Service, error) {
	return list[v1.Service](ctx, c, pathServices)
}

// list follows the X-Next-Page header until the last page.
func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	page := 1
	for page > 0 {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(c.perPage))

		var items []T
		header, err := c.get(ctx, path, query, &items)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		next, err := strconv.Atoi(header.Get(nextPageHeader))
		if err != nil || next <= page {
			break
		}
		page = next
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, srvErrors.NewNavigationError(u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return resp.Header, nil
}

// WaitReady polls the overview endpoint until it answers or maxWait elapses.
// It returns a NavigationError when the Target System never became ready.
func (c *Client) WaitReady(ctx context.Context, maxWait time.Duration) error {
	log := zap.S().Named("traefik_client")

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	attempt := 0
	_, err := backoff.Retry(ctx, func() (*v1.Overview, error) {
		attempt++
		o, err := c.Overview(ctx)
		if err != nil {
			log.Debugw("target not ready", "attempt", attempt, "error", err)
		}
		return o, err
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(maxWait))
	if err != nil {
		if srvErrors.IsNavigationError(err) {
			return err
		}
		return srvErrors.NewNavigationError(c.baseURL+pathOverview, err)
	}

	log.Infow("target ready", "url", c.baseURL, "attempts", attempt)
	return nil
}
