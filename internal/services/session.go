package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/browser"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/catalog"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/filter"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/locator"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/navigator"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/util"
)

const (
	DefaultScenarioTimeout = 60 * time.Second
	DefaultCommandTimeout  = 10 * time.Second
	DefaultPollInterval    = 250 * time.Millisecond

	apiPathMarker = "/api/"
)

var errNoChildren = errors.New("dashboard root rendered no child elements")

type FactoryOption func(*SessionFactory)

func WithScenarioTimeout(d time.Duration) FactoryOption {
	return func(f *SessionFactory) { f.scenarioTimeout = d }
}

func WithCommandTimeout(d time.Duration) FactoryOption {
	return func(f *SessionFactory) { f.commandTimeout = d }
}

func WithPollInterval(d time.Duration) FactoryOption {
	return func(f *SessionFactory) { f.pollInterval = d }
}

// WithArtifactsDir sets where screenshots and filmstrip frames are written.
func WithArtifactsDir(dir string) FactoryOption {
	return func(f *SessionFactory) { f.artifactsDir = dir }
}

// WithVideo captures a frame after every page load.
func WithVideo(enabled bool) FactoryOption {
	return func(f *SessionFactory) { f.video = enabled }
}

func WithNavigatorOptions(opts ...navigator.Option) FactoryOption {
	return func(f *SessionFactory) { f.navOpts = append(f.navOpts, opts...) }
}

func WithLocatorOptions(opts ...locator.Option) FactoryOption {
	return func(f *SessionFactory) { f.locOpts = append(f.locOpts, opts...) }
}

// SessionFactory owns the browsing context shared by all scenarios and hands out
// one Session per scenario. Sessions are sequential: New closes the previous one.
type SessionFactory struct {
	page    browser.Page
	catalog *catalog.Catalog
	filter  *filter.Filter
	nav     *navigator.Navigator
	loc     *locator.Locator

	scenarioTimeout time.Duration
	commandTimeout  time.Duration
	pollInterval    time.Duration
	artifactsDir    string
	video           bool
	navOpts         []navigator.Option
	locOpts         []locator.Option

	mu      sync.Mutex
	current *Session
}

func NewSessionFactory(page browser.Page, baseURL string, cat *catalog.Catalog, opts ...FactoryOption) *SessionFactory {
	f := &SessionFactory{
		page:            page,
		catalog:         cat,
		filter:          filter.New(cat.ExceptionRules()...),
		scenarioTimeout: DefaultScenarioTimeout,
		commandTimeout:  DefaultCommandTimeout,
		pollInterval:    DefaultPollInterval,
		artifactsDir:    "artifacts",
	}
	for _, o := range opts {
		o(f)
	}

	f.nav = navigator.New(page, baseURL, append(f.navOpts, navigator.WithVisitHook(f.visited))...)
	f.loc = locator.New(page, f.nav, f.locOpts...)
	f.filter.OnTrigger(f.triggered)
	return f
}

func (f *SessionFactory) Navigator() *navigator.Navigator {
	return f.nav
}

func (f *SessionFactory) Catalog() *catalog.Catalog {
	return f.catalog
}

// New starts a scenario: the exception filter is re-armed, recorded API calls are
// dropped and the page reports to the new session.
func (f *SessionFactory) New(ctx context.Context, group, scenario string) *Session {
	f.mu.Lock()
	prev := f.current
	f.mu.Unlock()
	if prev != nil {
		if err := prev.Close(); err != nil {
			zap.S().Named("session").Warnw("previous scenario closed with an error", "scenario", prev.name, "error", err)
		}
	}

	f.filter.Reset()

	cctx, cancelCause := context.WithCancelCause(ctx)
	tctx, cancelTimeout := context.WithTimeout(cctx, f.scenarioTimeout)

	s := &Session{
		factory: f,
		group:   group,
		name:    scenario,
		ctx:     tctx,
		cancel: func(err error) {
			cancelCause(err)
			cancelTimeout()
		},
		started: time.Now(),
	}

	f.mu.Lock()
	f.current = s
	f.mu.Unlock()

	f.page.SetListener(s)
	zap.S().Named("session").Debugw("scenario started", "group", group, "scenario", scenario)
	return s
}

func (f *SessionFactory) triggered(err error) {
	f.mu.Lock()
	s := f.current
	f.mu.Unlock()
	if s != nil {
		s.cancel(err)
	}
}

func (f *SessionFactory) visited(ctx context.Context, url string) {
	if !f.video {
		return
	}
	f.mu.Lock()
	s := f.current
	f.mu.Unlock()
	if s == nil {
		return
	}
	if _, err := s.captureFrame(ctx); err != nil {
		zap.S().Named("session").Warnw("failed to capture frame", "url", url, "error", err)
	}
}

// Session is the state of one running scenario.
type Session struct {
	factory *SessionFactory
	group   string
	name    string
	ctx     context.Context
	cancel  func(error)
	started time.Time

	mu       sync.Mutex
	calls    []models.APICall
	frames   int
	closed   bool
	closeErr error
}

// Context is cancelled when the scenario budget runs out or an uncaught page error propagates.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}

// OnException implements browser.Listener.
func (s *Session) OnException(message string) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	_ = s.factory.filter.Handle(message)
}

// OnResponse implements browser.Listener. Only introspection API calls are kept.
func (s *Session) OnResponse(call models.APICall) {
	if !strings.Contains(call.URL, apiPathMarker) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.calls = append(s.calls, call)
	}
}

// Visit loads target and checks the rendered view is free of forbidden content.
func (s *Session) Visit(target models.NavigationTarget) error {
	if err := s.factory.nav.Goto(s.ctx, target); err != nil {
		return s.check(err)
	}
	return s.ExpectClean()
}

// Open activates the control described by q and checks the resulting view.
func (s *Session) Open(q locator.Query) (locator.Resolution, error) {
	res, err := s.factory.loc.Open(s.ctx, q)
	if err != nil {
		return res, s.check(err)
	}
	return res, s.ExpectClean()
}

// Snapshot reads the current page state.
func (s *Session) Snapshot() (models.Snapshot, error) {
	return s.snapshot(s.ctx)
}

func (s *Session) snapshot(ctx context.Context) (models.Snapshot, error) {
	page := s.factory.page
	url, err := page.Location(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	text, err := page.BodyText(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	children, err := page.BodyChildCount(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{URL: url, Text: text, Children: children, TakenAt: time.Now()}, nil
}

// ExpectEntities waits until every expected identifier of kind is rendered.
func (s *Session) ExpectEntities(kind models.EntityKind) error {
	set := s.factory.catalog.Expected(kind)
	return s.poll(func(snap models.Snapshot) error {
		return catalog.AssertContainsAll(snap, set)
	})
}

// ExpectAbsent waits until text is no longer rendered.
func (s *Session) ExpectAbsent(text string) error {
	patterns := []models.ForbiddenPattern{{Text: text}}
	return s.poll(func(snap models.Snapshot) error {
		return catalog.AssertContainsNone(snap, patterns)
	})
}

// ExpectClean waits until none of the catalog's forbidden patterns is rendered.
func (s *Session) ExpectClean() error {
	patterns := s.factory.catalog.Forbidden()
	return s.poll(func(snap models.Snapshot) error {
		return catalog.AssertContainsNone(snap, patterns)
	})
}

// ExpectChildren waits until the body has at least one child element.
func (s *Session) ExpectChildren() error {
	return s.poll(func(snap models.Snapshot) error {
		if snap.Children < 1 {
			return errNoChildren
		}
		return nil
	})
}

// poll retries check on fresh snapshots every pollInterval until it holds or the
// command timeout elapses. A propagated page error stops the wait at once.
func (s *Session) poll(check func(models.Snapshot) error) error {
	op := func() (struct{}, error) {
		if err := s.factory.filter.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		snap, err := s.snapshot(s.ctx)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, check(snap)
	}

	_, err := backoff.Retry(s.ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.factory.pollInterval)),
		backoff.WithMaxElapsedTime(s.factory.commandTimeout),
	)
	return s.check(err)
}

// check gives a propagated page error precedence over err.
func (s *Session) check(err error) error {
	if ferr := s.factory.filter.Err(); ferr != nil {
		return ferr
	}
	if err != nil && s.ctx.Err() != nil {
		if cause := context.Cause(s.ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			return fmt.Errorf("scenario %q: %w", s.name, cause)
		}
	}
	return err
}

// InjectError raises message as an uncaught page error and waits until the
// exception filter has ruled on it. It returns the filter's error when the
// message propagates.
func (s *Session) InjectError(message string) error {
	f := s.factory.filter
	before := len(f.Suppressed())

	if err := s.factory.page.InjectError(s.ctx, message); err != nil {
		return s.check(err)
	}

	op := func() (struct{}, error) {
		if f.Err() != nil || len(f.Suppressed()) > before {
			return struct{}{}, nil
		}
		return struct{}{}, fmt.Errorf("injected error %q was not reported by the page", message)
	}
	_, err := backoff.Retry(context.WithoutCancel(s.ctx), op,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.factory.pollInterval)),
		backoff.WithMaxElapsedTime(s.factory.commandTimeout),
	)
	if ferr := f.Err(); ferr != nil {
		return ferr
	}
	return err
}

// AllowError suppresses uncaught errors containing text until the next scenario.
func (s *Session) AllowError(name, text string) {
	s.factory.filter.Add(filter.Rule{Name: name, Contains: text, Verdict: filter.VerdictSuppress})
}

func (s *Session) Suppressed() []string {
	return s.factory.filter.Suppressed()
}

// APICalls returns the introspection API responses observed during the scenario.
func (s *Session) APICalls() []models.APICall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.APICall(nil), s.calls...)
}

func (s *Session) FailedCalls() []models.APICall {
	var failed []models.APICall
	for _, c := range s.APICalls() {
		if c.Failed {
			failed = append(failed, c)
		}
	}
	return failed
}

// Screenshot writes a PNG of the page to <artifacts>/<group>_<name>.png and returns its path.
// It works after the scenario context is done.
func (s *Session) Screenshot(name string) (string, error) {
	file := util.SanitizeFileName(s.group) + "_" + util.SanitizeFileName(name) + ".png"
	return s.writeImage(context.WithoutCancel(s.ctx), file)
}

func (s *Session) captureFrame(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.frames++
	n := s.frames
	s.mu.Unlock()
	file := fmt.Sprintf("%s_%s_frame_%03d.png", util.SanitizeFileName(s.group), util.SanitizeFileName(s.name), n)
	return s.writeImage(ctx, file)
}

func (s *Session) writeImage(ctx context.Context, file string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.factory.commandTimeout)
	defer cancel()

	data, err := s.factory.page.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.MkdirAll(s.factory.artifactsDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.factory.artifactsDir, file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Err returns the error that ended the scenario early, if any.
func (s *Session) Err() error {
	if err := s.factory.filter.Err(); err != nil {
		return err
	}
	if errors.Is(s.ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("scenario %q exceeded its time budget: %w", s.name, context.DeadlineExceeded)
	}
	return nil
}

// TakeErr returns the propagated page error, if any, and re-arms the exception
// filter with its default rules. Scenarios that raise an error on purpose use it
// so Close does not report that error again.
func (s *Session) TakeErr() error {
	err := s.factory.filter.Err()
	if err != nil {
		s.factory.filter.Reset()
	}
	return err
}

// Close ends the scenario and returns what Err reported at that moment, so a
// page error raised after the last assertion still fails the scenario. Later
// calls return the same error.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		err := s.closeErr
		s.mu.Unlock()
		return err
	}
	s.closed = true
	s.closeErr = s.Err()
	err := s.closeErr
	s.mu.Unlock()

	s.cancel(context.Canceled)

	f := s.factory
	f.mu.Lock()
	if f.current == s {
		f.current = nil
	}
	f.mu.Unlock()

	zap.S().Named("session").Debugw("scenario finished",
		"group", s.group,
		"scenario", s.name,
		"duration", s.Elapsed(),
		"api_calls", len(s.APICalls()),
		"suppressed", len(f.filter.Suppressed()),
		"error", err,
	)
	return err
}
