package filter

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

type Verdict string

const (
	VerdictSuppress  Verdict = "suppress"
	VerdictPropagate Verdict = "propagate"
)

func ParseVerdict(s string) (Verdict, error) {
	switch s {
	case "suppress":
		return VerdictSuppress, nil
	case "propagate":
		return VerdictPropagate, nil
	default:
		return "", fmt.Errorf("invalid verdict: %s", s)
	}
}

// Rule matches an uncaught error whose message contains Contains.
type Rule struct {
	Name     string
	Contains string
	Verdict  Verdict
}

func (r Rule) Matches(message string) bool {
	return r.Contains != "" && strings.Contains(message, r.Contains)
}

type State string

const (
	StateArmed     State = "armed"
	StateTriggered State = "triggered"
)

// HubButtonRule suppresses the custom element registration error raised by the
// Traefik Hub button widget embedded in the dashboard.
var HubButtonRule = Rule{
	Name:     "hub-button-app",
	Contains: "hub-button-app",
	Verdict:  VerdictSuppress,
}

func DefaultRules() []Rule {
	return []Rule{HubButtonRule}
}

// Filter decides, for each uncaught page error, whether the running scenario goes on.
// One Filter belongs to one browsing context; Reset re-arms it for the next scenario.
type Filter struct {
	defaults   []Rule
	rules      []Rule
	state      State
	err        error
	suppressed []string
	onTrigger  func(error)
	mu         sync.Mutex
}

func New(rules ...Rule) *Filter {
	f := &Filter{defaults: append([]Rule(nil), rules...)}
	f.Reset()
	return f
}

// Reset restores the default rule list and the armed state.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules = append([]Rule(nil), f.defaults...)
	f.state = StateArmed
	f.err = nil
	f.suppressed = nil
}

// Add appends a rule for the current scenario only. It is dropped on Reset.
func (f *Filter) Add(r Rule) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, r)
}

// OnTrigger registers fn to be called, outside the lock, the first time an error propagates.
func (f *Filter) OnTrigger(fn func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onTrigger = fn
}

// Evaluate returns the verdict of the first matching rule, or VerdictPropagate.
func (f *Filter) Evaluate(message string) (Verdict, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evaluate(message)
}

func (f *Filter) evaluate(message string) (Verdict, string) {
	for _, r := range f.rules {
		if r.Matches(message) {
			return r.Verdict, r.Name
		}
	}
	return VerdictPropagate, ""
}

// Handle processes an uncaught error. It returns nil when the error is suppressed,
// otherwise an UnhandledPageError which is also kept as the scenario error.
func (f *Filter) Handle(message string) error {
	f.mu.Lock()
	verdict, rule := f.evaluate(message)
	if verdict == VerdictSuppress {
		f.suppressed = append(f.suppressed, message)
		f.mu.Unlock()
		zap.S().Named("exception_filter").Debugw("suppressed uncaught page error", "rule", rule, "message", message)
		return nil
	}

	err := srvErrors.NewUnhandledPageError(message)
	first := f.state == StateArmed
	if first {
		f.state = StateTriggered
		f.err = err
	}
	cb := f.onTrigger
	f.mu.Unlock()

	zap.S().Named("exception_filter").Warnw("uncaught page error", "rule", rule, "message", message)
	if first && cb != nil {
		cb(err)
	}
	return err
}

func (f *Filter) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the first propagated error since the last Reset.
func (f *Filter) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Filter) Suppressed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.suppressed...)
}

func (f *Filter) Rules() []Rule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Rule(nil), f.rules...)
}
