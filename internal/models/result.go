package models

import "time"

type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// APICall is a response observed by the browser for a Target System API request.
type APICall struct {
	Method string
	URL    string
	Status int
	Failed bool
	Reason string
	At     time.Time
}

// ScenarioResult is the verdict of one scenario.
type ScenarioResult struct {
	Group      string
	Name       string
	Outcome    Outcome
	ErrorKind  string
	Detail     string
	Screenshot string
	Duration   time.Duration
}

// RunSummary aggregates the scenario verdicts of one suite run.
type RunSummary struct {
	ID         string
	BaseURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []ScenarioResult
}

func (r RunSummary) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Passed reports the aggregate verdict: true when no scenario failed.
func (r RunSummary) Passed() bool {
	return r.Count(OutcomeFailed) == 0
}
