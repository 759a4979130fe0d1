package infra

import "context"

// TargetManager abstracts the Target System lifecycle for the e2e suite.
// External: the system is already running, Start only waits for it.
// Stub: the fake dashboard is served in-process from the catalog.
type TargetManager interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// BaseURL is valid after Start.
	BaseURL() string
	Name() string
}
