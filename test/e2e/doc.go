/*
Package main is the end-to-end suite for a Traefik dashboard built with embedded plugins.

# Package Structure

	test/e2e/
	├── main.go          Entry point: cobra flags, viper config, TargetManager setup, Ginkgo runner
	├── suite.go         BeforeSuite/AfterSuite (target, browser, session factory), scenario hooks
	├── tests.go         Ginkgo scenarios grouped by dashboard view
	├── results.go       ReportAfterSuite: Ginkgo report → RunSummary → Recorder
	├── doc.go           This file
	└── infra/           Target System lifecycle
	    ├── infra.go     TargetManager interface
	    ├── external.go  ExternalTarget (already running, waits for /api/overview)
	    └── stub.go      StubTarget (in-process fake dashboard on a loopback port)

# TargetManager

	type TargetManager interface {
	    Start(ctx) / Stop(ctx)
	    BaseURL()
	    Name()
	}

Two implementations, selected with --target:
  - external (default): the dashboard under test runs elsewhere, --base-url points at it.
  - stub: the catalog-driven fake from internal/handlers, with the fault switches of
    the stub section of the configuration.

# Scenario Groups

	┌─────────────────────┬──────────────┬──────────────────────────────────────────┐
	│  Group              │  Label       │  Checks                                  │
	├─────────────────────┼──────────────┼──────────────────────────────────────────┤
	│  Dashboard Loading  │  dashboard   │  no placeholder, body has children       │
	│  Middlewares        │  middlewares │  four plugin middlewares, waf details    │
	│  Routers            │  routers     │  five routers                            │
	│  Services           │  services    │  five services                           │
	│  Error Detection    │  errors      │  forbidden patterns, failed API calls    │
	│  Introspection API  │  api         │  preflight over the API, version         │
	│  Idempotence        │  idempotence │  same entities on repeated visits        │
	│  Harness self-check │  self-check  │  filter and locator behave as designed   │
	└─────────────────────┴──────────────┴──────────────────────────────────────────┘

The top-level container is Ordered and ContinueOnFailure: scenarios run in the
declared order and a failure does not stop the following ones. There are no retries.

Each scenario gets a fresh session (filter re-armed, API calls cleared). A failed
scenario gets a screenshot under <artifactsFolder>/<run-id>/ when
screenshotOnRunFailure is set.

# Running

	go run ./test/e2e --base-url http://localhost:8080
	go run ./test/e2e --target stub --stub-unknown-plugin
	DASHBOARD_E2E_LABEL_FILTER='!self-check' go run ./test/e2e

Reports: --report-junit, --report-textfile, --report-workbook, --report-results-db.
The process exits with status 1 when any scenario fails.
*/
package main
