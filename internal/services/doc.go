// Package services drives scenarios against the dashboard and publishes their outcome.
//
// # Service Dependency Graph
//
//	test/e2e (Ginkgo scenarios)
//	    │
//	    ▼
//	Services Layer
//	    ├── SessionFactory ──► browser.Page, Navigator, Locator, Filter, Catalog
//	    │       └── Session (one per scenario)
//	    ├── Preflight ───────► Scheduler, traefik.Client, Catalog
//	    └── Recorder ────────► report (console, textfile, workbook), Store
//
// # SessionFactory and Session
//
// The factory owns the single browsing context. New(ctx, group, scenario):
//
//	filter.Reset()                 → armed, default suppression rules
//	ctx = WithCancelCause(parent)  → cancelled when an uncaught error propagates
//	ctx = WithTimeout(ctx, scenarioTimeout)
//	page.SetListener(session)      → exceptions and API responses reach this session
//
// Starting a session closes the previous one, so a late event from an earlier
// scenario is never charged to the current one.
//
// Session operations:
//
//	┌──────────────────────┬───────────────────────────────────────────────────┐
//	│  Operation           │  Behavior                                         │
//	├──────────────────────┼───────────────────────────────────────────────────┤
//	│  Visit(target)       │  Goto + settle, then ExpectClean                  │
//	│  Open(query)         │  Locator.Open (fallback or strict), ExpectClean   │
//	│  Snapshot()          │  URL, body text and child count, read live        │
//	│  ExpectEntities(k)   │  every expected ID of kind k is rendered          │
//	│  ExpectAbsent(text)  │  text is not rendered                             │
//	│  ExpectClean()       │  no forbidden pattern is rendered                 │
//	│  ExpectChildren()    │  body has at least one child                      │
//	│  InjectError(msg)    │  throws in the page, waits for the filter verdict │
//	│  APICalls()          │  /api/ responses seen during the scenario         │
//	│  Screenshot(name)    │  <artifacts>/<group>_<name>.png                   │
//	│  Err()               │  propagated page error or exhausted budget        │
//	└──────────────────────┴───────────────────────────────────────────────────┘
//
// Expect* poll fresh snapshots every pollInterval until the check holds or the
// command timeout elapses (constant backoff). Negative checks pass as soon as the
// text is gone. An UnhandledPageError recorded by the filter takes precedence over
// any other error and stops waiting immediately.
//
// With video enabled, a frame is written after every page load through the
// navigator's visit hook.
//
// # Preflight
//
// Run lists routers, middlewares and services through the scheduler's worker
// pool and reports, per kind, the expected identifiers the API does not return
// and every entity whose error list is non-empty. The browser is not involved.
//
// # Recorder
//
// Flush(ctx, run) writes the console summary, then the Prometheus textfile, the
// XLSX workbook and the DuckDB ledger when each is configured. Sink failures are
// joined; one failing sink does not skip the others.
package services
