// Package config defines the configuration of the dashboard verification harness.
//
// Configuration is organized into a flat set of run settings plus three sections
// (Browser, Report, Stub). Defaults come from `default` struct tags applied with
// creasty/defaults; viper merges a YAML file, the environment and the flags on top.
//
// # Configuration Structure
//
//	Configuration
//	├── run settings   - Target System address, timeouts, delays, artifacts
//	├── Browser        - browser allocation and viewport
//	├── Report         - optional report outputs
//	├── Stub           - in-process Target System and its fault switches
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Run Settings
//
//	┌────────────────────────┬───────────────────────┬──────────────────────────────────────┐
//	│ Field                  │ Default               │ Description                          │
//	├────────────────────────┼───────────────────────┼──────────────────────────────────────┤
//	│ BaseURL                │ http://localhost:8080 │ Target System base URL               │
//	│ DashboardPath          │ /dashboard/           │ Dashboard path on the Target System  │
//	│ DefaultCommandTimeout  │ 10s                   │ Maximum wait for an assertion        │
//	│ RequestTimeout         │ 10s                   │ Introspection API request timeout    │
//	│ ResponseTimeout        │ 10s                   │ Maximum wait for a page load         │
//	│ Video                  │ false                 │ Filmstrip frame after each load      │
//	│ ScreenshotOnRunFailure │ true                  │ Screenshot failed scenarios          │
//	│ ScenarioTimeout        │ 60s                   │ Time budget of one scenario          │
//	│ SettleDelay            │ 2s                    │ Wait after each page load            │
//	│ InteractionDelay       │ 500ms                 │ Wait after each click                │
//	│ PollInterval           │ 250ms                 │ Interval between assertion attempts  │
//	│ ReadyTimeout           │ 60s                   │ Wait for the API before the suite    │
//	│ Target                 │ external              │ "external" or "stub"                 │
//	│ CatalogFile            │ ""                    │ YAML catalog override                │
//	│ ArtifactsFolder        │ artifacts             │ Screenshots and report folder        │
//	│ LabelFilter            │ ""                    │ Ginkgo label filter                  │
//	│ Workers                │ 3                     │ Concurrent introspection fetches     │
//	└────────────────────────┴───────────────────────┴──────────────────────────────────────┘
//
// # Browser Configuration
//
//	┌───────────┬─────────┬──────────────────────────────────────────────┐
//	│ Field     │ Default │ Description                                  │
//	├───────────┼─────────┼──────────────────────────────────────────────┤
//	│ RemoteURL │ ""      │ DevTools websocket of a running browser      │
//	│ ExecPath  │ ""      │ Browser binary started when RemoteURL unset  │
//	│ Headless  │ true    │ Headless mode of the started browser         │
//	│ Width     │ 1280    │ Viewport width                               │
//	│ Height    │ 720     │ Viewport height                              │
//	└───────────┴─────────┴──────────────────────────────────────────────┘
//
// # Report Configuration
//
// Every output is optional and disabled when its path is empty:
//   - JUnit: JUnit XML written by Ginkgo
//   - Textfile: Prometheus textfile collector file
//   - Workbook: XLSX workbook with one row per scenario
//   - ResultsDB: DuckDB file accumulating runs over time
//
// # Sources and Precedence
//
//	defaults  <  --config file  <  environment  <  flags
//
// Environment variables use the DASHBOARD_E2E prefix. Flag names are accepted in
// their upper snake case form (DASHBOARD_E2E_BASE_URL) and configuration keys in
// their flattened form (DASHBOARD_E2E_BROWSER_REMOTEURL).
//
// # Debug Logging
//
// Every section has a DebugMap() keyed like the configuration file. Durations are
// rendered as strings and the query of browser.remoteUrl is redacted:
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
