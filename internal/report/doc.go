// Package report renders a finished run.
//
//	┌──────────────────┬────────────────────────┬──────────────────────────────┐
//	│  Output          │  Library               │  Entry point                 │
//	├──────────────────┼────────────────────────┼──────────────────────────────┤
//	│  console         │  fatih/color           │  WriteSummary(w, run)        │
//	│  textfile        │  client_golang         │  Metrics.WriteTextfile(path) │
//	│  workbook        │  excelize              │  WriteWorkbook(path, run)    │
//	└──────────────────┴────────────────────────┴──────────────────────────────┘
//
// Textfile metrics (for the node_exporter textfile collector):
//
//	dashboard_e2e_scenarios_total{group,outcome}
//	dashboard_e2e_scenario_duration_seconds{group}
//	dashboard_e2e_last_run_timestamp_seconds
//	dashboard_e2e_last_run_success
//
// Skipped scenarios are counted but not observed in the duration histogram.
package report
