// Package store keeps the history of end-to-end runs in DuckDB.
//
// Every run of the suite can be recorded: one row per run and one row per
// scenario, so flaky scenarios and regressions can be queried across runs.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│                           RunStore                              │
//	│                   ▼                      ▼                      │
//	│                 runs            scenario_results                │
//	├─────────────────────────────────────────────────────────────────┤
//	│               QueryInterceptor (debug logging)                  │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  runs              │  One row per run, with outcome tallies      │
//	│  scenario_results  │  One row per scenario, keyed by position    │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	NewDB(path)            → ":memory:" for a transient database
//	migrations.Run(ctx, db) → applies sql/NNN_*.sql not yet recorded
//	NewStore(db)           → wraps db in the logging QueryInterceptor
//
// # RunStore
//
// Methods:
//   - Save(ctx, run) → error (replaces an existing run with the same ID)
//   - Get(ctx, id) → *models.RunSummary, ResourceNotFoundError when unknown
//   - List(ctx, opts...) → []RunRecord, most recent first
//   - Results(ctx, opts...) → []ResultRecord, ordered by run and position
//   - Count(ctx, opts...) → number of matching scenario results
//
// Durations are stored as milliseconds in duration_ms.
//
// # List Options
//
// List, Results and Count take squirrel-based ListOption functions:
//
//	failed, err := s.Runs().Results(ctx,
//	    store.ByRunID(id),
//	    store.ByOutcome(models.OutcomeFailed),
//	    store.WithLimit(20),
//	)
//
//	┌──────────────────────┬──────────────────┬──────────────────────────┐
//	│  Option              │  Applies to      │  SQL                     │
//	├──────────────────────┼──────────────────┼──────────────────────────┤
//	│  ByID(id)            │  runs            │  id = ?                  │
//	│  StartedAfter(t)     │  runs            │  started_at > ?          │
//	│  ByRunID(id)         │  scenario rows   │  run_id = ?              │
//	│  ByOutcome(o...)     │  scenario rows   │  outcome IN (...)        │
//	│  ByGroup(g...)       │  scenario rows   │  group_name IN (...)     │
//	│  WithLimit(n)        │  any             │  LIMIT n                 │
//	│  WithOffset(n)       │  any             │  OFFSET n                │
//	└──────────────────────┴──────────────────┴──────────────────────────┘
//
// ByOutcome and ByGroup with no arguments leave the query unchanged.
//
// # Transactions
//
// Store.WithTx hands the callback a Store bound to a single transaction and
// commits only when the callback returns nil.
//
// # QueryInterceptor
//
// All statements go through a QueryInterceptor that logs QueryContext,
// QueryRowContext and ExecContext at debug level under the "store" logger.
package store
