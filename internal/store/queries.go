package store

// Run queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, base_url, started_at, finished_at, passed, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryInsertResult = `
		INSERT INTO scenario_results
			(run_id, position, group_name, name, outcome, error_kind, detail, screenshot, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryDeleteResults = `DELETE FROM scenario_results WHERE run_id = ?`

	queryDeleteRun = `DELETE FROM runs WHERE id = ?`
)
