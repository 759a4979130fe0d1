package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	srvErrors "github.com/david-garcia-garcia/traefik-with-plugins/pkg/errors"
)

// RunRecord is a stored run without its scenario results.
type RunRecord struct {
	ID         string
	BaseURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Passed     int
	Failed     int
	Skipped    int
}

// ResultRecord is a stored scenario result.
type ResultRecord struct {
	RunID    string
	Position int
	models.ScenarioResult
}

// RunStore keeps the history of suite runs.
type RunStore struct {
	db QueryInterceptor
}

func NewRunStore(db QueryInterceptor) *RunStore {
	return &RunStore{db: db}
}

// Save stores a run and its scenario results. Saving a run ID again replaces it.
// Callers wanting atomicity use Store.WithTx.
func (s *RunStore) Save(ctx context.Context, run models.RunSummary) error {
	if _, err := s.db.ExecContext(ctx, queryDeleteResults, run.ID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, queryDeleteRun, run.ID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, queryInsertRun,
		run.ID,
		run.BaseURL,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		run.Count(models.OutcomePassed),
		run.Count(models.OutcomeFailed),
		run.Count(models.OutcomeSkipped),
	)
	if err != nil {
		return err
	}

	for i, r := range run.Results {
		_, err := s.db.ExecContext(ctx, queryInsertResult,
			run.ID,
			i,
			r.Group,
			r.Name,
			string(r.Outcome),
			r.ErrorKind,
			r.Detail,
			r.Screenshot,
			r.Duration.Milliseconds(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// List returns runs, most recent first.
func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]RunRecord, error) {
	builder := sq.Select("id", "base_url", "started_at", "finished_at", "passed", "failed", "skipped").
		From("runs").
		OrderBy("started_at DESC")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.BaseURL, &r.StartedAt, &r.FinishedAt, &r.Passed, &r.Failed, &r.Skipped); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Results returns scenario results ordered by run and position.
func (s *RunStore) Results(ctx context.Context, opts ...ListOption) ([]ResultRecord, error) {
	builder := sq.Select(
		"run_id",
		"position",
		"group_name",
		"name",
		"outcome",
		"COALESCE(error_kind, '')",
		"COALESCE(detail, '')",
		"COALESCE(screenshot, '')",
		"duration_ms",
	).From("scenario_results").
		OrderBy("run_id", "position")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ResultRecord
	for rows.Next() {
		var (
			r          ResultRecord
			outcome    string
			durationMS int64
		)
		err := rows.Scan(
			&r.RunID,
			&r.Position,
			&r.Group,
			&r.Name,
			&outcome,
			&r.ErrorKind,
			&r.Detail,
			&r.Screenshot,
			&durationMS,
		)
		if err != nil {
			return nil, err
		}
		r.Outcome = models.Outcome(outcome)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}

// Get returns a run with its results.
func (s *RunStore) Get(ctx context.Context, id string) (*models.RunSummary, error) {
	runs, err := s.List(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, srvErrors.NewResourceNotFoundError("run", id)
	}

	results, err := s.Results(ctx, ByRunID(id))
	if err != nil {
		return nil, err
	}

	summary := &models.RunSummary{
		ID:         runs[0].ID,
		BaseURL:    runs[0].BaseURL,
		StartedAt:  runs[0].StartedAt,
		FinishedAt: runs[0].FinishedAt,
	}
	for _, r := range results {
		summary.Results = append(summary.Results, r.ScenarioResult)
	}
	return summary, nil
}

// Count returns the number of scenario results matching opts.
func (s *RunStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("scenario_results")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// ByID filters runs.
func ByID(id string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"id": id})
	}
}

// StartedAfter filters runs.
func StartedAfter(t time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Gt{"started_at": t.UTC()})
	}
}

// ByRunID filters scenario results.
func ByRunID(id string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"run_id": id})
	}
}

// ByOutcome filters scenario results.
func ByOutcome(outcomes ...models.Outcome) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(outcomes) == 0 {
			return b
		}
		values := make([]string, 0, len(outcomes))
		for _, o := range outcomes {
			values = append(values, string(o))
		}
		return b.Where(sq.Eq{"outcome": values})
	}
}

// ByGroup filters scenario results.
func ByGroup(groups ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(groups) == 0 {
			return b
		}
		return b.Where(sq.Eq{"group_name": groups})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}
