package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Store provides access to all storage repositories.
type Store struct {
	db   *sql.DB
	runs *RunStore
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:   db,
		runs: NewRunStore(NewLoggingInterceptor(db)),
	}
}

func (s *Store) Runs() *RunStore {
	return s.runs
}

// WithTx runs fn with stores bound to one transaction, committed when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txStore := &Store{db: s.db, runs: NewRunStore(NewLoggingInterceptor(tx))}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}
