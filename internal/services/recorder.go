package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/report"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/store"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

type RecorderOption func(*Recorder)

func WithOutput(w io.Writer) RecorderOption {
	return func(r *Recorder) { r.out = w }
}

func WithStore(s *store.Store) RecorderOption {
	return func(r *Recorder) { r.store = s }
}

func WithTextfile(path string) RecorderOption {
	return func(r *Recorder) { r.textfile = path }
}

func WithWorkbook(path string) RecorderOption {
	return func(r *Recorder) { r.workbook = path }
}

// Recorder publishes a finished run to every configured sink.
type Recorder struct {
	out      io.Writer
	store    *store.Store
	textfile string
	workbook string
}

func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{out: os.Stdout}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Flush writes the console summary, then the textfile, workbook and ledger when
// configured. A failing sink does not stop the others.
func (r *Recorder) Flush(ctx context.Context, run models.RunSummary) error {
	log := zap.S().Named("recorder")

	if r.out != nil {
		report.WriteSummary(r.out, run)
	}

	var errs []error

	if r.textfile != "" {
		m := report.NewMetrics()
		m.Observe(run)
		if err := m.WriteTextfile(r.textfile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write textfile %s: %w", r.textfile, err))
		} else {
			log.Infow("textfile written", "path", r.textfile)
		}
	}

	if r.workbook != "" {
		if err := report.WriteWorkbook(r.workbook, run); err != nil {
			errs = append(errs, fmt.Errorf("failed to write workbook %s: %w", r.workbook, err))
		} else {
			log.Infow("workbook written", "path", r.workbook)
		}
	}

	if r.store != nil {
		err := r.store.WithTx(ctx, func(tx *store.Store) error {
			return tx.Runs().Save(ctx, run)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to record run %s: %w", run.ID, err))
		} else {
			log.Infow("run recorded", "run_id", run.ID, "results", len(run.Results))
		}
	}

	return errors.Join(errs...)
}
