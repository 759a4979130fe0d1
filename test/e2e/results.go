package main

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	"github.com/onsi/ginkgo/v2/types"
	"go.uber.org/zap"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/services"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/store"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/store/migrations"
	"github.com/david-garcia-garcia/traefik-with-plugins/internal/util"
)

const maxDetail = 500

var _ = ReportAfterSuite("run summary", func(r Report) {
	log := zap.S().Named("e2e")
	summary := summarize(r)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := []services.RecorderOption{
		services.WithOutput(GinkgoWriter),
		services.WithTextfile(cfg.Report.Textfile),
		services.WithWorkbook(cfg.Report.Workbook),
	}
	if cfg.Report.ResultsDB != "" {
		db, err := store.NewDB(cfg.Report.ResultsDB)
		if err != nil {
			log.Errorw("failed to open results database", "path", cfg.Report.ResultsDB, "error", err)
		} else {
			defer db.Close()
			if err := migrations.Run(ctx, db); err != nil {
				log.Errorw("failed to migrate results database", "error", err)
			} else {
				opts = append(opts, services.WithStore(store.NewStore(db)))
			}
		}
	}

	if err := services.NewRecorder(opts...).Flush(ctx, summary); err != nil {
		log.Errorw("failed to publish run", "run_id", summary.ID, "error", err)
	}
})

// summarize turns the Ginkgo report into a RunSummary, one result per It.
func summarize(r Report) models.RunSummary {
	summary := models.RunSummary{
		ID:         runID,
		StartedAt:  r.StartTime,
		FinishedAt: r.EndTime,
	}
	if targetManager != nil {
		summary.BaseURL = targetManager.BaseURL()
	}

	for _, spec := range r.SpecReports {
		if spec.LeafNodeType != types.NodeTypeIt {
			continue
		}
		res := models.ScenarioResult{
			Group:    groupOf(spec.ContainerHierarchyTexts),
			Name:     spec.LeafNodeText,
			Duration: spec.RunTime,
		}
		switch spec.State {
		case types.SpecStatePassed:
			res.Outcome = models.OutcomePassed
		case types.SpecStateSkipped, types.SpecStatePending:
			res.Outcome = models.OutcomeSkipped
		default:
			res.Outcome = models.OutcomeFailed
			res.ErrorKind = spec.State.String()
			res.Detail = util.Truncate(spec.Failure.Message, maxDetail)
		}
		for _, entry := range spec.ReportEntries {
			switch entry.Name {
			case entryErrorKind:
				res.ErrorKind = entry.StringRepresentation()
			case entryScreenshot:
				res.Screenshot = entry.StringRepresentation()
			}
		}
		summary.Results = append(summary.Results, res)
	}
	return summary
}
