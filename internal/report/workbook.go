package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

const (
	SummarySheet   = "Summary"
	ScenariosSheet = "Scenarios"
)

var scenarioHeader = []any{"Group", "Scenario", "Outcome", "Error kind", "Detail", "Screenshot", "Duration (s)"}

// WriteWorkbook exports run to an XLSX file with a summary sheet and one row per scenario.
func WriteWorkbook(path string, run models.RunSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ScenariosSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	summary := [][]any{
		{"Run", run.ID},
		{"Base URL", run.BaseURL},
		{"Started", run.StartedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Finished", run.FinishedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Passed", run.Count(models.OutcomePassed)},
		{"Failed", run.Count(models.OutcomeFailed)},
		{"Skipped", run.Count(models.OutcomeSkipped)},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}

	if err := f.SetSheetRow(ScenariosSheet, "A1", &scenarioHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(ScenariosSheet, "A1", "G1", bold); err != nil {
		return err
	}
	for i, r := range run.Results {
		row := []any{r.Group, r.Name, string(r.Outcome), r.ErrorKind, r.Detail, r.Screenshot, r.Duration.Seconds()}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ScenariosSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ScenariosSheet, "A", "B", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(ScenariosSheet, "E", "E", 60); err != nil {
		return err
	}

	return f.SaveAs(path)
}
