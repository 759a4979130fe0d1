package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// WriteSummary prints one line per scenario followed by the aggregate verdict.
func WriteSummary(w io.Writer, run models.RunSummary) {
	fmt.Fprintf(w, "\nDashboard run %s against %s\n\n", run.ID, run.BaseURL)

	group := ""
	for _, r := range run.Results {
		if r.Group != group {
			group = r.Group
			fmt.Fprintf(w, "  %s\n", group)
		}
		fmt.Fprintf(w, "    %s %s %s\n", badge(r.Outcome), r.Name, dimColor.Sprintf("(%s)", r.Duration.Round(time.Millisecond)))
		if r.Outcome != models.OutcomeFailed {
			continue
		}
		fmt.Fprintf(w, "        %s: %s\n", r.ErrorKind, r.Detail)
		if r.Screenshot != "" {
			fmt.Fprintf(w, "        screenshot: %s\n", r.Screenshot)
		}
	}

	passed := run.Count(models.OutcomePassed)
	failed := run.Count(models.OutcomeFailed)
	skipped := run.Count(models.OutcomeSkipped)

	fmt.Fprintln(w)
	verdict := passColor.Sprint("PASSED")
	if !run.Passed() {
		verdict = failColor.Sprint("FAILED")
	}
	fmt.Fprintf(w, "%s  %d passed, %d failed, %d skipped in %s\n",
		verdict, passed, failed, skipped, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
}

func badge(o models.Outcome) string {
	switch o {
	case models.OutcomePassed:
		return passColor.Sprint("✓")
	case models.OutcomeFailed:
		return failColor.Sprint("✗")
	default:
		return skipColor.Sprint("-")
	}
}
