package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"ecotrack/internal/services/build/domain"
)

// progressPrinter writes one line per finished project
func progressPrinter(w io.Writer) func(domain.ProjectReport) {
	return func(pr domain.ProjectReport) {
		line := fmt.Sprintf("%-15s %s", pr.Status, pr.URL)
		if len(pr.FailingRoots) > 0 {
			line += " [failing: " + strings.Join(pr.FailingRoots, ", ") + "]"
		}
		if len(pr.Regressions) > 0 {
			line += " [regressed: " + strings.Join(pr.Regressions, ", ") + "]"
		}
		if len(pr.Fixed) > 0 {
			line += " [fixed: " + strings.Join(pr.Fixed, ", ") + "]"
		}
		if pr.Elapsed > 0 {
			line += fmt.Sprintf(" (%s)", pr.Elapsed.Round(100*time.Millisecond))
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

// printSummary writes the status totals of a run
func printSummary(w io.Writer, r domain.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "compiler\t%s\n", r.CompilerVersion)
	for _, s := range []domain.Status{
		domain.StatusPass,
		domain.StatusMigrated,
		domain.StatusFail,
		domain.StatusCheckoutFailed,
		domain.StatusUnchanged,
		domain.StatusSkipped,
	} {
		if n := r.Count(s); n > 0 {
			_, _ = fmt.Fprintf(tw, "%s\t%d\n", s, n)
		}
	}
	_, _ = fmt.Fprintf(tw, "recorded\t%d\n", r.Committed)
	_ = tw.Flush()
}
