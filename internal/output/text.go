package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/nethalo/indexwright/internal/core"
)

// TextRenderer renders human-facing output via lipgloss, in the teacher's
// boxed-summary style.
type TextRenderer struct {
	w io.Writer
}

func (r *TextRenderer) Render(result *core.AnalyseResult) {
	fmt.Fprintln(r.w, titleStyle.Render("Plan summary"))
	fmt.Fprintf(r.w, "%s %.2f   %s %d   %s %s\n",
		labelStyle.Render("total cost:"), result.PlanMetrics.TotalCost,
		labelStyle.Render("actual rows:"), result.PlanMetrics.ActualRows,
		labelStyle.Render("scans:"), fmt.Sprint(len(result.Scans)))

	for _, s := range result.Scans {
		fmt.Fprintf(r.w, "  seq scan %s: %d rows scanned, %d removed by filter, cost %.2f\n",
			s.Table, s.RowsScanned, s.RowsRemovedFilter, s.TotalCost)
	}

	if len(result.Proposals) == 0 {
		fmt.Fprintln(r.w, labelStyle.Render("no index proposals"))
		return
	}

	fmt.Fprintln(r.w, titleStyle.Render("\nProposals"))
	for _, p := range result.Proposals {
		var body strings.Builder
		fmt.Fprintf(&body, "%s\n", ddlStyle.Render(p.DDL))
		fmt.Fprintf(&body, "%s %.0f%%\n", labelStyle.Render("predicted improvement:"), p.Improvement*100)
		fmt.Fprintf(&body, "%s %s\n", labelStyle.Render("rationale:"), p.Rationale)
		if p.Warning != "" {
			fmt.Fprintf(&body, "%s\n", warnStyle.Render("warning: "+p.Warning))
		}
		fmt.Fprintln(r.w, boxStyle.Render(body.String()))
	}
}
