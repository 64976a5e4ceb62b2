package output

import (
	"encoding/json"
	"io"

	"github.com/nethalo/indexwright/internal/core"
)

// JSONRenderer produces machine-readable output, mirroring the teacher's
// internal/output/json.go shape (a flattened, stable-field struct rather
// than re-exporting core types verbatim).
type JSONRenderer struct {
	w io.Writer
}

type jsonResult struct {
	TotalCost   float64        `json:"total_cost"`
	ActualRows  int64          `json:"actual_rows"`
	ExecutionMs *float64       `json:"execution_ms,omitempty"`
	Scans       []jsonScan     `json:"scans"`
	Proposals   []jsonProposal `json:"proposals"`
}

type jsonScan struct {
	Table             string  `json:"table"`
	RowsScanned       int64   `json:"rows_scanned"`
	RowsRemovedFilter int64   `json:"rows_removed_by_filter"`
	TotalCost         float64 `json:"total_cost"`
}

type jsonProposal struct {
	Table           string   `json:"table"`
	Columns         []string `json:"columns"`
	FilterPredicate string   `json:"filter_predicate,omitempty"`
	IncludeColumns  []string `json:"include_columns,omitempty"`
	Improvement     float64  `json:"improvement"`
	Rationale       string   `json:"rationale"`
	Warning         string   `json:"warning,omitempty"`
	DDL             string   `json:"ddl"`
}

func (r *JSONRenderer) Render(result *core.AnalyseResult) {
	out := jsonResult{
		TotalCost:   result.PlanMetrics.TotalCost,
		ActualRows:  result.PlanMetrics.ActualRows,
		ExecutionMs: result.PlanMetrics.ExecutionMs,
	}
	for _, s := range result.Scans {
		out.Scans = append(out.Scans, jsonScan{
			Table:             s.Table,
			RowsScanned:       s.RowsScanned,
			RowsRemovedFilter: s.RowsRemovedFilter,
			TotalCost:         s.TotalCost,
		})
	}
	for _, p := range result.Proposals {
		out.Proposals = append(out.Proposals, jsonProposal{
			Table:           p.Table,
			Columns:         p.Columns,
			FilterPredicate: p.FilterPredicate,
			IncludeColumns:  p.IncludeColumns,
			Improvement:     p.Improvement,
			Rationale:       p.Rationale,
			Warning:         p.Warning,
			DDL:             p.DDL,
		})
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
