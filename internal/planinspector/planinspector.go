// Package planinspector walks the JSON plan tree returned by the DBMS
// Gateway's EXPLAIN (FORMAT JSON) call and extracts full-table-scan
// records plus top-level plan metrics (spec §4.3). The node-shape handled
// here follows Postgres's EXPLAIN JSON output exactly as consumed by
// Chahine-tech-sqlens's plan analyser: a top-level array with one
// "Plan" object carrying "Node Type", "Total Cost", "Plan Rows",
// "Actual Rows", "Rows Removed by Filter", "Relation Name", and a
// recursive "Plans" array of children.
package planinspector

import (
	"encoding/json"

	"github.com/nethalo/indexwright/internal/core"
)

// nodeSeqScan is the sequential-scan variant spec §4.3 calls a full-table
// scan. nodeParallelSeqScan is the node type Postgres emits when the scan
// is split across parallel workers; both are full scans of the base table.
const (
	nodeSeqScan         = "Seq Scan"
	nodeParallelSeqScan = "Parallel Seq Scan"
)

type planDoc struct {
	Plan          planNode `json:"Plan"`
	ExecutionTime *float64 `json:"Execution Time"`
}

type planNode struct {
	NodeType           string     `json:"Node Type"`
	RelationName       string     `json:"Relation Name"`
	TotalCost          float64    `json:"Total Cost"`
	PlanRows           int64      `json:"Plan Rows"`
	ActualRows         *int64     `json:"Actual Rows"`
	RowsRemovedByFilter *int64    `json:"Rows Removed by Filter"`
	Output             []string   `json:"Output"`
	Plans              []planNode `json:"Plans"`
}

// Inspect parses rawPlanJSON (as returned by gateway.RunExplain) and
// returns every full-table scan found via a pre-order walk, plus the
// top-level PlanMetrics.
func Inspect(rawPlanJSON []byte) ([]core.ScanRecord, core.PlanMetrics, error) {
	var docs []planDoc
	if err := json.Unmarshal(rawPlanJSON, &docs); err != nil {
		return nil, core.PlanMetrics{}, core.NewError(core.KindPlanUnparseable, "planinspector.Inspect", "", err.Error(), err)
	}
	if len(docs) == 0 {
		return nil, core.PlanMetrics{}, core.NewError(core.KindPlanUnparseable, "planinspector.Inspect", "", "explain output had no plan document", nil)
	}

	root := docs[0]
	metrics := core.PlanMetrics{
		TotalCost:   root.Plan.TotalCost,
		ActualRows:  valueOrPlanRows(root.Plan),
		ExecutionMs: root.ExecutionTime,
	}

	var scans []core.ScanRecord
	walk(root.Plan, 0, &scans)

	return scans, metrics, nil
}

func walk(n planNode, depth int, scans *[]core.ScanRecord) {
	if isFullScan(n.NodeType) && n.RelationName != "" {
		*scans = append(*scans, core.ScanRecord{
			Table:             n.RelationName,
			RowsScanned:       valueOrPlanRows(n),
			RowsRemovedFilter: rowsRemoved(n),
			TotalCost:         n.TotalCost,
			Depth:             depth,
			ProjectedColumns:  n.Output,
		})
	}
	// Nested children are walked regardless of the parent's type (spec §4.3
	// "Traversal").
	for _, child := range n.Plans {
		walk(child, depth+1, scans)
	}
}

func isFullScan(nodeType string) bool {
	return nodeType == nodeSeqScan || nodeType == nodeParallelSeqScan
}

func valueOrPlanRows(n planNode) int64 {
	if n.ActualRows != nil {
		return *n.ActualRows
	}
	return n.PlanRows
}

func rowsRemoved(n planNode) int64 {
	if n.RowsRemovedByFilter != nil {
		return *n.RowsRemovedByFilter
	}
	return 0
}
