// Package recommender fuses SQL Analyser output, Plan Inspector output, and
// catalog statistics into ranked index Proposals (spec §4.4). It is the
// apex component: everything below it is a pure function of its inputs, so
// a Recommender value carries no state beyond its dependencies and is
// safe to call concurrently from multiple goroutines (spec §5).
package recommender

import (
	"context"
	"fmt"
	"sort"

	"github.com/nethalo/indexwright/internal/core"
)

// maxIncludeColumns caps covering-index width per spec §9's open question:
// "cap included columns at a small limit (e.g., 5) to avoid bloated
// indexes."
const maxIncludeColumns = 5

// overIndexedCount is the existing-index-count threshold of step 11.
const overIndexedCount = 5

// StatsProvider is the subset of the Statistics Provider the recommender
// depends on. Defined here (consumer side) so recommender never imports
// the gateway package directly.
type StatsProvider interface {
	FetchColumnStats(ctx context.Context, table, column string) (core.ColumnStats, error)
	FetchTableHealth(ctx context.Context, table string) (core.TableHealth, error)
}

// Recommender computes Proposals for a parsed query given its plan scans.
type Recommender struct {
	stats StatsProvider
	opts  core.Options
}

// New builds a Recommender over the given statistics provider and options.
func New(stats StatsProvider, opts core.Options) *Recommender {
	return &Recommender{stats: stats, opts: opts}
}

// Recommend implements spec §4.4's full per-scan pipeline plus the final
// ranking/deduplication pass. parsed must be non-nil; callers in
// "plan-only" mode (an UnparseableStatement occurred) must not call this
// at all, per spec §4.4 "Failure semantics".
func (r *Recommender) Recommend(ctx context.Context, parsed *core.ParsedQuery, scans []core.ScanRecord) ([]core.Proposal, error) {
	byKey := map[string]core.Proposal{}

	for _, scan := range scans {
		proposal, ok, err := r.proposalForScan(ctx, parsed, scan)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		key := proposal.Key()
		if existing, dup := byKey[key]; !dup || proposal.Improvement > existing.Improvement {
			byKey[key] = proposal
		}
	}

	out := make([]core.Proposal, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Improvement > out[j].Improvement })
	return out, nil
}

// proposalForScan runs steps 1-12 of spec §4.4 for a single scan record.
func (r *Recommender) proposalForScan(ctx context.Context, parsed *core.ParsedQuery, scan core.ScanRecord) (core.Proposal, bool, error) {
	// Step 1: candidate columns for this table.
	refs := parsed.ColumnsForTable(scan.Table)
	if len(refs) == 0 {
		return core.Proposal{}, false, nil // step 2
	}

	cands := make([]candidate, 0, len(refs))
	var baseValues []float64
	for _, ref := range refs {
		role := parsed.Roles[ref]
		_, isOrderBy := parsed.OrderByColumns[ref]

		// Step 3: fetch ColumnStats; a failure downgrades the column to
		// `other` with base=0.5 rather than aborting the pass (spec §4.4
		// "Failure semantics").
		cs, err := r.stats.FetchColumnStats(ctx, scan.Table, ref.Column)
		if err != nil {
			role = core.RoleOther
			cs = core.ColumnStats{Table: scan.Table, Column: ref.Column, DistinctValues: 2, NullFrac: 0, Correlation: 0, RowCount: 0}
		}

		// Boundary behaviour: a column whose distinct-value count is 1
		// never appears as a proposal (selectivity = 1; no discriminating
		// power). Excluded from candidacy entirely.
		if cs.DistinctValues <= 1 {
			continue
		}

		base := baseSelectivity(role, cs)
		literal, hasLiteral := parsed.Literals[ref]

		cands = append(cands, candidate{
			Column:     ref.Column,
			Role:       role,
			Base:       base,
			Stats:      cs,
			Literal:    literal,
			HasLiteral: hasLiteral,
			IsOrderBy:  isOrderBy,
		})
		baseValues = append(baseValues, base)
	}

	if len(cands) == 0 {
		return core.Proposal{}, false, nil
	}

	// Step 6: composite selectivity.
	selectivity := compositeSelectivity(baseValues, scan)

	// Step 7 (first half): predicted improvement from selectivity.
	improvement := improvementForSelectivity(selectivity)

	// Step 8: column ordering; the leading column's correlation drives the
	// penalty (step 7, second half).
	ordered := orderCandidates(cands)
	leading := ordered[0]
	improvement = correlationPenalty(improvement, leading.Stats.Correlation)

	roles := map[string]core.PredicateRole{}
	for _, c := range ordered {
		roles[c.Column] = c.Role
	}

	columns := make([]string, len(ordered))
	for i, c := range ordered {
		columns[i] = c.Column
	}

	// Step 9: partial-index detection.
	columns, filterPredicate, ordered := extractPartialFilter(ordered, columns, r.opts.PartialEnabled)

	proposal := core.Proposal{
		Table:           scan.Table,
		Columns:         columns,
		FilterPredicate: filterPredicate,
		PredicateRoles:  roles,
		Improvement:     improvement,
	}

	// Step 10: covering detection.
	if r.opts.CoveringEnabled {
		applyCovering(&proposal, scan, columns)
	}

	// Step 11: over-indexing guard.
	health, err := r.stats.FetchTableHealth(ctx, scan.Table)
	if err == nil {
		applyOverIndexingGuard(&proposal, health)
	}

	// Step 12: naming + DDL.
	name := indexName(proposal.Table, proposal.Columns, proposal.FilterPredicate != "", len(proposal.IncludeColumns) > 0)
	proposal.DDL = buildDDL(name, proposal.Table, proposal.Columns, proposal.IncludeColumns, proposal.FilterPredicate)
	proposal.Rationale = rationale(ordered, selectivity, proposal)

	return proposal, true, nil
}

// extractPartialFilter implements spec §4.4 step 9: every candidate column
// whose predicate is equality against a recorded literal is pulled out of
// the indexed-column list into a filter-predicate conjunct. If that would
// empty the column list, the most-selective removed column is retained as
// the leading indexed column instead.
func extractPartialFilter(ordered []candidate, columns []string, enabled bool) ([]string, string, []candidate) {
	if !enabled {
		return columns, "", ordered
	}

	var kept []candidate
	var removed []candidate
	for _, c := range ordered {
		if c.Role == core.RoleEquality && c.HasLiteral {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}

	if len(removed) == 0 {
		return columns, "", ordered
	}

	if len(kept) == 0 {
		// Retain the most-selective removed column (ascending base means
		// removed[0] is already most selective since it came from an
		// ordered, sorted-by-selectivity partition).
		mostSelective := removed[0]
		for _, c := range removed[1:] {
			if c.Base < mostSelective.Base {
				mostSelective = c
			}
		}
		kept = []candidate{mostSelective}
		filtered := make([]candidate, 0, len(removed)-1)
		for _, c := range removed {
			if c.Column != mostSelective.Column {
				filtered = append(filtered, c)
			}
		}
		removed = filtered
	}

	predicate := ""
	for i, c := range removed {
		if i > 0 {
			predicate += " AND "
		}
		predicate += c.Column + " = " + c.Literal
	}

	keptColumns := make([]string, len(kept))
	for i, c := range kept {
		keptColumns[i] = c.Column
	}

	return keptColumns, predicate, kept
}

// applyCovering implements spec §4.4 step 10: when the scan exposes a
// small set of projected columns, add the ones not already indexed to
// include_columns and boost the improvement ×1.15, capped at 0.98.
func applyCovering(p *core.Proposal, scan core.ScanRecord, indexedColumns []string) {
	if len(scan.ProjectedColumns) == 0 || len(scan.ProjectedColumns) > maxIncludeColumns {
		return
	}
	indexed := map[string]bool{}
	for _, c := range indexedColumns {
		indexed[c] = true
	}

	var include []string
	for _, c := range scan.ProjectedColumns {
		if indexed[c] || contains(include, c) {
			continue
		}
		include = append(include, c)
		if len(include) >= maxIncludeColumns {
			break
		}
	}
	if len(include) == 0 {
		return
	}

	p.IncludeColumns = include
	p.Improvement = clamp(p.Improvement*1.15, 0, 0.98)
}

// applyOverIndexingGuard implements spec §4.4 step 11: never suppresses
// the proposal, only attaches a warning.
func applyOverIndexingGuard(p *core.Proposal, health core.TableHealth) {
	tooMany := health.ExistingIndexCount >= overIndexedCount
	writeHeavy := health.WriteRatio > 0.5 && float64(health.ExistingIndexCount)*0.15*health.WriteRatio > 0.3

	if !tooMany && !writeHeavy {
		return
	}

	p.Warning = "table already carries significant index overhead"
	if tooMany {
		p.Warning = "table already has 5 or more indexes; adding another increases write amplification"
	}
	if writeHeavy {
		p.Warning = "table has a high write ratio; this index will add meaningful write overhead"
	}
}

func rationale(ordered []candidate, selectivity float64, p core.Proposal) string {
	r := fmt.Sprintf("composite selectivity ~%.4f on %s", selectivity, p.Table)
	if p.FilterPredicate != "" {
		r += "; equality predicate moved to partial filter"
	}
	if len(p.IncludeColumns) > 0 {
		r += "; covers query output via INCLUDE columns"
	}
	return r
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
