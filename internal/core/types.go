// Package core defines the shared data model consumed and produced by the
// analyser, gateway, plan inspector, statistics provider, and recommender.
package core

import "sort"

// PredicateRole is the structural position of a column reference in a query
// clause. Roles are a closed enumeration: equality, range, order-by, other.
type PredicateRole string

const (
	RoleEquality PredicateRole = "equality"
	RoleRange    PredicateRole = "range"
	RoleOrderBy  PredicateRole = "order-by"
	RoleOther    PredicateRole = "other"
)

// rolePriority encodes "equality > range > other" so classification can
// only strengthen, never downgrade, on repeated column appearances.
var rolePriority = map[PredicateRole]int{
	RoleOther:    0,
	RoleOrderBy:  0,
	RoleRange:    1,
	RoleEquality: 2,
}

// Outranks reports whether r should replace existing per rule 4.2.5.
func (r PredicateRole) Outranks(existing PredicateRole) bool {
	return rolePriority[r] > rolePriority[existing]
}

// ColumnRef identifies a column in ParsedQuery, qualified to its owning
// table once alias resolution has run.
type ColumnRef struct {
	Table  string
	Column string
}

// ParsedQuery is the immutable product of the SQL analyser (spec §3, §4.2).
type ParsedQuery struct {
	// Tables lists base tables in the order they were first referenced.
	Tables []string
	// AliasToTable maps every registered alias (including table->table for
	// unaliased references) to its base table name.
	AliasToTable map[string]string

	WhereColumns   map[ColumnRef]bool
	JoinColumns    map[ColumnRef]bool
	OrderByColumns map[ColumnRef]bool

	// Roles holds the stable predicate-role classification per column.
	Roles map[ColumnRef]PredicateRole
	// Literals holds the literal constant bound to an equality predicate,
	// keyed by column, when one was recorded.
	Literals map[ColumnRef]string

	// Ambiguous holds unqualified column names that could not be resolved
	// to exactly one base table; they are excluded from candidate
	// generation per the data-model invariant.
	Ambiguous map[string]bool
}

// NewParsedQuery returns an empty, ready-to-populate ParsedQuery.
func NewParsedQuery() *ParsedQuery {
	return &ParsedQuery{
		AliasToTable:   map[string]string{},
		WhereColumns:   map[ColumnRef]bool{},
		JoinColumns:    map[ColumnRef]bool{},
		OrderByColumns: map[ColumnRef]bool{},
		Roles:          map[ColumnRef]PredicateRole{},
		Literals:       map[ColumnRef]string{},
		Ambiguous:      map[string]bool{},
	}
}

// ColumnsForTable returns the union of where/join columns qualified to
// table plus any order-by columns on table, per recommender pipeline step 1.
func (p *ParsedQuery) ColumnsForTable(table string) []ColumnRef {
	seen := map[ColumnRef]bool{}
	var out []ColumnRef
	add := func(c ColumnRef) {
		if c.Table == table && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for c := range p.WhereColumns {
		add(c)
	}
	for c := range p.JoinColumns {
		add(c)
	}
	for c := range p.OrderByColumns {
		add(c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// ScanRecord is one full-table-scan node extracted from the planner output
// (spec §3, §4.3).
type ScanRecord struct {
	Table             string
	RowsScanned       int64
	RowsRemovedFilter int64
	TotalCost         float64
	Depth             int
	// ProjectedColumns, when the planner exposes it, lists the columns the
	// scan must produce; used for covering-index detection (spec §4.4.10).
	ProjectedColumns []string
}

// PlanMetrics is the top-level tuple returned alongside scan records.
type PlanMetrics struct {
	TotalCost    float64
	ActualRows   int64
	ExecutionMs  *float64
}

// ColumnStats is fetched on demand and cached by (table,column) with TTL.
type ColumnStats struct {
	Table          string
	Column         string
	DistinctValues int64
	NullFrac       float64
	Correlation    float64
	RowCount       int64
}

// TableHealth is fetched once per table per recommendation pass.
type TableHealth struct {
	Table              string
	ExistingIndexCount int
	WriteRatio         float64
}

// Proposal is one ranked index recommendation (spec §3, §4.4).
type Proposal struct {
	Table            string
	Columns          []string
	FilterPredicate  string
	IncludeColumns   []string
	PredicateRoles   map[string]PredicateRole
	Improvement      float64
	Rationale        string
	Warning          string
	DDL              string
}

// Key returns the dedup key used by ranking (spec §4.4 "Ranking and
// deduplication").
func (p Proposal) Key() string {
	key := p.Table + "|" + joinStrings(p.Columns) + "|" + p.FilterPredicate + "|" + joinStrings(p.IncludeColumns)
	return key
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

// AnalyseResult is the value returned by the core's analyse(sql) entrypoint
// (spec §6).
type AnalyseResult struct {
	PlanMetrics PlanMetrics
	Scans       []ScanRecord
	Proposals   []Proposal
}

// Options are the recognised configure(opts) fields (spec §6).
type Options struct {
	PoolMin            int
	PoolMax            int
	ExplainTimeoutMs   int
	StatsCacheTTLSecs  int
	MaxWorkersPerBatch int
	CoveringEnabled    bool
	PartialEnabled     bool
	Verbose            bool // enables [DEBUG] log.Printf tracing in gateway and stats
}

// DefaultOptions mirrors the defaults named throughout spec.md (pool 2-10,
// 30s explain timeout, 3600s stats TTL).
func DefaultOptions() Options {
	return Options{
		PoolMin:            2,
		PoolMax:            10,
		ExplainTimeoutMs:   30_000,
		StatsCacheTTLSecs:  3600,
		MaxWorkersPerBatch: 8,
		CoveringEnabled:    true,
		PartialEnabled:     true,
	}
}
