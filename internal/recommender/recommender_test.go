package recommender_test

import (
	"context"
	"strings"
	"testing"

	"github.com/nethalo/indexwright/internal/core"
	"github.com/nethalo/indexwright/internal/recommender"
	"github.com/nethalo/indexwright/internal/sqlanalyser"
)

// fakeStats is a StatsProvider backed by fixed per-(table,column) and
// per-table values, standing in for the catalog-backed Statistics Provider
// in these scenario tests.
type fakeStats struct {
	columns map[string]core.ColumnStats
	health  map[string]core.TableHealth
	missing map[string]bool
}

func newFakeStats() *fakeStats {
	return &fakeStats{columns: map[string]core.ColumnStats{}, health: map[string]core.TableHealth{}, missing: map[string]bool{}}
}

func (f *fakeStats) withColumn(table, column string, cs core.ColumnStats) *fakeStats {
	cs.Table, cs.Column = table, column
	f.columns[table+"."+column] = cs
	return f
}

func (f *fakeStats) withHealth(table string, h core.TableHealth) *fakeStats {
	h.Table = table
	f.health[table] = h
	return f
}

func (f *fakeStats) FetchColumnStats(ctx context.Context, table, column string) (core.ColumnStats, error) {
	key := table + "." + column
	if f.missing[key] {
		return core.ColumnStats{}, core.NewError(core.KindConnectionFailure, "fakeStats", "", "simulated lookup failure", nil)
	}
	if cs, ok := f.columns[key]; ok {
		return cs, nil
	}
	return core.ColumnStats{Table: table, Column: column, DistinctValues: 100, NullFrac: 0, Correlation: 0, RowCount: 100000}, nil
}

func (f *fakeStats) FetchTableHealth(ctx context.Context, table string) (core.TableHealth, error) {
	if h, ok := f.health[table]; ok {
		return h, nil
	}
	return core.TableHealth{Table: table, ExistingIndexCount: 1, WriteRatio: 0.1}, nil
}

// S1: a single highly selective equality predicate on a wide table.
func TestScenarioSingleEqualityOnWideTable(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT * FROM users WHERE email = 'x@y.z'")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := newFakeStats().withColumn("users", "email", core.ColumnStats{DistinctValues: 10_000_000, NullFrac: 0, Correlation: 0.05, RowCount: 10_000_000})

	r := recommender.New(stats, core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "users", RowsScanned: 0}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected exactly one proposal, got %d: %+v", len(proposals), proposals)
	}
	p := proposals[0]
	if p.Table != "users" || len(p.Columns) != 1 || p.Columns[0] != "email" {
		t.Fatalf("expected users(email), got %+v", p)
	}
	if p.Improvement < 0.96 {
		t.Fatalf("expected improvement >= 0.96, got %v", p.Improvement)
	}
}

// S2: an equality predicate alongside a range predicate; the equality
// column moves into a partial filter, leaving the range column indexed.
func TestScenarioEqualityMovesToPartialFilter(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT o.id FROM orders o WHERE o.status = 'pending' AND o.created_at > '2025-01-01'")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := newFakeStats().
		withColumn("orders", "status", core.ColumnStats{DistinctValues: 2000, NullFrac: 0, Correlation: 0.1, RowCount: 1_000_000}).
		withColumn("orders", "created_at", core.ColumnStats{DistinctValues: 50_000, NullFrac: 0, Correlation: 0.95, RowCount: 1_000_000})

	r := recommender.New(stats, core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "orders", RowsScanned: 0}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected exactly one proposal, got %d: %+v", len(proposals), proposals)
	}
	p := proposals[0]
	if len(p.Columns) != 1 || p.Columns[0] != "created_at" {
		t.Fatalf("expected the sole indexed column to be created_at, got %+v", p.Columns)
	}
	if p.FilterPredicate != "status = pending" {
		t.Fatalf("expected filter predicate on status, got %q", p.FilterPredicate)
	}
	if p.Improvement < 0.80 {
		t.Fatalf("expected improvement >= 0.80, got %v", p.Improvement)
	}
}

// S3: a scan that projects only a few columns gets a covering index.
func TestScenarioCoveringIndex(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT a, b FROM t WHERE k = 7")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := newFakeStats().withColumn("t", "k", core.ColumnStats{DistinctValues: 2000, NullFrac: 0, Correlation: 0, RowCount: 1_000_000})

	r := recommender.New(stats, core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "t", RowsScanned: 0, ProjectedColumns: []string{"a", "b", "k"}}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected exactly one proposal, got %d", len(proposals))
	}
	p := proposals[0]
	if len(p.Columns) != 1 || p.Columns[0] != "k" {
		t.Fatalf("expected indexed column [k], got %+v", p.Columns)
	}
	if len(p.IncludeColumns) != 2 || !contains(p.IncludeColumns, "a") || !contains(p.IncludeColumns, "b") {
		t.Fatalf("expected INCLUDE (a, b), got %+v", p.IncludeColumns)
	}
	if p.Improvement > 0.98 {
		t.Fatalf("improvement must be capped at 0.98, got %v", p.Improvement)
	}
	if !strings.Contains(p.DDL, "INCLUDE (a, b)") {
		t.Fatalf("expected DDL to carry an INCLUDE clause, got %q", p.DDL)
	}
}

// S4: a highly selective equality predicate alongside a moderately
// selective range predicate on the same table.
func TestScenarioEqualityAndRangeOrdering(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT * FROM t WHERE k1 = 3 AND k2 > 10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := newFakeStats().
		withColumn("t", "k1", core.ColumnStats{DistinctValues: 100_000, NullFrac: 0, Correlation: 0.05, RowCount: 1_000_000}).
		withColumn("t", "k2", core.ColumnStats{DistinctValues: 100, NullFrac: 0, Correlation: 0.2, RowCount: 1_000_000})

	r := recommender.New(stats, core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "t", RowsScanned: 0}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected exactly one proposal, got %d", len(proposals))
	}
	p := proposals[0]
	if len(p.Columns) != 1 || p.Columns[0] != "k2" {
		t.Fatalf("expected the sole indexed column to be k2, got %+v", p.Columns)
	}
	if p.FilterPredicate != "k1 = 3" {
		t.Fatalf("expected filter predicate k1 = 3, got %q", p.FilterPredicate)
	}
	if p.PredicateRoles["k2"] != core.RoleRange {
		t.Fatalf("expected k2 tagged range, got %v", p.PredicateRoles["k2"])
	}
}

// S6: a table already carrying many indexes and a high write ratio always
// surfaces a warning, and the proposal is never suppressed.
func TestScenarioOverIndexingWarning(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT * FROM t WHERE k = 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := newFakeStats().
		withColumn("t", "k", core.ColumnStats{DistinctValues: 100, NullFrac: 0, Correlation: 0, RowCount: 100000}).
		withHealth("t", core.TableHealth{ExistingIndexCount: 7, WriteRatio: 0.7})

	r := recommender.New(stats, core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "t", RowsScanned: 0}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected exactly one proposal, got %d", len(proposals))
	}
	if proposals[0].Warning == "" {
		t.Fatal("expected a non-empty warning on a heavily-indexed, write-heavy table")
	}
}

// A column whose distinct-value count is 1 never appears as a proposal.
func TestScenarioSingleDistinctValueExcluded(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT * FROM t WHERE flag = true")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := newFakeStats().withColumn("t", "flag", core.ColumnStats{DistinctValues: 1, NullFrac: 0, Correlation: 0, RowCount: 100000})

	r := recommender.New(stats, core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "t"}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(proposals) != 0 {
		t.Fatalf("expected no proposals for a single-distinct-value column, got %+v", proposals)
	}
}

// A statistics lookup failure downgrades a column rather than aborting
// the recommendation pass.
func TestColumnStatsFailureDowngradesNotAborts(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT * FROM t WHERE k = 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	stats := newFakeStats()
	stats.missing["t.k"] = true

	r := recommender.New(stats, core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "t"}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("expected no error, a stats failure should downgrade the column: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected a degraded proposal to still be produced, got %+v", proposals)
	}
}

// A scan with no candidate columns produces no proposal.
func TestScanWithNoCandidateColumnsSkipped(t *testing.T) {
	parsed, err := sqlanalyser.Parse("SELECT * FROM t")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := recommender.New(newFakeStats(), core.DefaultOptions())
	scans := []core.ScanRecord{{Table: "t"}}
	proposals, err := r.Recommend(context.Background(), parsed, scans)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(proposals) != 0 {
		t.Fatalf("expected no proposals, got %+v", proposals)
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
