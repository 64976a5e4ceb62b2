package sqlanalyser

import (
	"testing"

	"github.com/nethalo/indexwright/internal/core"
)

func TestParseSimpleEqualityWhere(t *testing.T) {
	pq, err := Parse("SELECT id FROM orders WHERE status = 'shipped'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pq.Tables) != 1 || pq.Tables[0] != "orders" {
		t.Fatalf("expected table orders, got %+v", pq.Tables)
	}
	ref := core.ColumnRef{Table: "orders", Column: "status"}
	if !pq.WhereColumns[ref] {
		t.Fatalf("expected status to be a where column, got %+v", pq.WhereColumns)
	}
	if pq.Roles[ref] != core.RoleEquality {
		t.Fatalf("expected equality role, got %v", pq.Roles[ref])
	}
	if pq.Literals[ref] != "shipped" {
		t.Fatalf("expected literal 'shipped', got %q", pq.Literals[ref])
	}
}

func TestParseRangePredicate(t *testing.T) {
	pq, err := Parse("SELECT id FROM orders WHERE created_at > '2024-01-01'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := core.ColumnRef{Table: "orders", Column: "created_at"}
	if pq.Roles[ref] != core.RoleRange {
		t.Fatalf("expected range role, got %v", pq.Roles[ref])
	}
	if _, ok := pq.Literals[ref]; ok {
		t.Fatal("range predicates should not record a literal")
	}
}

func TestParseBetweenIsRange(t *testing.T) {
	pq, err := Parse("SELECT id FROM orders WHERE total BETWEEN 10 AND 100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := core.ColumnRef{Table: "orders", Column: "total"}
	if pq.Roles[ref] != core.RoleRange {
		t.Fatalf("expected range role for BETWEEN, got %v", pq.Roles[ref])
	}
}

func TestParseEqualityOutranksRangeOnRepeat(t *testing.T) {
	pq, err := Parse("SELECT id FROM orders WHERE total > 10 AND total = 50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := core.ColumnRef{Table: "orders", Column: "total"}
	if pq.Roles[ref] != core.RoleEquality {
		t.Fatalf("expected equality to win over an earlier range classification, got %v", pq.Roles[ref])
	}
}

func TestParseRangeDoesNotDowngradeEquality(t *testing.T) {
	pq, err := Parse("SELECT id FROM orders WHERE total = 50 AND total > 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := core.ColumnRef{Table: "orders", Column: "total"}
	if pq.Roles[ref] != core.RoleEquality {
		t.Fatalf("expected equality to remain once established, got %v", pq.Roles[ref])
	}
}

func TestParseJoinColumnsUseJoinContext(t *testing.T) {
	pq, err := Parse(`SELECT o.id FROM orders o JOIN customers c ON o.customer_id = c.id`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pq.AliasToTable["o"] != "orders" || pq.AliasToTable["c"] != "customers" {
		t.Fatalf("unexpected alias map: %+v", pq.AliasToTable)
	}
	left := core.ColumnRef{Table: "orders", Column: "customer_id"}
	right := core.ColumnRef{Table: "customers", Column: "id"}
	if !pq.JoinColumns[left] || !pq.JoinColumns[right] {
		t.Fatalf("expected both join sides recorded, got %+v", pq.JoinColumns)
	}
}

func TestParseOrderByColumn(t *testing.T) {
	pq, err := Parse("SELECT id FROM orders ORDER BY created_at DESC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := core.ColumnRef{Table: "orders", Column: "created_at"}
	if !pq.OrderByColumns[ref] {
		t.Fatalf("expected created_at in order-by columns, got %+v", pq.OrderByColumns)
	}
	if pq.Roles[ref] != core.RoleOrderBy {
		t.Fatalf("expected order-by role, got %v", pq.Roles[ref])
	}
}

func TestParseUnqualifiedColumnSingleTable(t *testing.T) {
	pq, err := Parse("SELECT id FROM orders WHERE status = 'shipped'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := core.ColumnRef{Table: "orders", Column: "status"}
	if !pq.WhereColumns[ref] {
		t.Fatal("expected unqualified column resolved to sole table")
	}
	if len(pq.Ambiguous) != 0 {
		t.Fatalf("expected no ambiguous columns, got %+v", pq.Ambiguous)
	}
}

func TestParseUnqualifiedColumnMultiTableIsAmbiguous(t *testing.T) {
	pq, err := Parse(`SELECT o.id FROM orders o, customers c WHERE status = 'shipped'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pq.Ambiguous["status"] {
		t.Fatalf("expected status to be recorded ambiguous, got %+v", pq.Ambiguous)
	}
	for ref := range pq.WhereColumns {
		if ref.Column == "status" {
			t.Fatal("ambiguous column must not be recorded as a where column")
		}
	}
}

func TestParseUnresolvableQualifierIsAmbiguous(t *testing.T) {
	pq, err := Parse(`SELECT o.id FROM orders o WHERE x.status = 'shipped'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pq.Ambiguous["status"] {
		t.Fatalf("expected status qualified by unknown alias x to be ambiguous, got %+v", pq.Ambiguous)
	}
}

func TestParseUnparseableStatement(t *testing.T) {
	_, err := Parse("SELECT FROM WHERE !!!")
	if err == nil {
		t.Fatal("expected an error for unparseable SQL")
	}
	if !core.IsKind(err, core.KindUnparseableStatement) {
		t.Fatalf("expected KindUnparseableStatement, got %v", err)
	}
}

func TestParseUpdateStatement(t *testing.T) {
	pq, err := Parse("UPDATE orders SET status = 'cancelled' WHERE id = 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pq.Tables) != 1 || pq.Tables[0] != "orders" {
		t.Fatalf("expected table orders, got %+v", pq.Tables)
	}
	ref := core.ColumnRef{Table: "orders", Column: "id"}
	if pq.Roles[ref] != core.RoleEquality {
		t.Fatalf("expected equality role on WHERE id = 5, got %v", pq.Roles[ref])
	}
}

func TestParseDeleteStatement(t *testing.T) {
	pq, err := Parse("DELETE FROM orders WHERE status = 'cancelled'")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref := core.ColumnRef{Table: "orders", Column: "status"}
	if pq.Roles[ref] != core.RoleEquality {
		t.Fatalf("expected equality role, got %v", pq.Roles[ref])
	}
}
