package gateway

import (
	"context"
	"testing"

	"github.com/nethalo/indexwright/internal/core"
)

// S5: a mutating statement submitted with analyze=true is refused before
// any DBMS contact is attempted — exercised here with a nil pool, which
// would panic if RunExplain reached past classification.
func TestRunExplainRefusesMutatingAnalyze(t *testing.T) {
	g := &Gateway{}
	_, err := g.RunExplain(context.Background(), "INSERT INTO t VALUES (1)", true, 1000)
	if err == nil {
		t.Fatal("expected a refusal error")
	}
	if !core.IsKind(err, core.KindRefusedMutatingExplain) {
		t.Fatalf("expected KindRefusedMutatingExplain, got %v", err)
	}
}

func TestBuildExplainSQL(t *testing.T) {
	if got := buildExplainSQL("SELECT 1", true); got != "EXPLAIN (ANALYZE, FORMAT JSON, TIMING) SELECT 1" {
		t.Fatalf("got %q", got)
	}
	if got := buildExplainSQL("SELECT 1", false); got != "EXPLAIN (FORMAT JSON) SELECT 1" {
		t.Fatalf("got %q", got)
	}
}
