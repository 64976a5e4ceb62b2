package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nethalo/indexwright/internal/core"
)

const defaultExplainTimeoutMs = 30_000

// RunExplain executes an explanatory (non-mutating) form of stmt and
// returns its structured JSON plan output (spec §4.1).
//
// Safety rules enforced here, in order:
//  1. stmt is classified by its leading token.
//  2. analyze=true with a non-read classification fails with
//     RefusedMutatingExplain before any DBMS contact.
//  3. analyze=true sets a session-scoped statement_timeout immediately
//     before the EXPLAIN, released on every exit path.
//  4. FORMAT JSON is always requested; output that is not valid JSON
//     surfaces as PlanUnparseable.
func (g *Gateway) RunExplain(ctx context.Context, stmt string, analyze bool, timeoutMs int) ([]byte, error) {
	class := Classify(stmt)
	if analyze && class.IsMutating() {
		return nil, core.NewError(core.KindRefusedMutatingExplain, "gateway.RunExplain", stmt,
			fmt.Sprintf("statement classified as %q; analyzed EXPLAIN is refused for non-read statements", class), nil)
	}

	if timeoutMs <= 0 {
		timeoutMs = defaultExplainTimeoutMs
	}

	substituted := SubstitutePlaceholders(stmt)
	explainSQL := buildExplainSQL(substituted, analyze)

	if g.verbose {
		log.Printf("[DEBUG] gateway.RunExplain: analyze=%v timeoutMs=%d sql=%s", analyze, timeoutMs, explainSQL)
	}

	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		return nil, core.NewError(core.KindConnectionFailure, "gateway.RunExplain", stmt, err.Error(), err)
	}
	defer conn.Release()

	deadline := time.Duration(timeoutMs) * time.Millisecond

	if analyze {
		if _, err := conn.Exec(ctx, fmt.Sprintf("SET statement_timeout = %d", timeoutMs)); err != nil {
			return nil, core.NewError(core.KindConnectionFailure, "gateway.RunExplain", stmt, "setting statement_timeout: "+err.Error(), err)
		}
		// SET (session-scoped, not SET LOCAL) so it actually applies to the
		// EXPLAIN query below, which runs outside any transaction block;
		// RESET on every exit path so a pooled connection never leaks a
		// caller's timeout into the next lease.
		defer func() {
			_, _ = conn.Exec(context.Background(), "RESET statement_timeout")
		}()
	}

	callCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var raw []byte
	err = WithRetry(callCtx, "gateway.RunExplain", stmt, func() error {
		row := conn.QueryRow(callCtx, explainSQL)
		var doc string
		if scanErr := row.Scan(&doc); scanErr != nil {
			return scanErr
		}
		raw = []byte(doc)
		return nil
	})
	if err != nil {
		if callCtx.Err() != nil {
			return nil, core.NewError(core.KindExplainTimeout, "gateway.RunExplain", stmt, "explain exceeded deadline", err)
		}
		return nil, err
	}

	var probe []any
	if jsonErr := json.Unmarshal(raw, &probe); jsonErr != nil {
		return nil, core.NewError(core.KindPlanUnparseable, "gateway.RunExplain", stmt, "explain output was not valid JSON: "+jsonErr.Error(), jsonErr)
	}

	return raw, nil
}

func buildExplainSQL(stmt string, analyze bool) string {
	if analyze {
		return "EXPLAIN (ANALYZE, FORMAT JSON, TIMING) " + stmt
	}
	return "EXPLAIN (FORMAT JSON) " + stmt
}
