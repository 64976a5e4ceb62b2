// Package engine exposes the core's invocation boundary named in spec §6:
// analyse(sql) and configure(opts). It composes the SQL Analyser, DBMS
// Gateway, Plan Inspector, Statistics Provider, and Recommender; no other
// package wires all five together.
package engine

import (
	"context"

	"github.com/nethalo/indexwright/internal/core"
	"github.com/nethalo/indexwright/internal/gateway"
	"github.com/nethalo/indexwright/internal/planinspector"
	"github.com/nethalo/indexwright/internal/recommender"
	"github.com/nethalo/indexwright/internal/sqlanalyser"
	"github.com/nethalo/indexwright/internal/stats"
)

// Engine is a single recommender instance per spec §9: its caches and pool
// are process-wide but confined to this instance. Safe for concurrent use
// (spec §5).
type Engine struct {
	gw    *gateway.Gateway
	stats *stats.Provider
	rec   *recommender.Recommender
	opts  core.Options
}

// Open connects the gateway and builds the engine with default options,
// including the default pool sizing. Call Configure afterward to change
// timeouts, the statistics cache TTL, or the covering/partial toggles.
func Open(ctx context.Context, dsn string) (*Engine, error) {
	opts := core.DefaultOptions()
	gw, err := gateway.Open(ctx, dsn, opts)
	if err != nil {
		return nil, err
	}
	provider := stats.NewWithOptions(gw, opts.StatsCacheTTLSecs, opts.Verbose)
	return &Engine{
		gw:    gw,
		stats: provider,
		rec:   recommender.New(provider, opts),
		opts:  opts,
	}, nil
}

// Configure applies opts (spec §6 configure(opts)). It does not resize the
// connection pool, which keeps the sizes it was opened with, but it does
// take effect for explain timeouts, the statistics cache TTL (the caches
// are rebuilt empty with the new TTL), and the recommender's
// covering/partial toggles.
func (e *Engine) Configure(opts core.Options) {
	e.opts = opts
	gateway.EnableDebugLogging(opts.Verbose)
	e.stats = stats.NewWithOptions(e.gw, opts.StatsCacheTTLSecs, opts.Verbose)
	e.rec = recommender.New(e.stats, opts)
}

// Close releases the gateway's pooled connections.
func (e *Engine) Close() {
	e.gw.Close()
}

// Analyse implements spec §6's analyse(sql) entrypoint.
//
// Failure semantics (spec §4.4): an UnparseableStatement degrades to
// "plan-only" mode — scans and plan metrics are still returned, but no
// proposals are emitted. A PlanUnparseable failure aborts the whole call.
func (e *Engine) Analyse(ctx context.Context, sql string) (*core.AnalyseResult, error) {
	parsed, parseErr := sqlanalyser.Parse(sql)

	planJSON, err := e.gw.RunExplain(ctx, sql, true, e.opts.ExplainTimeoutMs)
	if err != nil {
		if core.IsKind(err, core.KindRefusedMutatingExplain) {
			planJSON, err = e.gw.RunExplain(ctx, sql, false, e.opts.ExplainTimeoutMs)
		}
		if err != nil {
			return nil, err
		}
	}

	scans, metrics, err := planinspector.Inspect(planJSON)
	if err != nil {
		return nil, err
	}

	result := &core.AnalyseResult{PlanMetrics: metrics, Scans: scans}

	if parseErr != nil {
		return result, nil
	}

	proposals, err := e.rec.Recommend(ctx, parsed, scans)
	if err != nil {
		return nil, err
	}
	result.Proposals = proposals
	return result, nil
}
