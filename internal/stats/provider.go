// Package stats wraps the DBMS Gateway's catalog queries behind a provider
// that caches ColumnStats and TableHealth by key, with a default 3600s TTL
// (spec §5 "Shared resources").
package stats

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nethalo/indexwright/internal/core"
	"github.com/nethalo/indexwright/internal/gateway"
)

// fallbackConservativeRowCount is used when a table's row count cannot be
// determined at all (spec §6: "statistics absence yields a fallback
// ColumnStats ... and a conservative row count").
const fallbackConservativeRowCount = 1_000_000

// Provider fetches and caches ColumnStats/TableHealth via a gateway.
type Provider struct {
	gw          *gateway.Gateway
	columnCache *ttlCache[core.ColumnStats]
	healthCache *ttlCache[core.TableHealth]
	verbose     bool
}

// New builds a Provider with the given cache TTL (seconds); lazily
// initialized, confined to this instance (spec §9 "Global caches").
func New(gw *gateway.Gateway, ttlSeconds int) *Provider {
	return NewWithOptions(gw, ttlSeconds, false)
}

// NewWithOptions is New plus the verbose flag from core.Options, gating
// [DEBUG] log.Printf tracing of cache hits/misses.
func NewWithOptions(gw *gateway.Gateway, ttlSeconds int, verbose bool) *Provider {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	ttl := time.Duration(ttlSeconds) * time.Second
	return &Provider{
		gw:          gw,
		columnCache: newTTLCache[core.ColumnStats](ttl),
		healthCache: newTTLCache[core.TableHealth](ttl),
		verbose:     verbose,
	}
}

func columnKey(table, column string) string { return table + "." + column }

// FetchColumnStats returns cached stats for (table,column) if fresh,
// otherwise queries pg_stats and pg_class. A catalog miss yields the
// fallback values named in spec §6 rather than an error, since the
// recommender degrades a column to `other` on a statistics failure — the
// fallback exists for the narrower case of "no row exists in pg_stats yet"
// (e.g. never analyzed), which is not itself an error.
func (p *Provider) FetchColumnStats(ctx context.Context, table, column string) (core.ColumnStats, error) {
	if v, ok := p.columnCache.get(columnKey(table, column)); ok {
		if p.verbose {
			log.Printf("[DEBUG] stats.FetchColumnStats: cache hit for %s.%s", table, column)
		}
		return v, nil
	}
	if p.verbose {
		log.Printf("[DEBUG] stats.FetchColumnStats: cache miss for %s.%s, querying pg_stats", table, column)
	}

	rowCount, err := p.tableRowCount(ctx, table)
	if err != nil {
		return core.ColumnStats{}, core.NewError(core.KindStatisticsUnavailable, "stats.FetchColumnStats", "", err.Error(), err)
	}

	const q = `
		SELECT n_distinct, null_frac, correlation
		FROM pg_catalog.pg_stats
		WHERE tablename = $1 AND attname = $2
		LIMIT 1`

	row := p.gw.QueryRow(ctx, q, table, column)

	var nDistinct, nullFrac, correlation float64
	if err := row.Scan(&nDistinct, &nullFrac, &correlation); err != nil {
		cs := fallbackColumnStats(table, column, rowCount)
		p.columnCache.set(columnKey(table, column), cs)
		return cs, nil
	}

	cs := core.ColumnStats{
		Table:          table,
		Column:         column,
		DistinctValues: resolveDistinct(nDistinct, rowCount),
		NullFrac:       clamp01(nullFrac),
		Correlation:    clampSigned(correlation),
		RowCount:       rowCount,
	}
	p.columnCache.set(columnKey(table, column), cs)
	return cs, nil
}

// resolveDistinct turns pg_stats' n_distinct convention (negative = -1 *
// fraction of rows; non-negative = absolute count) into an absolute value
// bounded above by rowCount and at least 1 (spec §3 ColumnStats invariant).
func resolveDistinct(nDistinct float64, rowCount int64) int64 {
	var distinct int64
	if nDistinct < 0 {
		distinct = int64(-nDistinct * float64(rowCount))
	} else {
		distinct = int64(nDistinct)
	}
	if distinct < 1 {
		distinct = 1
	}
	if rowCount > 0 && distinct > rowCount {
		distinct = rowCount
	}
	return distinct
}

func fallbackColumnStats(table, column string, rowCount int64) core.ColumnStats {
	if rowCount <= 0 {
		rowCount = fallbackConservativeRowCount
	}
	return core.ColumnStats{
		Table:          table,
		Column:         column,
		DistinctValues: 100,
		NullFrac:       0,
		Correlation:    0,
		RowCount:       rowCount,
	}
}

func (p *Provider) tableRowCount(ctx context.Context, table string) (int64, error) {
	const q = `
		SELECT GREATEST(reltuples::bigint, 0)
		FROM pg_catalog.pg_class
		WHERE relname = $1
		LIMIT 1`
	row := p.gw.QueryRow(ctx, q, table)
	var rows int64
	if err := row.Scan(&rows); err != nil {
		return fallbackConservativeRowCount, nil
	}
	if rows <= 0 {
		return fallbackConservativeRowCount, nil
	}
	return rows, nil
}

// FetchTableHealth returns cached health for table if fresh, otherwise
// queries pg_stat_user_tables and the index count from pg_indexes.
func (p *Provider) FetchTableHealth(ctx context.Context, table string) (core.TableHealth, error) {
	if v, ok := p.healthCache.get(table); ok {
		if p.verbose {
			log.Printf("[DEBUG] stats.FetchTableHealth: cache hit for %s", table)
		}
		return v, nil
	}
	if p.verbose {
		log.Printf("[DEBUG] stats.FetchTableHealth: cache miss for %s, querying catalog", table)
	}

	const indexQ = `SELECT COUNT(*) FROM pg_catalog.pg_indexes WHERE tablename = $1`
	var indexCount int
	if err := p.gw.QueryRow(ctx, indexQ, table).Scan(&indexCount); err != nil {
		return core.TableHealth{}, core.NewError(core.KindStatisticsUnavailable, "stats.FetchTableHealth", "", err.Error(), err)
	}

	const activityQ = `
		SELECT
			COALESCE(n_tup_ins, 0) + COALESCE(n_tup_upd, 0) + COALESCE(n_tup_del, 0) AS writes,
			COALESCE(seq_scan, 0) + COALESCE(idx_scan, 0) AS reads
		FROM pg_stat_user_tables
		WHERE relname = $1`
	var writes, reads int64
	if err := p.gw.QueryRow(ctx, activityQ, table).Scan(&writes, &reads); err != nil {
		// No activity row yet (table never touched since stats reset): a
		// brand-new table has no write pressure to warn about.
		writes, reads = 0, 1
	}

	total := writes + reads
	var writeRatio float64
	if total > 0 {
		writeRatio = float64(writes) / float64(total)
	}

	th := core.TableHealth{
		Table:              table,
		ExistingIndexCount: indexCount,
		WriteRatio:         clamp01(writeRatio),
	}
	p.healthCache.set(table, th)
	return th, nil
}

// TopStatement is one row of the statement-history view consumed only by
// the external batch collaborator (spec §6); the core never calls this.
type TopStatement struct {
	Query    string
	Calls    int64
	TotalMs  float64
}

// FetchTopStatements queries pg_stat_statements, when the extension is
// installed. It exists solely at the interface named in spec §4.1; no
// internal component of this repo invokes it.
func (p *Provider) FetchTopStatements(ctx context.Context, limit int, minCalls int64) ([]TopStatement, error) {
	const q = `
		SELECT query, calls, total_exec_time
		FROM pg_stat_statements
		WHERE calls >= $1
		ORDER BY total_exec_time DESC
		LIMIT $2`
	rows, err := p.gw.Query(ctx, q, minCalls, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching top statements: %w", err)
	}
	defer rows.Close()

	var out []TopStatement
	for rows.Next() {
		var ts TopStatement
		if err := rows.Scan(&ts.Query, &ts.Calls, &ts.TotalMs); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
