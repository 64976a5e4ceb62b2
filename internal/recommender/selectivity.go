package recommender

import "github.com/nethalo/indexwright/internal/core"

// baseSelectivity implements spec §4.4 step 4's per-column base
// selectivity by predicate role.
func baseSelectivity(role core.PredicateRole, stats core.ColumnStats) float64 {
	switch role {
	case core.RoleEquality:
		if stats.DistinctValues <= 0 {
			return 0.5
		}
		return (1.0 / float64(stats.DistinctValues)) * (1.0 - stats.NullFrac)
	case core.RoleRange:
		return 0.3333
	default: // other / order-by only
		return 0.5
	}
}

// observedSelectivity implements step 5: the fraction of scanned rows that
// survived the filter, unavailable when nothing was scanned.
func observedSelectivity(scan core.ScanRecord) (float64, bool) {
	if scan.RowsScanned == 0 {
		return 0, false
	}
	obs := 1.0 - float64(scan.RowsRemovedFilter)/float64(max64(scan.RowsScanned, 1))
	return obs, true
}

// compositeSelectivity implements step 6: the minimum base selectivity
// among constituent columns, blended with the observed selectivity when
// available, clamped to [1e-9, 1].
func compositeSelectivity(baseByColumn []float64, scan core.ScanRecord) float64 {
	minBase := 1.0
	for _, b := range baseByColumn {
		if b < minBase {
			minBase = b
		}
	}
	if len(baseByColumn) == 0 {
		minBase = 0.5
	}

	final := minBase
	if obs, ok := observedSelectivity(scan); ok {
		final = 0.6*obs + 0.4*minBase
	}
	return clamp(final, 1e-9, 1)
}

// improvementForSelectivity implements the piecewise table in step 7.
func improvementForSelectivity(selectivity float64) float64 {
	switch {
	case selectivity < 0.001:
		return 0.98
	case selectivity < 0.01:
		return 0.95
	case selectivity < 0.05:
		return 0.85
	case selectivity < 0.10:
		return 0.70
	case selectivity < 0.20:
		return 0.50
	default:
		return 0.20
	}
}

// correlationPenalty implements step 7's second half: an adjustment using
// the leading column's correlation.
func correlationPenalty(base, correlation float64) float64 {
	if correlation < 0 {
		correlation = -correlation
	}
	return base * (1 - 0.15*correlation)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
