package recommender

import (
	"sort"

	"github.com/nethalo/indexwright/internal/core"
)

// candidate bundles everything the ordering/proposal pipeline needs about
// one candidate column for a scan.
type candidate struct {
	Column      string
	Role        core.PredicateRole
	Base        float64
	Stats       core.ColumnStats
	Literal     string
	HasLiteral  bool
	IsOrderBy   bool
}

// orderCandidates implements spec §4.4 step 8: partition into
// equality/range/other, equality first, then range, then other; append
// order-by-only columns at the end if not already present; within a
// partition order by ascending base selectivity (more selective first).
func orderCandidates(cands []candidate) []candidate {
	var eq, rng, other, orderOnly []candidate
	present := map[string]bool{}

	for _, c := range cands {
		if c.IsOrderBy && c.Role != core.RoleEquality && c.Role != core.RoleRange {
			orderOnly = append(orderOnly, c)
			continue
		}
		present[c.Column] = true
		switch c.Role {
		case core.RoleEquality:
			eq = append(eq, c)
		case core.RoleRange:
			rng = append(rng, c)
		default:
			other = append(other, c)
		}
	}

	sortBySelectivity(eq)
	sortBySelectivity(rng)
	sortBySelectivity(other)
	sortBySelectivity(orderOnly)

	out := append([]candidate{}, eq...)
	out = append(out, rng...)
	out = append(out, other...)
	for _, c := range orderOnly {
		if !present[c.Column] {
			out = append(out, c)
			present[c.Column] = true
		}
	}
	return out
}

func sortBySelectivity(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Base < cs[j].Base })
}
