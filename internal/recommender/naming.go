package recommender

import "strings"

// maxIdentifierLength is Postgres's platform-safe identifier length
// (NAMEDATALEN 64, minus the trailing null byte).
const maxIdentifierLength = 63

// indexName implements spec §4.4 step 12's naming convention:
// idx_<table>_<col1>_<col2>..., truncated to a platform-safe length, with
// a trailing _partial when a filter predicate is present and _covering
// when include columns are present.
func indexName(table string, columns []string, hasFilter, hasInclude bool) string {
	var b strings.Builder
	b.WriteString("idx_")
	b.WriteString(table)
	for _, c := range columns {
		b.WriteString("_")
		b.WriteString(c)
	}

	suffix := ""
	if hasFilter {
		suffix += "_partial"
	}
	if hasInclude {
		suffix += "_covering"
	}

	name := b.String()
	if len(name)+len(suffix) > maxIdentifierLength {
		name = name[:maxIdentifierLength-len(suffix)]
	}
	return name + suffix
}
