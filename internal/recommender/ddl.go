package recommender

import "strings"

// buildDDL emits the canonical shape of spec §6:
// CREATE INDEX <name> ON <table> (<col_list>) [INCLUDE (<cover_list>)] [WHERE <predicate>];
func buildDDL(name, table string, columns, includeColumns []string, filterPredicate string) string {
	var b strings.Builder
	b.WriteString("CREATE INDEX ")
	b.WriteString(name)
	b.WriteString(" ON ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(")")

	if len(includeColumns) > 0 {
		b.WriteString(" INCLUDE (")
		b.WriteString(strings.Join(includeColumns, ", "))
		b.WriteString(")")
	}
	if filterPredicate != "" {
		b.WriteString(" WHERE ")
		b.WriteString(filterPredicate)
	}
	b.WriteString(";")
	return b.String()
}
