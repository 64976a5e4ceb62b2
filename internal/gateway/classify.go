package gateway

import "strings"

// Classification is the closed set a submitted statement is sorted into
// before any explanatory call is allowed to touch it (spec §4.1 rule 1).
type Classification string

const (
	ClassRead   Classification = "read"
	ClassInsert Classification = "insert"
	ClassUpdate Classification = "update"
	ClassDelete Classification = "delete"
	ClassDDL    Classification = "ddl"
	ClassOther  Classification = "other"
)

var leadingTokenClass = map[string]Classification{
	"SELECT": ClassRead,
	"WITH":   ClassRead, // CTEs are only read-safe when their final statement reads; treated as read, same as the teacher's EXPLAIN allowlist for "(SELECT" wrapping.
	"TABLE":  ClassRead, // Postgres shorthand for SELECT * FROM ...
	"INSERT": ClassInsert,
	"UPDATE": ClassUpdate,
	"DELETE": ClassDelete,
	"CREATE": ClassDDL,
	"ALTER":  ClassDDL,
	"DROP":   ClassDDL,
	"TRUNCATE": ClassDDL,
}

// Classify inspects stmt's leading token and returns its Classification.
func Classify(stmt string) Classification {
	trimmed := strings.TrimSpace(stmt)
	trimmed = strings.TrimPrefix(trimmed, "(")
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ClassOther
	}
	token := strings.ToUpper(fields[0])
	if c, ok := leadingTokenClass[token]; ok {
		return c
	}
	return ClassOther
}

// IsMutating reports whether the classification is anything other than a
// pure read, for the RefusedMutatingExplain safety check (spec §4.1 rule 2).
func (c Classification) IsMutating() bool {
	return c != ClassRead
}
