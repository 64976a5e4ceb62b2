package gateway

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// boundary characters used to find the tokens immediately surrounding a
// placeholder, without constructing a structural tree (spec §4.1
// "Placeholder substitution" operates on the gateway's pre-explain text,
// not the SQL Analyser's parse tree).
var tokenBoundary = regexp.MustCompile(`[\s(),]+`)

var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
var comparisonOps = map[string]bool{"=": true, "<": true, ">": true, "<=": true, ">=": true, "<>": true, "!=": true}
var patternOps = map[string]bool{"LIKE": true, "ILIKE": true, "~": true, "~*": true, "SIMILAR": true}
var boolConnectives = map[string]bool{"AND": true, "OR": true, "NOT": true}

// SubstitutePlaceholders replaces every positional placeholder ($N) in sql
// with a type-inferred typed null, so the statement can be handed to
// EXPLAIN without binding a concrete parameter value (spec §4.1).
func SubstitutePlaceholders(sql string) string {
	return placeholderRe.ReplaceAllStringFunc(sql, func(match string) string {
		return typedNullFor(sql, match)
	})
}

func typedNullFor(sql, placeholder string) string {
	idx := strings.Index(sql, placeholder)
	if idx < 0 {
		return "NULL::text"
	}
	before := strings.TrimRight(sql[:idx], " ")
	after := strings.TrimLeft(sql[idx+len(placeholder):], " ")

	prevTok := lastToken(before)
	nextTok := firstToken(after)

	switch {
	case patternOps[strings.ToUpper(prevTok)]:
		return "NULL::text"
	case arithmeticOps[prevTok] || arithmeticOps[nextTok]:
		return "NULL::integer"
	case comparisonOps[prevTok] || comparisonOps[nextTok]:
		return "NULL::integer"
	case boolConnectives[strings.ToUpper(prevTok)] || boolConnectives[strings.ToUpper(nextTok)]:
		return "NULL::boolean"
	default:
		return "NULL::text"
	}
}

func lastToken(s string) string {
	s = strings.TrimSpace(s)
	parts := tokenBoundary.Split(s, -1)
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}

func firstToken(s string) string {
	s = strings.TrimSpace(s)
	parts := tokenBoundary.Split(s, -1)
	for _, p := range parts {
		if p != "" {
			return p
		}
	}
	return ""
}
