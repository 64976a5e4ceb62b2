// Package sqlanalyser implements the SQL Analyser: it turns raw SQL text
// into a structural tree (via pg_query_go, libpg_query's Postgres grammar)
// and performs the context-propagating walk described in spec.md §4.2,
// never executing, optimising, or rewriting the statement.
package sqlanalyser

import (
	"strconv"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/nethalo/indexwright/internal/core"
)

// walkContext is one of the five contexts propagated to column references
// during the tree walk (spec §4.2 "Walk contexts").
type walkContext string

const (
	ctxRoot    walkContext = "root"
	ctxWhere   walkContext = "where"
	ctxJoin    walkContext = "join"
	ctxOrderBy walkContext = "order-by"
	ctxFrom    walkContext = "from"
)

// Parse builds a ParsedQuery from raw SQL text, or returns a
// *core.Error{Kind: KindUnparseableStatement} if the statement cannot be
// structurally parsed.
func Parse(sql string) (*core.ParsedQuery, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, core.NewError(core.KindUnparseableStatement, "sqlanalyser.Parse", sql, err.Error(), err)
	}
	if len(result.Stmts) == 0 {
		return nil, core.NewError(core.KindUnparseableStatement, "sqlanalyser.Parse", sql, "no statement produced by parser", nil)
	}

	pq := core.NewParsedQuery()
	w := &walker{pq: pq}

	for _, raw := range result.Stmts {
		stmt := raw.GetStmt()
		if stmt == nil {
			continue
		}
		w.walkStatement(stmt)
	}

	return pq, nil
}

// walker accumulates extraction state while traversing the tree. It is not
// safe for concurrent use; Parse creates one walker per call and walks every
// statement of the input with it.
type walker struct {
	pq *core.ParsedQuery
}

func (w *walker) walkStatement(node *pg_query.Node) {
	switch {
	case node.GetSelectStmt() != nil:
		w.walkSelect(node.GetSelectStmt())
	case node.GetUpdateStmt() != nil:
		u := node.GetUpdateStmt()
		w.registerRangeVar(u.GetRelation())
		w.walkExpr(u.GetWhereClause(), ctxWhere)
		for _, f := range u.GetFromClause() {
			w.walkFromItem(f)
		}
	case node.GetDeleteStmt() != nil:
		d := node.GetDeleteStmt()
		w.registerRangeVar(d.GetRelation())
		w.walkExpr(d.GetWhereClause(), ctxWhere)
		for _, u := range d.GetUsingClause() {
			w.walkFromItem(u)
		}
	case node.GetInsertStmt() != nil:
		i := node.GetInsertStmt()
		w.registerRangeVar(i.GetRelation())
		if sel := i.GetSelectStmt(); sel != nil {
			w.walkStatement(sel)
		}
	}
}

func (w *walker) walkSelect(sel *pg_query.SelectStmt) {
	if sel == nil {
		return
	}
	// Set-operation selects (UNION/INTERSECT/EXCEPT) compose two child
	// selects; walk both sides, same as a single select.
	if sel.GetLarg() != nil || sel.GetRarg() != nil {
		w.walkSelect(sel.GetLarg())
		w.walkSelect(sel.GetRarg())
		return
	}

	for _, f := range sel.GetFromClause() {
		w.walkFromItem(f)
	}
	w.walkExpr(sel.GetWhereClause(), ctxWhere)
	for _, s := range sel.GetSortClause() {
		if sb := s.GetSortBy(); sb != nil {
			w.walkExpr(sb.GetNode(), ctxOrderBy)
		}
	}
	// Target-list column references sit in the `root` context and are not
	// collected into any column set per rule 4.2.2's sibling rule for
	// `from`: only where/join/order-by populate column sets.
}

// walkFromItem registers base tables/aliases and recurses into JOIN
// conditions under the `join` context.
func (w *walker) walkFromItem(n *pg_query.Node) {
	if n == nil {
		return
	}
	switch {
	case n.GetRangeVar() != nil:
		w.registerRangeVar(n.GetRangeVar())
	case n.GetJoinExpr() != nil:
		j := n.GetJoinExpr()
		w.walkFromItem(j.GetLarg())
		w.walkFromItem(j.GetRarg())
		w.walkExpr(j.GetQuals(), ctxJoin)
	case n.GetRangeSubselect() != nil:
		// Derived tables have no base-table identity to register; their
		// inner columns are out of scope for this analyser (spec is silent
		// on subqueries, and no candidate table exists to attribute them to).
	}
}

func (w *walker) registerRangeVar(rv *pg_query.RangeVar) {
	if rv == nil || rv.GetRelname() == "" {
		return
	}
	table := rv.GetRelname()
	alias := table
	if a := rv.GetAlias(); a != nil && a.GetAliasname() != "" {
		alias = a.GetAliasname()
	}

	found := false
	for _, t := range w.pq.Tables {
		if t == table {
			found = true
			break
		}
	}
	if !found {
		w.pq.Tables = append(w.pq.Tables, table)
	}
	w.pq.AliasToTable[alias] = table
}

// walkExpr descends a boolean/predicate expression tree, classifying
// column references it encounters under ctx (spec §4.2 rules 3-5).
func (w *walker) walkExpr(n *pg_query.Node, ctx walkContext) {
	if n == nil {
		return
	}
	switch {
	case n.GetBoolExpr() != nil:
		for _, a := range n.GetBoolExpr().GetArgs() {
			w.walkExpr(a, ctx)
		}
	case n.GetAExpr() != nil:
		w.walkAExpr(n.GetAExpr(), ctx)
	case n.GetColumnRef() != nil:
		w.classify(n.GetColumnRef(), ctx, RoleFor(ctx), "")
	case n.GetSubLink() != nil:
		// IN/EXISTS subqueries: classify the test expression as `other`,
		// ignore the subquery body (no base table to attribute it to).
		if t := n.GetSubLink().GetTestexpr(); t != nil {
			w.walkExprAsOther(t, ctx)
		}
	}
}

// walkExprAsOther forces `other` role regardless of operator. It is used
// for the test expression of a subquery predicate (e.g. `col IN (SELECT
// ...)`); column references inside function calls are not visited.
func (w *walker) walkExprAsOther(n *pg_query.Node, ctx walkContext) {
	if n == nil {
		return
	}
	if cr := n.GetColumnRef(); cr != nil {
		w.classify(cr, ctx, core.RoleOther, "")
		return
	}
	if ae := n.GetAExpr(); ae != nil {
		if cr := ae.GetLexpr().GetColumnRef(); cr != nil {
			w.classify(cr, ctx, core.RoleOther, "")
		}
		if cr := ae.GetRexpr().GetColumnRef(); cr != nil {
			w.classify(cr, ctx, core.RoleOther, "")
		}
	}
}

// RoleFor returns the default role for a bare column reference that is not
// part of a recognised binary predicate (e.g. a boolean column used
// directly, `WHERE is_active`).
func RoleFor(ctx walkContext) core.PredicateRole {
	if ctx == ctxOrderBy {
		return core.RoleOrderBy
	}
	return core.RoleOther
}

func (w *walker) walkAExpr(ae *pg_query.A_Expr, ctx walkContext) {
	if ae == nil {
		return
	}
	op := opName(ae)
	role := roleForOp(op, ae.Kind)

	lcol := ae.GetLexpr().GetColumnRef()
	rcol := ae.GetRexpr().GetColumnRef()

	literal, hasLiteral := constString(ae.GetRexpr())
	if !hasLiteral {
		literal, hasLiteral = constString(ae.GetLexpr())
	}

	switch {
	case lcol != nil && rcol == nil:
		w.classify(lcol, ctx, role, conditionalLiteral(role, literal, hasLiteral))
	case rcol != nil && lcol == nil:
		w.classify(rcol, ctx, role, conditionalLiteral(role, literal, hasLiteral))
	case lcol != nil && rcol != nil:
		// Column-to-column comparison (e.g. a join predicate written in
		// WHERE): classify both sides, no literal to record.
		w.classify(lcol, ctx, role, "")
		w.classify(rcol, ctx, role, "")
	default:
		// Neither side is a bare column reference (expression on both
		// sides); recurse in case either side is itself a nested predicate.
		w.walkExpr(ae.GetLexpr(), ctx)
		w.walkExpr(ae.GetRexpr(), ctx)
	}
}

func conditionalLiteral(role core.PredicateRole, literal string, has bool) string {
	if role == core.RoleEquality && has {
		return literal
	}
	return ""
}

func opName(ae *pg_query.A_Expr) string {
	for _, n := range ae.GetName() {
		if s := n.GetString_(); s != nil {
			return s.GetSval()
		}
	}
	return ""
}

func roleForOp(op string, kind pg_query.A_Expr_Kind) core.PredicateRole {
	if kind == pg_query.A_Expr_Kind_AEXPR_BETWEEN || kind == pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM {
		return core.RoleRange
	}
	// IN lists, IS [NOT] DISTINCT FROM, NULLIF and ANY/ALL forms also carry
	// an operator name such as "="; only a plain binary operator is an
	// equality or range predicate.
	if kind != pg_query.A_Expr_Kind_AEXPR_OP {
		return core.RoleOther
	}
	switch op {
	case "=":
		return core.RoleEquality
	case "<", ">", "<=", ">=":
		return core.RoleRange
	default:
		return core.RoleOther
	}
}

// constString reports whether n is a literal constant, returning its text
// form.
func constString(n *pg_query.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	c := n.GetAConst()
	if c == nil {
		return "", false
	}
	switch {
	case c.GetIval() != nil:
		return strconv.FormatInt(int64(c.GetIval().GetIval()), 10), true
	case c.GetFval() != nil:
		return c.GetFval().GetFval(), true
	case c.GetSval() != nil:
		return c.GetSval().GetSval(), true
	case c.GetBoolval() != nil:
		if c.GetBoolval().GetBoolval() {
			return "true", true
		}
		return "false", true
	case c.Isnull:
		return "NULL", true
	}
	return "", false
}

// classify resolves cr's qualifying table (non-recursive alias resolution
// per spec §9 "Cyclic alias resolution") and records it under ctx with
// role, applying the stable-classification rule (4.2.5) and, when role is
// equality and a literal was observed, the constant-filter map.
func (w *walker) classify(cr *pg_query.ColumnRef, ctx walkContext, role core.PredicateRole, literal string) {
	if ctx == ctxFrom {
		return // rule 4.2.2
	}
	qualifier, column, ok := splitColumnRef(cr)
	if !ok {
		return
	}

	var ref core.ColumnRef
	if qualifier != "" {
		table, resolved := w.resolveAlias(qualifier)
		if !resolved {
			w.pq.Ambiguous[column] = true
			return
		}
		ref = core.ColumnRef{Table: table, Column: column}
	} else {
		if len(w.pq.Tables) != 1 {
			w.pq.Ambiguous[column] = true
			return
		}
		ref = core.ColumnRef{Table: w.pq.Tables[0], Column: column}
	}

	switch ctx {
	case ctxWhere:
		w.pq.WhereColumns[ref] = true
	case ctxJoin:
		w.pq.JoinColumns[ref] = true
	case ctxOrderBy:
		w.pq.OrderByColumns[ref] = true
	}

	if existing, ok := w.pq.Roles[ref]; !ok || role.Outranks(existing) {
		w.pq.Roles[ref] = role
	} else if role == existing && role == core.RoleEquality {
		// no-op: repeated equality occurrence
	}

	if role == core.RoleEquality && literal != "" {
		w.pq.Literals[ref] = literal
	}
}

// resolveAlias resolves qualifier through the alias map in at most one
// step: an alias that maps to itself (a self-referential cycle) is broken
// at that step rather than followed indefinitely (spec §9).
func (w *walker) resolveAlias(qualifier string) (string, bool) {
	table, ok := w.pq.AliasToTable[qualifier]
	if !ok {
		return "", false
	}
	return table, true
}

// splitColumnRef extracts "qualifier.column" (qualifier may be empty) from
// a ColumnRef node, skipping star-fields.
func splitColumnRef(cr *pg_query.ColumnRef) (qualifier, column string, ok bool) {
	fields := cr.GetFields()
	var parts []string
	for _, f := range fields {
		if s := f.GetString_(); s != nil {
			parts = append(parts, s.GetSval())
		} else if f.GetAStar() != nil {
			return "", "", false
		}
	}
	switch len(parts) {
	case 1:
		return "", parts[0], true
	case 2:
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}
