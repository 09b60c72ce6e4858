// Package clause provides the SQL expression building blocks used by the orm
// package: columns, comparison predicates, boolean combinators, assignments,
// ordering and aggregate columns.
//
// Every Expression renders to a SQL fragment with '?' placeholders plus its
// arguments. Placeholders are rewritten to the dialect's format by squirrel
// when the final statement is built.
package clause

import (
	"fmt"
	"strings"
)

// Columnar is anything that can be rendered as a column reference.
type Columnar interface {
	ColumnName() string
}

// Column references a database column, optionally qualified by table.
type Column struct {
	Table string
	Name  string
}

func (c Column) Column() Column { return c }

// ColumnName returns "table.name" when a table is set, otherwise "name".
func (c Column) ColumnName() string {
	if c.Table != "" {
		return c.Table + "." + c.Name
	}
	return c.Name
}

var _ Columnar = Column{}

// Expression is a renderable SQL fragment.
type Expression interface {
	Build() (sql string, args []any, err error)
}

// Eq renders "column = ?".
type Eq struct {
	Column Column
	Value  any
}

func (e Eq) Build() (string, []any, error) {
	return e.Column.ColumnName() + " = ?", []any{e.Value}, nil
}

// Neq renders "column <> ?".
type Neq struct {
	Column Column
	Value  any
}

func (n Neq) Build() (string, []any, error) {
	return n.Column.ColumnName() + " <> ?", []any{n.Value}, nil
}

// IN renders "column IN (?, ...)". An empty value list never matches.
type IN struct {
	Column Column
	Values []any
}

func (i IN) Build() (string, []any, error) {
	switch len(i.Values) {
	case 0:
		return "1 = 0", nil, nil
	case 1:
		return i.Column.ColumnName() + " = ?", []any{i.Values[0]}, nil
	default:
		placeholders := make([]string, len(i.Values))
		for idx := range i.Values {
			placeholders[idx] = "?"
		}
		sql := fmt.Sprintf("%s IN (%s)", i.Column.ColumnName(), strings.Join(placeholders, ", "))
		return sql, i.Values, nil
	}
}

// Like renders "column LIKE ?".
type Like struct {
	Column Column
	Value  string
}

func (l Like) Build() (string, []any, error) {
	return l.Column.ColumnName() + " LIKE ?", []any{l.Value}, nil
}

// IsNull renders "column IS NULL".
type IsNull struct {
	Column Column
}

func (i IsNull) Build() (string, []any, error) {
	return i.Column.ColumnName() + " IS NULL", nil, nil
}

// And joins expressions with AND. An empty And is always true.
type And []Expression

func (a And) Build() (string, []any, error) {
	return join(a, " AND ", "1 = 1")
}

// Or joins expressions with OR. An empty Or is always false.
type Or []Expression

func (o Or) Build() (string, []any, error) {
	return join(o, " OR ", "1 = 0")
}

func join(exprs []Expression, sep, empty string) (string, []any, error) {
	if len(exprs) == 0 {
		return empty, nil, nil
	}
	sqls := make([]string, 0, len(exprs))
	var args []any
	for _, expr := range exprs {
		sql, exprArgs, err := expr.Build()
		if err != nil {
			return "", nil, err
		}
		sqls = append(sqls, "("+sql+")")
		args = append(args, exprArgs...)
	}
	return strings.Join(sqls, sep), args, nil
}

// Not negates an expression.
type Not struct {
	Expr Expression
}

func (n Not) Build() (string, []any, error) {
	sql, args, err := n.Expr.Build()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}

// Expr is a raw SQL fragment with arguments.
type Expr struct {
	SQL  string
	Vars []any
}

func (e Expr) Build() (string, []any, error) {
	return e.SQL, e.Vars, nil
}

// Assignment is a "column = value" pair used by UPDATE statements.
type Assignment struct {
	Column Column
	Value  any
}

func (a Assignment) Build() (string, []any, error) {
	return a.Column.ColumnName() + " = ?", []any{a.Value}, nil
}

// OrderByColumn is an ORDER BY term.
type OrderByColumn struct {
	Column Column
	Desc   bool
}

func (o OrderByColumn) Build() (string, []any, error) {
	sql := o.Column.ColumnName()
	if o.Desc {
		sql += " DESC"
	}
	return sql, nil, nil
}

// Count is a COUNT(column) select term, aliased when Alias is set.
// A zero Column counts rows with COUNT(*).
type Count struct {
	Column Column
	Alias  string
}

func (c Count) ColumnName() string {
	target := "*"
	if c.Column.Name != "" {
		target = c.Column.ColumnName()
	}
	expr := "COUNT(" + target + ")"
	if c.Alias != "" {
		expr += " AS " + c.Alias
	}
	return expr
}

var _ Columnar = Count{}
