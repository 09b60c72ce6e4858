package field

import "github.com/arllen133/blogcms/internal/orm/clause"

// String is a typed reference to a text column.
type String struct {
	column clause.Column
}

func (s String) Column() clause.Column { return s.column }

func (s String) ColumnName() string {
	return s.column.ColumnName()
}

var _ clause.Columnar = String{}

// WithColumn returns a copy of s bound to the named column.
func (s String) WithColumn(name string) String {
	column := s.column
	column.Name = name
	return String{column: column}
}

// WithTable returns a copy of s qualified by table.
func (s String) WithTable(name string) String {
	column := s.column
	column.Table = name
	return String{column: column}
}

func (s String) Eq(value string) clause.Expression {
	return clause.Eq{Column: s.column, Value: value}
}

func (s String) Neq(value string) clause.Expression {
	return clause.Neq{Column: s.column, Value: value}
}

func (s String) Like(pattern string) clause.Expression {
	return clause.Like{Column: s.column, Value: pattern}
}

func (s String) In(values ...string) clause.Expression {
	return clause.IN{Column: s.column, Values: toAny(values)}
}

func (s String) NotIn(values ...string) clause.Expression {
	return clause.Not{Expr: clause.IN{Column: s.column, Values: toAny(values)}}
}

func (s String) IsNull() clause.Expression {
	return clause.IsNull{Column: s.column}
}

func (s String) Set(val string) clause.Assignment {
	return clause.Assignment{Column: s.column, Value: val}
}

func (s String) Asc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: s.column}
}

func (s String) Desc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: s.column, Desc: true}
}

// Count returns a COUNT(column) select term aliased as alias.
func (s String) Count(alias string) clause.Count {
	return clause.Count{Column: s.column, Alias: alias}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
