package field

import (
	"time"

	"github.com/arllen133/blogcms/internal/orm/clause"
)

// Time is a typed reference to a timestamp column.
type Time struct {
	column clause.Column
}

func (t Time) Column() clause.Column { return t.column }

func (t Time) ColumnName() string {
	return t.column.ColumnName()
}

var _ clause.Columnar = Time{}

func (t Time) WithColumn(name string) Time {
	column := t.column
	column.Name = name
	return Time{column: column}
}

func (t Time) WithTable(name string) Time {
	column := t.column
	column.Table = name
	return Time{column: column}
}

func (t Time) Eq(value time.Time) clause.Expression {
	return clause.Eq{Column: t.column, Value: value}
}

func (t Time) Set(val time.Time) clause.Assignment {
	return clause.Assignment{Column: t.column, Value: val}
}

func (t Time) Asc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: t.column}
}

func (t Time) Desc() clause.OrderByColumn {
	return clause.OrderByColumn{Column: t.column, Desc: true}
}
