package orm

import (
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/arllen133/blogcms/internal/orm/clause"
)

// ResolveColumnNames renders column references for SELECT, GROUP BY and
// upsert column lists.
func ResolveColumnNames(args []clause.Columnar) []string {
	if len(args) == 0 {
		return nil
	}
	cols := make([]string, len(args))
	for i, arg := range args {
		cols[i] = arg.ColumnName()
	}
	return cols
}

// sqlizer adapts a clause.Expression for squirrel's Where.
func sqlizer(expr clause.Expression) sq.Sqlizer {
	return expressionSqlizer{expr}
}

type expressionSqlizer struct {
	expr clause.Expression
}

func (e expressionSqlizer) ToSql() (string, []any, error) {
	return e.expr.Build()
}

// getFieldValue returns the struct field mapped to columnName, matching the
// db tag first and the field name case-insensitively second. Returns nil
// when no field matches.
func getFieldValue(v any, columnName string) any {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		if dbTag := field.Tag.Get("db"); dbTag != "" {
			name, _, _ := strings.Cut(dbTag, ",")
			if name == columnName {
				return val.Field(i).Interface()
			}
		}

		if strings.EqualFold(field.Name, columnName) {
			return val.Field(i).Interface()
		}
	}
	return nil
}
