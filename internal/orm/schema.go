package orm

import (
	"fmt"
	"reflect"

	"github.com/arllen133/blogcms/internal/orm/clause"
)

// PK identifies a row by its primary key column and value.
type PK = clause.Eq

// Schema maps a model to its table and back. Primary keys are assigned by
// the application before insert, so no auto-increment handling exists.
type Schema[T any] interface {
	TableName() string

	SelectColumns() []string

	InsertRow(*T) ([]string, []any)

	// UpdateMap returns the mutable columns. Primary key and creation
	// columns must not appear.
	UpdateMap(*T) map[string]any

	PK(*T) PK
}

var schemas = make(map[reflect.Type]any)

// RegisterSchema binds a schema to its model type. Call from init.
func RegisterSchema[T any](schema Schema[T]) {
	var t T
	schemas[reflect.TypeOf(t)] = schema
}

func LoadSchema[T any]() Schema[T] {
	var t T
	typ := reflect.TypeOf(t)
	if s, ok := schemas[typ]; ok {
		return s.(Schema[T])
	}
	panic(fmt.Sprintf("orm: schema not registered for type %v", typ))
}
