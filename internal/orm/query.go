// This file implements QueryBuilder, the fluent SELECT builder.
//
// QueryBuilder supports:
//   - Conditional filtering (WHERE)
//   - Sorting (ORDER BY)
//   - Pagination (LIMIT/OFFSET)
//   - Column selection, including aggregate columns
//   - Joining (JOIN / LEFT JOIN) and grouping (GROUP BY)
//   - Preloading of many-to-many relations
//
// Usage examples:
//
//	// Newest posts first
//	posts, err := orm.Query[models.Post](session).
//	    OrderBy(store.Posts.CreatedAt.Desc()).
//	    Find(ctx)
//
//	// Categories with the number of linked posts
//	err := orm.Query[models.Category](session).
//	    Select(store.Categories.ID, store.Categories.Name, store.PostCategories.PostID.Count("post_count")).
//	    LeftJoin(store.PostCategorySchema{}, orm.On(store.Categories.ID, store.PostCategories.CategoryID)).
//	    GroupBy(store.Categories.ID, store.Categories.Name).
//	    Scan(ctx, &rows)
package orm

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/arllen133/blogcms/internal/orm/clause"
)

// QueryBuilder is a SQL query builder for model T.
//
// Builder methods mutate and return the receiver. Build a fresh query with
// Query or Repository.Query for each statement.
type QueryBuilder[T any] struct {
	session *Session
	schema  Schema[T]
	builder sq.SelectBuilder

	// columns overrides schema.SelectColumns when set
	columns []string

	table string

	// hasJoin qualifies default columns with the main table name
	hasJoin bool

	preloads []preloadExecutor[T]

	// err stores the first error that occurred during building
	err error
}

type preloadExecutor[T any] func(ctx context.Context, session *Session, results []*T) error

func Query[T any](session *Session) *QueryBuilder[T] {
	schema := LoadSchema[T]()
	table := schema.TableName()

	sb := sq.Select().
		From(table).
		PlaceholderFormat(session.dialect.PlaceholderFormat())

	return &QueryBuilder[T]{
		session: session,
		schema:  schema,
		builder: sb,
		table:   table,
	}
}

// Where adds a condition. Repeated calls are joined with AND.
func (q *QueryBuilder[T]) Where(expr clause.Expression) *QueryBuilder[T] {
	if q.err != nil {
		return q
	}
	sql, args, err := expr.Build()
	if err != nil {
		q.err = err
		return q
	}
	q.builder = q.builder.Where(sq.Expr(sql, args...))
	return q
}

// OrderBy appends sort terms.
func (q *QueryBuilder[T]) OrderBy(orders ...clause.OrderByColumn) *QueryBuilder[T] {
	if q.err != nil {
		return q
	}
	for _, order := range orders {
		sql, _, err := order.Build()
		if err != nil {
			q.err = err
			return q
		}
		q.builder = q.builder.OrderBy(sql)
	}
	return q
}

func (q *QueryBuilder[T]) Limit(n uint64) *QueryBuilder[T] {
	q.builder = q.builder.Limit(n)
	return q
}

func (q *QueryBuilder[T]) Offset(n uint64) *QueryBuilder[T] {
	q.builder = q.builder.Offset(n)
	return q
}

// Select overrides the default column list. Aggregate terms such as
// clause.Count are accepted.
func (q *QueryBuilder[T]) Select(columns ...clause.Columnar) *QueryBuilder[T] {
	q.columns = ResolveColumnNames(columns)
	return q
}

type tableNamer interface {
	TableName() string
}

type joinType int

const (
	joinTypeInner joinType = iota
	joinTypeLeft
)

func (q *QueryBuilder[T]) join(joinType joinType, target tableNamer, ons ...JoinOn) *QueryBuilder[T] {
	if len(ons) == 0 {
		q.err = fmt.Errorf("orm: join %s without ON condition", target.TableName())
		return q
	}

	joinTable := target.TableName()

	onParts := make([]string, 0, len(ons))
	for _, on := range ons {
		left := on.Left
		right := on.Right
		if left.Table == "" {
			left.Table = q.table
		}
		if right.Table == "" {
			right.Table = joinTable
		}
		onParts = append(onParts, left.ColumnName()+" = "+right.ColumnName())
	}

	onSQL := strings.Join(onParts, " AND ")
	switch joinType {
	case joinTypeLeft:
		q.builder = q.builder.LeftJoin(joinTable + " ON " + onSQL)
	default:
		q.builder = q.builder.Join(joinTable + " ON " + onSQL)
	}
	q.hasJoin = true
	return q
}

// Join adds an INNER JOIN. Multiple On conditions are combined with AND.
func (q *QueryBuilder[T]) Join(target tableNamer, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(joinTypeInner, target, ons...)
}

// LeftJoin adds a LEFT JOIN.
func (q *QueryBuilder[T]) LeftJoin(target tableNamer, ons ...JoinOn) *QueryBuilder[T] {
	return q.join(joinTypeLeft, target, ons...)
}

func (q *QueryBuilder[T]) GroupBy(columns ...clause.Columnar) *QueryBuilder[T] {
	q.builder = q.builder.GroupBy(ResolveColumnNames(columns)...)
	return q
}

// WithPreload registers a loader that runs after the main query, such as
// the one returned by ManyToMany.
func (q *QueryBuilder[T]) WithPreload(preload preloadExecutor[T]) *QueryBuilder[T] {
	q.preloads = append(q.preloads, preload)
	return q
}

// Find executes the query and runs registered preloads over the results.
func (q *QueryBuilder[T]) Find(ctx context.Context) ([]*T, error) {
	query, args, err := q.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("orm: failed to build sql: %w", err)
	}

	var results []*T
	if err := q.session.Select(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("orm: query %s: %w", q.table, err)
	}

	for _, preload := range q.preloads {
		if err := preload(ctx, q.session, results); err != nil {
			return nil, fmt.Errorf("orm: preload %s: %w", q.table, err)
		}
	}

	return results, nil
}

// Pluck selects a single column into dest, a pointer to a slice.
func (q *QueryBuilder[T]) Pluck(ctx context.Context, column clause.Columnar, dest any) error {
	if q.err != nil {
		return q.err
	}
	query, args, err := q.builder.Columns(column.ColumnName()).ToSql()
	if err != nil {
		return fmt.Errorf("orm: failed to build sql: %w", err)
	}

	if err := q.session.Select(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("orm: pluck %s: %w", column.ColumnName(), err)
	}
	return nil
}

// Scan executes the query into dest, typically a slice of a projection
// struct carrying extra aggregate columns. Preloads do not run.
func (q *QueryBuilder[T]) Scan(ctx context.Context, dest any) error {
	query, args, err := q.ToSQL()
	if err != nil {
		return fmt.Errorf("orm: failed to build sql: %w", err)
	}

	if err := q.session.Select(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("orm: query %s: %w", q.table, err)
	}
	return nil
}

// Take returns the first row in query order, or ErrNotFound.
func (q *QueryBuilder[T]) Take(ctx context.Context) (*T, error) {
	results, err := q.Limit(1).Find(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0], nil
}

// First is Take ordered by primary key.
func (q *QueryBuilder[T]) First(ctx context.Context) (*T, error) {
	pk := q.schema.PK(nil).Column
	if pk.Table == "" {
		pk.Table = q.table
	}
	return q.OrderBy(clause.OrderByColumn{Column: pk}).Take(ctx)
}

// Count returns the number of matching rows, ignoring limit and offset.
func (q *QueryBuilder[T]) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	query, args, err := q.builder.
		Columns("COUNT(*)").
		RemoveLimit().
		RemoveOffset().
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("orm: failed to build count sql: %w", err)
	}

	var count int64
	err = q.session.Get(ctx, &count, query, args...)
	return count, err
}

// ToSQL renders the statement without executing it.
func (q *QueryBuilder[T]) ToSQL() (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	return q.builder.Columns(q.resolveColumns()...).ToSql()
}

func (q *QueryBuilder[T]) resolveColumns() []string {
	cols := q.columns
	if len(cols) == 0 {
		cols = q.schema.SelectColumns()
		if q.hasJoin {
			qualified := make([]string, len(cols))
			for i, col := range cols {
				qualified[i] = q.table + "." + col
			}
			cols = qualified
		}
	}
	return cols
}
