// This file implements the Repository type, the typed CRUD entry point.
//
// Repository provides type-safe database operations for model T:
//   - Create (Create, BatchCreate, Upsert)
//   - Read (FindOne, Query)
//   - Update (Update, UpdateColumns)
//   - Delete (Delete, DeleteWhere)
//   - Conditional scoping (Where)
package orm

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/arllen133/blogcms/internal/orm/clause"
)

// Repository manages CRUD operations for model T.
//
// Where returns a new Repository, so a shared Repository is never mutated
// by callers adding scopes.
//
// Usage example:
//
//	posts := orm.NewRepository[models.Post](session)
//
//	post := &models.Post{Title: "Intro", Content: "<p>Hello world</p>"}
//	if err := posts.Create(ctx, post); err != nil {
//	    return err
//	}
//
//	post, err := posts.FindOne(ctx, post.ID)
type Repository[T any] struct {
	session *Session
	schema  Schema[T]
	scopes  []clause.Expression
}

// NewRepository creates a Repository bound to session, which may be a
// transaction session. T must be registered via RegisterSchema.
func NewRepository[T any](session *Session) *Repository[T] {
	return &Repository[T]{
		session: session,
		schema:  LoadSchema[T](),
		scopes:  make([]clause.Expression, 0),
	}
}

// Where returns a new Repository with appended conditions. Scopes apply
// to Update, UpdateColumns, Delete, DeleteWhere and FindOne.
func (r *Repository[T]) Where(conds ...clause.Expression) *Repository[T] {
	newRepo := *r
	newRepo.scopes = append(slices.Clone(r.scopes), conds...)
	return &newRepo
}

// Create inserts a record. BeforeCreate runs first so models can assign
// their key and timestamps.
func (r *Repository[T]) Create(ctx context.Context, model *T) error {
	if err := triggerBeforeCreate(ctx, model); err != nil {
		return err
	}

	cols, vals := r.schema.InsertRow(model)

	query, args, err := sq.Insert(r.schema.TableName()).
		Columns(cols...).
		Values(vals...).
		PlaceholderFormat(r.session.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.session.Exec(ctx, query, args...); err != nil {
		return err
	}

	return triggerAfterCreate(ctx, model)
}

// BatchCreate inserts all models in a single statement. An empty slice is
// a no-op.
func (r *Repository[T]) BatchCreate(ctx context.Context, models []*T) error {
	query, args, err := r.batchInsert(ctx, models, "")
	if err != nil || query == "" {
		return err
	}

	if _, err := r.session.Exec(ctx, query, args...); err != nil {
		return err
	}

	for _, model := range models {
		if err := triggerAfterCreate(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository[T]) batchInsert(ctx context.Context, models []*T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, nil
	}

	for _, model := range models {
		if err := triggerBeforeCreate(ctx, model); err != nil {
			return "", nil, err
		}
	}

	builder := sq.Insert(r.schema.TableName()).
		PlaceholderFormat(r.session.dialect.PlaceholderFormat())

	for i, model := range models {
		cols, vals := r.schema.InsertRow(model)
		if i == 0 {
			builder = builder.Columns(cols...)
		}
		builder = builder.Values(vals...)
	}

	if suffix != "" {
		builder = builder.Suffix(suffix)
	}
	return builder.ToSql()
}

type upsertConfig struct {
	conflictCols []string
	updateCols   []string
	updateSet    bool
}

// UpsertOption configures Upsert and BatchUpsert.
type UpsertOption func(*upsertConfig)

// OnConflict names the unique or primary key columns that detect a conflict.
// Defaults to the primary key column.
func OnConflict(columns ...clause.Columnar) UpsertOption {
	return func(c *upsertConfig) {
		c.conflictCols = ResolveColumnNames(columns)
	}
}

// DoUpdate names the columns to overwrite on conflict. Called with no
// columns it renders DO NOTHING. Without the option every non-conflict
// column is overwritten.
func DoUpdate(columns ...clause.Columnar) UpsertOption {
	return func(c *upsertConfig) {
		c.updateCols = ResolveColumnNames(columns)
		c.updateSet = true
	}
}

func (r *Repository[T]) upsertSuffix(cols []string, opts []UpsertOption) string {
	config := &upsertConfig{}
	for _, opt := range opts {
		opt(config)
	}

	conflictCols := config.conflictCols
	if len(conflictCols) == 0 {
		conflictCols = []string{r.schema.PK(nil).Column.Name}
	}

	updateCols := config.updateCols
	if !config.updateSet {
		for _, col := range cols {
			if !slices.Contains(conflictCols, col) {
				updateCols = append(updateCols, col)
			}
		}
	}

	return r.session.dialect.UpsertClause(r.schema.TableName(), conflictCols, updateCols)
}

// Upsert inserts model or resolves the conflict per opts.
func (r *Repository[T]) Upsert(ctx context.Context, model *T, opts ...UpsertOption) error {
	if err := triggerBeforeCreate(ctx, model); err != nil {
		return err
	}

	cols, vals := r.schema.InsertRow(model)

	query, args, err := sq.Insert(r.schema.TableName()).
		Columns(cols...).
		Values(vals...).
		Suffix(r.upsertSuffix(cols, opts)).
		PlaceholderFormat(r.session.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.session.Exec(ctx, query, args...); err != nil {
		return err
	}

	return triggerAfterCreate(ctx, model)
}

// BatchUpsert is the multi-row form of Upsert.
func (r *Repository[T]) BatchUpsert(ctx context.Context, models []*T, opts ...UpsertOption) error {
	if len(models) == 0 {
		return nil
	}
	cols, _ := r.schema.InsertRow(models[0])

	query, args, err := r.batchInsert(ctx, models, r.upsertSuffix(cols, opts))
	if err != nil {
		return err
	}

	if _, err := r.session.Exec(ctx, query, args...); err != nil {
		return err
	}

	for _, model := range models {
		if err := triggerAfterCreate(ctx, model); err != nil {
			return err
		}
	}
	return nil
}

// Update writes the schema's UpdateMap for the row identified by the
// model's primary key. Returns ErrNotFound when no row matched.
func (r *Repository[T]) Update(ctx context.Context, model *T) error {
	if err := triggerBeforeUpdate(ctx, model); err != nil {
		return err
	}

	pk := r.schema.PK(model)
	builder := sq.Update(r.schema.TableName()).
		SetMap(r.schema.UpdateMap(model)).
		Where(sq.Eq{pk.Column.Name: pk.Value})

	if err := r.execScoped(ctx, builder); err != nil {
		return err
	}

	return triggerAfterUpdate(ctx, model)
}

// UpdateColumns updates the given columns of the row with primary key id
// without loading it. Hooks do not run.
func (r *Repository[T]) UpdateColumns(ctx context.Context, id any, assignments ...clause.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	builder := sq.Update(r.schema.TableName()).
		Where(sq.Eq{r.schema.PK(nil).Column.Name: id})

	for _, assignment := range assignments {
		builder = builder.Set(assignment.Column.ColumnName(), assignment.Value)
	}

	return r.execScoped(ctx, builder)
}

func (r *Repository[T]) execScoped(ctx context.Context, builder sq.UpdateBuilder) error {
	for _, scope := range r.scopes {
		builder = builder.Where(sqlizer(scope))
	}

	query, args, err := builder.
		PlaceholderFormat(r.session.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return err
	}

	return r.expectRows(r.session.Exec(ctx, query, args...))
}

// Delete removes the row with primary key id. Returns ErrNotFound when no
// row matched.
func (r *Repository[T]) Delete(ctx context.Context, id any) error {
	builder := sq.Delete(r.schema.TableName()).
		Where(sq.Eq{r.schema.PK(nil).Column.Name: id})

	for _, scope := range r.scopes {
		builder = builder.Where(sqlizer(scope))
	}

	query, args, err := builder.
		PlaceholderFormat(r.session.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return err
	}

	return r.expectRows(r.session.Exec(ctx, query, args...))
}

// DeleteWhere removes every row matching the repository scopes and returns
// the number of rows removed. Refuses to run without a scope.
func (r *Repository[T]) DeleteWhere(ctx context.Context) (int64, error) {
	if len(r.scopes) == 0 {
		return 0, fmt.Errorf("orm: DeleteWhere on %s requires a scope", r.schema.TableName())
	}

	builder := sq.Delete(r.schema.TableName())
	for _, scope := range r.scopes {
		builder = builder.Where(sqlizer(scope))
	}

	query, args, err := builder.
		PlaceholderFormat(r.session.dialect.PlaceholderFormat()).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.session.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *Repository[T]) expectRows(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Query returns a QueryBuilder over T.
func (r *Repository[T]) Query() *QueryBuilder[T] {
	q := Query[T](r.session)
	for _, scope := range r.scopes {
		q = q.Where(scope)
	}
	return q
}

// FindOne loads a record by primary key. Returns ErrNotFound on a miss.
func (r *Repository[T]) FindOne(ctx context.Context, id any) (*T, error) {
	pkMeta := r.schema.PK(nil)
	return r.Query().Where(clause.Eq{Column: pkMeta.Column, Value: id}).First(ctx)
}
