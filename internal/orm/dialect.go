// Package orm is the generic query layer behind the content store.
// This file implements the database dialect abstraction.
//
// Dialect isolates the differences between the supported engines:
//   - Driver registration name (sqlite3 vs pgx)
//   - Placeholder format (? vs $1, $2)
//   - Upsert syntax (ON CONFLICT ... DO NOTHING / DO UPDATE)
//   - Classification of driver errors as constraint violations
//
// Supported databases:
//   - SQLite 3.24+ through github.com/mattn/go-sqlite3
//   - PostgreSQL 12+ through github.com/jackc/pgx/v5/stdlib
//
// Usage example:
//
//	dialect, err := orm.DialectFor("sqlite3")
//	session, err := orm.Open(ctx, dialect, "file:blog.db?_foreign_keys=on")
package orm

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

var (
	SQLite     = &SQLiteDialect{}
	PostgreSQL = &PostgreSQLDialect{}
)

// Dialect abstracts database-specific SQL features.
type Dialect interface {
	// Name identifies the engine in logs and metrics ("sqlite3", "postgres").
	Name() string

	// DriverName is the database/sql driver registration name.
	DriverName() string

	// PlaceholderFormat returns the bind variable format squirrel should emit.
	PlaceholderFormat() sq.PlaceholderFormat

	// UpsertClause renders the statement suffix for insert-or-update.
	// An empty updateCols renders a DO NOTHING clause.
	UpsertClause(tableName string, conflictCols []string, updateCols []string) string

	// IsConstraintError reports whether err is an integrity constraint
	// failure (foreign key, unique, not null, check).
	IsConstraintError(err error) bool
}

// DialectFor resolves a dialect by driver or engine name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return PostgreSQL, nil
	default:
		return nil, fmt.Errorf("orm: unsupported dialect %q", name)
	}
}

// buildOnConflictUpsert renders the ON CONFLICT clause shared by SQLite and
// PostgreSQL. excludedPrefix is the pseudo-table holding the proposed row.
func buildOnConflictUpsert(conflictCols, updateCols []string, excludedPrefix string) string {
	if len(conflictCols) == 0 {
		return ""
	}

	conflictTarget := strings.Join(conflictCols, ", ")
	if len(updateCols) == 0 {
		return fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", conflictTarget)
	}

	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		updates[i] = fmt.Sprintf("%s=%s.%s", col, excludedPrefix, col)
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET ", conflictTarget) + strings.Join(updates, ", ")
}

// PostgreSQLDialect implements Dialect for PostgreSQL via pgx.
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) Name() string       { return "postgres" }
func (d *PostgreSQLDialect) DriverName() string { return "pgx" }

func (d *PostgreSQLDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Dollar
}

func (d *PostgreSQLDialect) UpsertClause(tableName string, conflictCols []string, updateCols []string) string {
	return buildOnConflictUpsert(conflictCols, updateCols, "EXCLUDED")
}

// IsConstraintError matches SQLSTATE class 23 (integrity constraint violation).
func (d *PostgreSQLDialect) IsConstraintError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}

// SQLiteDialect implements Dialect for SQLite via mattn/go-sqlite3.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string       { return "sqlite3" }
func (d *SQLiteDialect) DriverName() string { return "sqlite3" }

func (d *SQLiteDialect) PlaceholderFormat() sq.PlaceholderFormat {
	return sq.Question
}

func (d *SQLiteDialect) UpsertClause(tableName string, conflictCols []string, updateCols []string) string {
	return buildOnConflictUpsert(conflictCols, updateCols, "excluded")
}

func (d *SQLiteDialect) IsConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
