package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Executor defines the operations shared by *sqlx.DB and *sqlx.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Session manages the database handle and the current transaction.
// A Session bound to a transaction shares the parent's observability config.
type Session struct {
	db       *sqlx.DB // Underlying DB for starting transactions
	executor Executor // Current executor (DB or Tx)
	dialect  Dialect
	obs      *ObservabilityConfig
}

// NewSession wraps an open *sql.DB.
func NewSession(db *sql.DB, dialect Dialect, opts ...SessionOption) *Session {
	xdb := sqlx.NewDb(db, dialect.DriverName())
	s := &Session{
		db:       xdb,
		executor: xdb,
		dialect:  dialect,
		obs:      defaultObservabilityConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects with the dialect's driver and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...SessionOption) (*Session, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("orm: open %s: %w", dialect.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("orm: ping %s: %w", dialect.Name(), err)
	}
	return NewSession(db, dialect, opts...), nil
}

func (s *Session) Dialect() Dialect { return s.dialect }

// DB exposes the underlying pool for connection tuning.
func (s *Session) DB() *sql.DB { return s.db.DB }

func (s *Session) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Session) Close() error {
	return s.db.Close()
}

// InTransaction reports whether the session is bound to a transaction.
func (s *Session) InTransaction() bool {
	_, ok := s.executor.(*sqlx.Tx)
	return ok
}

func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := s.observe(ctx, "exec", query, func(ctx context.Context) error {
		var err error
		res, err = s.executor.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func (s *Session) Select(ctx context.Context, dest any, query string, args ...any) error {
	return s.observe(ctx, "select", query, func(ctx context.Context) error {
		return s.executor.SelectContext(ctx, dest, query, args...)
	})
}

// Get scans a single row into dest. sql.ErrNoRows is translated to ErrNotFound.
func (s *Session) Get(ctx context.Context, dest any, query string, args ...any) error {
	err := s.observe(ctx, "get", query, func(ctx context.Context) error {
		err := s.executor.GetContext(ctx, dest, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	return err
}

// observe runs fn inside a span, records metrics and logs the statement.
// Driver constraint failures are wrapped with ErrConstraint.
func (s *Session) observe(ctx context.Context, operation, query string, fn func(context.Context) error) error {
	ctx, span := s.startSpan(ctx, "orm."+operation)
	defer span.End()
	span.SetAttributes(dbAttributes(s.dialect, operation, query)...)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if err != nil && !errors.Is(err, ErrNotFound) && s.dialect.IsConstraintError(err) {
		err = fmt.Errorf("%w: %w", ErrConstraint, err)
	}

	span.finish(err)
	s.recordMetrics(ctx, operation, duration, err)
	s.logQuery(ctx, operation, query, duration, err)
	return err
}

func (s *Session) Begin(ctx context.Context) (*Session, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Session{
		db:       s.db,
		executor: tx,
		dialect:  s.dialect,
		obs:      s.obs,
	}, nil
}

func (s *Session) Commit() error {
	if tx, ok := s.executor.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return sql.ErrTxDone
}

func (s *Session) Rollback() error {
	if tx, ok := s.executor.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return sql.ErrTxDone
}

// Transaction executes fn within a transaction. Nested calls reuse the
// outer transaction. The transaction rolls back when fn returns an error
// or panics.
func (s *Session) Transaction(ctx context.Context, fn func(txSession *Session) error) (err error) {
	if s.InTransaction() {
		return fn(s)
	}

	txSession, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = txSession.Rollback()
			panic(p)
		} else if err != nil {
			_ = txSession.Rollback()
		}
	}()

	err = fn(txSession)
	if err != nil {
		return err
	}

	return txSession.Commit()
}
