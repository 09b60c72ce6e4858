package orm

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no rows.
	ErrNotFound = errors.New("orm: record not found")

	// ErrConstraint wraps driver errors the dialect classifies as integrity
	// constraint violations. The driver error stays in the chain.
	ErrConstraint = errors.New("orm: constraint violation")
)
