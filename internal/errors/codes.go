// Package errors provides the coded domain errors shared by the store,
// the content service and the HTTP layer.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an error that carries no domain code.
	CodeUnknown Code = "UNKNOWN"

	// CodeNotFound means a referenced post or category id does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConstraintViolation means the write would break referential
	// integrity or uniqueness, e.g. an unknown category id on a post.
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"

	// CodeValidation means a required field is missing or malformed.
	// Raised before the store is touched.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeStoreFailure is an opaque lower-layer failure.
	CodeStoreFailure Code = "STORE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConstraintViolation:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether the error message may be shown to API clients.
// Store failures and unknown errors are answered with a generic message.
func (c Code) Public() bool {
	switch c {
	case CodeNotFound, CodeConstraintViolation, CodeValidation:
		return true
	default:
		return false
	}
}
