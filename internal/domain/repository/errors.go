package repository

import "errors"

// Common repository errors.
// These errors provide a consistent error interface across different storage implementations.
var (
	// ErrNotFound indicates the requested record was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a record with the same identifier already exists.
	ErrAlreadyExists = errors.New("already exists")
)
