package db

import "errors"

// Sentinel errors for storage operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op constants name the failing operation for error context.
const (
	OpCreateIndex = "INDEX.CREATE"
	OpOpenIndex   = "INDEX.OPEN"
	OpBatch       = "INDEX.BATCH"
	OpSearch      = "INDEX.SEARCH"
	OpCount       = "INDEX.COUNT"
	OpClose       = "INDEX.CLOSE"
	OpGet         = "GET"
	OpSet         = "SET"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
