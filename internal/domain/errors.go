package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest signals malformed request parameters.
	ErrBadRequest = errors.New("bad request")
	// ErrInvalidSchema signals an unreadable or malformed persisted schema.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrSchemaNotCommitted signals a document write before the schema was committed.
	ErrSchemaNotCommitted = errors.New("schema not committed")
	// ErrSchemaCommitted signals a schema observation after commit.
	ErrSchemaCommitted = errors.New("schema already committed")
	// ErrReadOnly signals a write against an index opened for serving.
	ErrReadOnly = errors.New("index is read-only")
	// ErrUnknownResource signals a resource name that is not served.
	ErrUnknownResource = errors.New("unknown resource")
)

// UnknownFieldTypeError wraps ErrInvalidSchema with the offending type name.
type UnknownFieldTypeError struct {
	Field string
	Type  string
}

func (e *UnknownFieldTypeError) Error() string {
	return fmt.Sprintf("%s: field %q has unknown type %q", ErrInvalidSchema.Error(), e.Field, e.Type)
}

func (e *UnknownFieldTypeError) Unwrap() error { return ErrInvalidSchema }
