package cardex

import "github.com/kailas-cloud/cardex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound        = domain.ErrNotFound
	ErrBadRequest      = domain.ErrBadRequest
	ErrInvalidSchema   = domain.ErrInvalidSchema
	ErrUnknownResource = domain.ErrUnknownResource
)
