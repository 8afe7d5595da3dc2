// Package request holds validated catalog requests.
package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/cardex/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength     = 4096
	DefaultMaxPageSize = 250
)

// Request is a validated search over one resource.
type Request struct {
	query    string
	page     int
	pageSize int
	orderBy  []string
	sel      []string
}

// New validates and normalizes search parameters. page is clamped to at
// least 1 and pageSize to [1, maxPageSize]; a non-positive maxPageSize
// means DefaultMaxPageSize.
func New(query string, page, pageSize, maxPageSize int, orderBy, sel []string) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrBadRequest, MaxQueryLength)
	}
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	return Request{
		query:    strings.TrimSpace(query),
		page:     max(page, 1),
		pageSize: max(min(pageSize, maxPageSize), 1),
		orderBy:  orderBy,
		sel:      sel,
	}, nil
}

// Query returns the query string; empty matches everything.
func (r *Request) Query() string { return r.query }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of records per page.
func (r *Request) PageSize() int { return r.pageSize }

// OrderBy returns the raw sort entries.
func (r *Request) OrderBy() []string { return r.orderBy }

// Select returns the raw projection entries.
func (r *Request) Select() []string { return r.sel }

// Start returns the position of the first record of the page.
func (r *Request) Start() int { return (r.page - 1) * r.pageSize }

// Stop returns the position just past the last record of the page.
func (r *Request) Stop() int { return r.page * r.pageSize }

// Get is a validated single-record lookup.
type Get struct {
	id  string
	sel []string
}

// NewGet trims and lower-cases id. An empty id is rejected.
func NewGet(id string, sel []string) (Get, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Get{}, fmt.Errorf("%w: id is required", domain.ErrBadRequest)
	}
	return Get{id: id, sel: sel}, nil
}

// ID returns the normalized identifier.
func (g *Get) ID() string { return g.id }

// Select returns the raw projection entries.
func (g *Get) Select() []string { return g.sel }
