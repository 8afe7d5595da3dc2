package db

import (
	"context"
	"time"
)

// IndexStore is the inverted-index facade combining all sub-interfaces.
type IndexStore interface {
	IndexWriter
	Searcher
	Close() error
}

// IndexWriter ingests documents.
type IndexWriter interface {
	Index(ctx context.Context, docs []Document) error
}

// Searcher runs queries against a committed index.
type Searcher interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	Count(ctx context.Context) (uint64, error)
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Document is one physical document: field name to a scalar or a slice of scalars.
// Text fields take string values, numeric fields float64 values.
type Document struct {
	ID     string
	Fields map[string]any
}
