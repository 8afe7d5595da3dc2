// Package bleveidx implements the inverted-index store on bleve.
package bleveidx

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/db"
)

// Compile-time check: Store implements db.IndexStore.
var _ db.IndexStore = (*Store)(nil)

const defaultBatchSize = 500

// Store is a bleve index opened from one directory.
type Store struct {
	index     bleve.Index
	path      string
	batchSize int
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBatchSize sets how many documents go into one bleve batch.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Create builds an empty index at path from def. The path must not exist.
func Create(path string, def *db.IndexDefinition, opts ...Option) (*Store, error) {
	if err := def.Validate(); err != nil {
		return nil, &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	if _, err := os.Stat(path); err == nil {
		return nil, &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
	}
	m, err := buildMapping(def)
	if err != nil {
		return nil, &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	idx, err := bleve.New(path, m)
	if err != nil {
		return nil, &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	s := newStore(idx, path, opts)
	s.logger.Debug("Index created", zap.String("path", path), zap.Stringer("definition", def))
	return s, nil
}

// Open opens an existing index for reading.
func Open(path string, opts ...Option) (*Store, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return nil, &db.Error{Op: db.OpOpenIndex, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpOpenIndex, Err: err}
	}
	return newStore(idx, path, opts), nil
}

func newStore(idx bleve.Index, path string, opts []Option) *Store {
	s := &Store{index: idx, path: path, batchSize: defaultBatchSize, logger: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Index writes docs in batches. Documents with an existing ID are replaced.
func (s *Store) Index(ctx context.Context, docs []db.Document) error {
	b := s.index.NewBatch()
	flush := func() error {
		if b.Size() == 0 {
			return nil
		}
		if err := s.index.Batch(b); err != nil {
			return &db.Error{Op: db.OpBatch, Err: err}
		}
		b.Reset()
		return nil
	}

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return &db.Error{Op: db.OpBatch, Err: err}
		}
		d := &docs[i]
		if err := b.Index(d.ID, d.Fields); err != nil {
			return &db.Error{Op: db.OpBatch, Err: fmt.Errorf("document %s: %w", d.ID, err)}
		}
		if b.Size() >= s.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// Count returns the number of indexed documents.
func (s *Store) Count(_ context.Context) (uint64, error) {
	n, err := s.index.DocCount()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Path returns the index directory.
func (s *Store) Path() string { return s.path }

// Close releases the index.
func (s *Store) Close() error {
	if err := s.index.Close(); err != nil {
		return &db.Error{Op: db.OpClose, Err: err}
	}
	return nil
}
