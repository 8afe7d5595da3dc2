// Package resource is the indexer facade of one catalog resource (cards or
// sets): schema inference, document ingestion, search and reconstruction
// of records from their stored payload.
package resource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/db"
	"github.com/kailas-cloud/cardex/internal/db/bleveidx"
	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/schema"
	"github.com/kailas-cloud/cardex/internal/query"
	"github.com/kailas-cloud/cardex/internal/repository/payload"
)

// Served resources.
const (
	Cards = "card"
	Sets  = "set"
)

// PosField holds the insertion position of every document.
const PosField = "_pos_"

const (
	storeDir         = "store"
	defaultBatchSize = 500
)

type state int

const (
	stateBuilding state = iota // observing records
	stateWriting               // schema committed, adding documents
	stateServing               // committed, read-only
)

// Resource wraps one index directory.
//
// The lifecycle is building -> writing -> serving for Create and serving
// for Open. Once serving it is safe for concurrent use.
type Resource struct {
	name   string
	dir    string
	state  state
	schema *schema.Schema
	def    *db.IndexDefinition
	store  db.IndexStore
	// generation identifies the build that produced the index.
	generation string

	resolver  *query.Resolver
	cache     *payload.Cache
	pending   []db.Document
	next      int
	batchSize int

	searchCount   int
	searchTimeout time.Duration

	searchTotal    *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	logger         *zap.Logger
}

// Option configures a Resource.
type Option func(*Resource)

// WithSearchCount caps how many hits a search may return.
func WithSearchCount(n int) Option {
	return func(r *Resource) {
		if n > 0 {
			r.searchCount = n
		}
	}
}

// WithSearchTimeout bounds the wall-clock time of a search.
func WithSearchTimeout(d time.Duration) Option {
	return func(r *Resource) {
		if d > 0 {
			r.searchTimeout = d
		}
	}
}

// WithPayloadCache shares a payload parse cache between resources.
func WithPayloadCache(c *payload.Cache) Option {
	return func(r *Resource) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithBatchSize sets how many documents are buffered before indexing.
func WithBatchSize(n int) Option {
	return func(r *Resource) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithMetrics sets the search counter (labels "resource", "status")
// and duration histogram (label "resource").
func WithMetrics(total *prometheus.CounterVec, duration *prometheus.HistogramVec) Option {
	return func(r *Resource) {
		r.searchTotal = total
		r.searchDuration = duration
	}
}

// WithLogger sets the resource logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resource) {
		if l != nil {
			r.logger = l
		}
	}
}

func newResource(name, dir string, opts []Option) *Resource {
	r := &Resource{
		name:      name,
		dir:       dir,
		batchSize: defaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.cache == nil {
		r.cache = payload.New(nil)
	}
	r.logger = r.logger.With(zap.String("resource", name))
	return r
}

// Create starts a new index for name under dir/name. The directory
// must not hold a previous index.
func Create(dir, name string, opts ...Option) (*Resource, error) {
	r := newResource(name, filepath.Join(dir, name), opts)
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create resource %s: %w", name, err)
	}
	r.schema = schema.New()
	r.state = stateBuilding
	return r, nil
}

// Open loads a committed index from dir/name for serving.
func Open(dir, name string, opts ...Option) (*Resource, error) {
	r := newResource(name, filepath.Join(dir, name), opts)

	path := filepath.Join(r.dir, schema.FileName)
	sch, err := schema.Load(path)
	if err != nil {
		return nil, fmt.Errorf("open resource %s: %w", name, err)
	}
	r.schema = sch
	if fi, err := os.Stat(path); err == nil {
		r.generation = strconv.FormatInt(fi.ModTime().UnixNano(), 36)
	}
	if err := r.define(); err != nil {
		return nil, err
	}

	store, err := bleveidx.Open(filepath.Join(r.dir, storeDir), bleveidx.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("open resource %s: %w", name, err)
	}
	r.store = store
	r.state = stateServing
	r.logger.Info("Resource opened", zap.Int("fields", sch.Len()))
	return r, nil
}

// define commits the schema into an index definition and prepares the resolver.
func (r *Resource) define() error {
	b := db.NewIndex(r.name)
	r.schema.Commit(b)
	b.Numeric(PosField)
	def, err := b.Build()
	if err != nil {
		return fmt.Errorf("define resource %s: %w", r.name, err)
	}
	r.def = def
	r.resolver = query.NewResolver(r.schema, query.WithLogger(r.logger))
	return nil
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.name }

// Generation changes whenever the index is rebuilt. It is empty until
// the resource is opened for serving.
func (r *Resource) Generation() string { return r.generation }

// Schema returns the field classifications.
func (r *Resource) Schema() *schema.Schema { return r.schema }

// ObserveSchema folds one merged record into the schema.
func (r *Resource) ObserveSchema(m record.Merged) error {
	if r.state != stateBuilding {
		return domain.ErrSchemaCommitted
	}
	if err := r.schema.Observe(m); err != nil {
		return fmt.Errorf("observe %s: %w", r.name, err)
	}
	return nil
}

// CommitSchema freezes the schema and creates the physical index.
func (r *Resource) CommitSchema() error {
	if r.state != stateBuilding {
		return domain.ErrSchemaCommitted
	}
	if err := r.define(); err != nil {
		return err
	}
	store, err := bleveidx.Create(
		filepath.Join(r.dir, storeDir), r.def,
		bleveidx.WithBatchSize(r.batchSize),
		bleveidx.WithLogger(r.logger),
	)
	if err != nil {
		return fmt.Errorf("commit schema %s: %w", r.name, err)
	}
	r.store = store
	r.state = stateWriting
	r.logger.Debug("Schema committed", zap.Stringer("definition", r.def))
	return nil
}

// Add buffers one record for indexing. The schema must be committed.
func (r *Resource) Add(ctx context.Context, rec record.Record) error {
	switch r.state {
	case stateBuilding:
		return domain.ErrSchemaNotCommitted
	case stateServing:
		return domain.ErrReadOnly
	}

	doc, err := r.document(rec, r.next)
	if err != nil {
		return fmt.Errorf("add to %s: %w", r.name, err)
	}
	r.next++
	r.pending = append(r.pending, doc)
	if len(r.pending) >= r.batchSize {
		return r.flush(ctx)
	}
	return nil
}

// Commit indexes buffered documents, persists the schema and switches
// the resource to serving.
func (r *Resource) Commit(ctx context.Context) error {
	if r.state != stateWriting {
		if r.state == stateBuilding {
			return domain.ErrSchemaNotCommitted
		}
		return domain.ErrReadOnly
	}
	if err := r.flush(ctx); err != nil {
		return err
	}
	if err := r.schema.Save(filepath.Join(r.dir, schema.FileName)); err != nil {
		return fmt.Errorf("commit %s: %w", r.name, err)
	}
	r.state = stateServing
	r.logger.Info("Resource committed", zap.Int("documents", r.next), zap.Int("fields", r.schema.Len()))
	return nil
}

func (r *Resource) flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.Index(ctx, r.pending); err != nil {
		return fmt.Errorf("index %s: %w", r.name, err)
	}
	r.pending = r.pending[:0]
	return nil
}

// Count returns the number of indexed documents.
func (r *Resource) Count(ctx context.Context) (uint64, error) {
	if r.store == nil {
		return 0, domain.ErrSchemaNotCommitted
	}
	n, err := r.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.name, err)
	}
	return n, nil
}

// Ping reports whether the index answers.
func (r *Resource) Ping(ctx context.Context) error {
	_, err := r.Count(ctx)
	return err
}

// Close releases the index.
func (r *Resource) Close() error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", r.name, err)
	}
	return nil
}
