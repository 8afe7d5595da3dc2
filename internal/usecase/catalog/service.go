// Package catalog serves the read API of the card catalog: single-record
// lookups, paged searches and the enumerated value lists.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/search/request"
	"github.com/kailas-cloud/cardex/internal/domain/search/result"
	"github.com/kailas-cloud/cardex/internal/repository/pagecache"
)

// Service reads the served resources.
type Service struct {
	indexes map[string]Index
	values  map[string][]string
	pages   PageCache
	images  *imageRewriter
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithPageCache shares rendered pages through c.
func WithPageCache(c PageCache) Option {
	return func(s *Service) error {
		s.pages = c
		return nil
	}
}

// WithImageURLBase rebases upstream image URLs onto base. An empty base
// keeps the URLs untouched.
func WithImageURLBase(base string) Option {
	return func(s *Service) error {
		if base == "" {
			return nil
		}
		w, err := newImageRewriter(base)
		if err != nil {
			return fmt.Errorf("image url base: %w", err)
		}
		s.images = w
		return nil
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) error {
		if l != nil {
			s.logger = l
		}
		return nil
	}
}

// New creates a catalog service over the schema resources in indexes and
// the value lists in values, both keyed by resource name.
func New(indexes map[string]Index, values map[string][]string, opts ...Option) (*Service, error) {
	s := &Service{indexes: indexes, values: values, logger: zap.NewNop()}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Get fetches one record of res.
func (s *Service) Get(ctx context.Context, res string, req *request.Get) (record.Record, error) {
	idx, err := s.index(res)
	if err != nil {
		return nil, err
	}
	rec, err := idx.Get(ctx, req.ID(), req.Select())
	if err != nil {
		return nil, fmt.Errorf("get %s %q: %w", res, req.ID(), err)
	}
	return s.images.rewrite(res, rec), nil
}

// Search returns one page of the records of res matching req.
func (s *Service) Search(ctx context.Context, res string, req *request.Request) (result.Page, error) {
	idx, err := s.index(res)
	if err != nil {
		return result.Page{}, err
	}

	key := pagecache.Key{
		Resource:   res,
		Generation: idx.Generation(),
		Query:      req.Query(),
		OrderBy:    req.OrderBy(),
		Select:     req.Select(),
		Page:       req.Page(),
		PageSize:   req.PageSize(),
	}
	if s.pages != nil {
		if p, ok := s.pages.Get(ctx, key); ok {
			return p, nil
		}
	}

	hits, err := idx.Search(ctx, req.Query(), req.OrderBy(), req.Start(), req.Stop())
	if err != nil {
		return result.Page{}, fmt.Errorf("search %s: %w", res, err)
	}

	data := make([]record.Record, 0, len(hits.Entries))
	for rec, err := range idx.Iterate(hits, req.Select(), req.Start(), req.Stop()) {
		if err != nil {
			return result.Page{}, fmt.Errorf("read %s hit: %w", res, err)
		}
		data = append(data, s.images.rewrite(res, rec))
	}

	p := result.NewPage(data, req.Page(), req.PageSize(), hits.Total)
	p.Partial = hits.Partial
	if s.pages != nil {
		s.pages.Put(ctx, key, p)
	}
	return p, nil
}

// Values returns the sorted value list called name.
func (s *Service) Values(name string) ([]string, error) {
	v, ok := s.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownResource, name)
	}
	return v, nil
}

func (s *Service) index(res string) (Index, error) {
	idx, ok := s.indexes[res]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownResource, res)
	}
	return idx, nil
}
