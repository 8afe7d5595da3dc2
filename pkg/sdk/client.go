package cardex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/search/request"
	"github.com/kailas-cloud/cardex/internal/domain/search/result"
	"github.com/kailas-cloud/cardex/internal/repository/payload"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
	"github.com/kailas-cloud/cardex/internal/repository/stringset"
	cataloguc "github.com/kailas-cloud/cardex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/cardex/internal/usecase/health"
)

// Internal interface for substitution in tests.
type catalogUseCase interface {
	Get(ctx context.Context, res string, req *request.Get) (record.Record, error)
	Search(ctx context.Context, res string, req *request.Request) (result.Page, error)
	Values(name string) ([]string, error)
}

// Client is the cardex SDK entry point.
type Client struct {
	catalog     catalogUseCase
	healthSvc   healthUseCase
	closers     []io.Closer
	maxPageSize int
	obs         *observer
}

// Open opens the index built under dir.
func Open(dir string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{maxPageSize: request.DefaultMaxPageSize}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	resOpts := []resource.Option{
		resource.WithSearchCount(cfg.searchCount),
		resource.WithSearchTimeout(cfg.searchTimeout),
		resource.WithPayloadCache(payload.New(nil)),
	}

	c := &Client{maxPageSize: cfg.maxPageSize, obs: obs}
	indexes := make(map[string]cataloguc.Index)
	pingers := make(map[string]healthuc.Pinger)
	for _, name := range []string{resource.Cards, resource.Sets} {
		res, err := resource.Open(dir, name, resOpts...)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("cardex: %w", err)
		}
		c.closers = append(c.closers, res)
		indexes[name] = res
		pingers[name] = res
	}

	values := make(map[string][]string, len(stringset.Names))
	for _, name := range stringset.Names {
		set, err := stringset.Load(dir, name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("cardex: %w", err)
		}
		values[name] = set.Values()
	}

	catalog, err := cataloguc.New(indexes, values, cataloguc.WithImageURLBase(cfg.imageURLBase))
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("cardex: %w", err)
	}
	c.catalog = catalog
	c.healthSvc = healthuc.New(pingers, nil)
	return c, nil
}

// Close releases every opened index.
func (c *Client) Close() error {
	var errs []error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Cards returns the card resource.
func (c *Client) Cards() *ResourceService {
	return c.resource(ResourceCards)
}

// Sets returns the set resource.
func (c *Client) Sets() *ResourceService {
	return c.resource(ResourceSets)
}

func (c *Client) resource(res Resource) *ResourceService {
	return &ResourceService{
		resource:    res,
		svc:         c.catalog,
		maxPageSize: c.maxPageSize,
		obs:         c.obs,
	}
}

// Types returns every card type seen at build time.
func (c *Client) Types() ([]string, error) { return c.values(stringset.Types) }

// Subtypes returns every card subtype seen at build time.
func (c *Client) Subtypes() ([]string, error) { return c.values(stringset.Subtypes) }

// Supertypes returns every card supertype seen at build time.
func (c *Client) Supertypes() ([]string, error) { return c.values(stringset.Supertypes) }

// Rarities returns every card rarity seen at build time.
func (c *Client) Rarities() ([]string, error) { return c.values(stringset.Rarities) }

func (c *Client) values(name string) ([]string, error) {
	v, err := c.catalog.Values(name)
	if err != nil {
		return nil, fmt.Errorf("%s values: %w", name, err)
	}
	return v, nil
}

// ResourceService reads one resource.
type ResourceService struct {
	resource    Resource
	svc         catalogUseCase
	maxPageSize int
	obs         *observer
}

// Get fetches one record by id, or by insertion position when id is
// all digits. sel limits the returned fields. Returned records are
// owned by the caller.
func (s *ResourceService) Get(ctx context.Context, id string, sel ...string) (rec Record, err error) {
	start := time.Now()
	defer func() { s.obs.observe(s.resource, "get", start, false, err) }()

	req, err := request.NewGet(id, sel)
	if err != nil {
		return nil, err
	}
	r, err := s.svc.Get(ctx, string(s.resource), &req)
	if err != nil {
		return nil, fmt.Errorf("get %s %q: %w", s.resource, id, err)
	}
	return Record(r.Clone()), nil
}

// Search starts a query. A blank q matches every record.
func (s *ResourceService) Search(q string) *SearchBuilder {
	return &SearchBuilder{svc: s, query: q, page: 1}
}

func (s *ResourceService) search(ctx context.Context, b *SearchBuilder) (p Page, err error) {
	start := time.Now()
	defer func() { s.obs.observe(s.resource, "search", start, p.Partial, err) }()

	size := b.pageSize
	if size == 0 {
		size = s.maxPageSize
	}
	req, err := request.New(b.query, b.page, size, s.maxPageSize, b.orderBy, b.sel)
	if err != nil {
		return Page{}, err
	}
	res, err := s.svc.Search(ctx, string(s.resource), &req)
	if err != nil {
		return Page{}, fmt.Errorf("search %s: %w", s.resource, err)
	}
	return toPage(res), nil
}

func toPage(p result.Page) Page {
	data := make([]Record, len(p.Data))
	for i, r := range p.Data {
		data[i] = Record(r.Clone())
	}
	return Page{
		Data:       data,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Count:      p.Count,
		TotalCount: p.TotalCount,
		Partial:    p.Partial,
	}
}
