package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/db"
	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/schema"
)

const listDelimiter = ","

// Hits is one window of a ranked or sorted hit list.
type Hits struct {
	// Total counts every match of the query. The search count caps the
	// entries that can be fetched, not Total.
	Total int
	// Start is the position of the first entry in the full hit list.
	Start   int
	Entries []db.SearchEntry
	// Partial is set when the search timed out. bleve hands back no hits
	// collected before the deadline, so a partial result has no entries
	// and a Total of 0.
	Partial bool
}

// Search runs q and returns the hits in [start, stop). A blank q matches
// every document; sort lists field names, "-" prefixed for descending.
// A negative stop means no upper bound. Hits beyond the configured
// search count are never returned, though Total still counts them.
func (r *Resource) Search(ctx context.Context, q string, sort []string, start, stop int) (*Hits, error) {
	if r.store == nil {
		return nil, domain.ErrSchemaNotCommitted
	}
	start = max(start, 0)
	if r.searchCount > 0 && (stop < 0 || stop > r.searchCount) {
		stop = r.searchCount
	}
	size := 0
	switch {
	case stop < 0:
		size = max(maxWindow-start, 0)
	case stop > start:
		size = stop - start
	}

	req := &db.SearchRequest{
		Query:  r.resolver.Resolve(q),
		Sort:   r.SortKeys(sort),
		From:   start,
		Size:   size,
		Fields: []string{schema.RawField},
	}

	sctx := ctx
	if r.searchTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, r.searchTimeout)
		defer cancel()
	}

	began := time.Now()
	res, err := r.store.Search(sctx, req)
	r.observe(began)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			r.inc("timeout")
			r.logger.Warn("Search timed out",
				zap.String("query", q),
				zap.Duration("timeout", r.searchTimeout),
			)
			return &Hits{Start: start, Partial: true}, nil
		}
		r.inc("error")
		return nil, fmt.Errorf("search %s: %w", r.name, err)
	}
	r.inc("ok")
	return &Hits{Total: res.Total, Start: start, Entries: res.Entries}, nil
}

// maxWindow bounds an unbounded window.
const maxWindow = 1 << 20

// SortKeys parses sort entries. Entries may hold comma separated lists;
// unknown fields are dropped. Ties, and the relevance order used when no
// field is left, are broken by insertion position.
func (r *Resource) SortKeys(sort []string) []db.SortKey {
	var keys []db.SortKey
	for _, entry := range sort {
		for _, part := range strings.Split(entry, listDelimiter) {
			field := strings.ReplaceAll(strings.TrimSpace(part), " ", "")
			name := strings.TrimPrefix(field, "-")
			t, ok := r.schema.Type(name)
			if !ok {
				continue
			}
			key := db.SortKey{
				Field: name,
				Desc:  strings.HasPrefix(field, "-"),
				Type:  db.IndexFieldText,
				Group: t.IsGroup(),
			}
			if t.IsNumeric() {
				key.Type = db.IndexFieldNumeric
			}
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		keys = append(keys, db.SortKey{ByScore: true, Desc: true})
	}
	return append(keys, db.SortKey{Field: PosField, Type: db.IndexFieldNumeric})
}

// Get fetches one record by external id, or by position when id is all digits.
func (r *Resource) Get(ctx context.Context, id string, sel []string) (record.Record, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if pos, ok := position(id); ok {
		return r.At(ctx, pos, sel)
	}
	return r.Lookup(ctx, id, sel)
}

// At fetches the record at insertion position pos.
func (r *Resource) At(ctx context.Context, pos int, sel []string) (record.Record, error) {
	if pos < 0 {
		return nil, domain.ErrNotFound
	}
	v := float64(pos)
	incl := true
	q := bleve.NewNumericRangeInclusiveQuery(&v, &v, &incl, &incl)
	q.SetField(PosField)
	return r.one(ctx, &db.SearchRequest{Query: q, Size: 1, Fields: []string{schema.RawField}}, sel)
}

// Lookup fetches the record whose id is id.
func (r *Resource) Lookup(ctx context.Context, id string, sel []string) (record.Record, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	q := bleve.NewDocIDQuery([]string{id})
	return r.one(ctx, &db.SearchRequest{Query: q, Size: 1, Fields: []string{schema.RawField}}, sel)
}

func (r *Resource) one(ctx context.Context, req *db.SearchRequest, sel []string) (record.Record, error) {
	if r.store == nil {
		return nil, domain.ErrSchemaNotCommitted
	}
	res, err := r.store.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.name, err)
	}
	if len(res.Entries) == 0 {
		return nil, domain.ErrNotFound
	}
	hits := &Hits{Total: res.Total, Entries: res.Entries}
	for rec, err := range r.Iterate(hits, sel, 0, 1) {
		return rec, err
	}
	return nil, domain.ErrNotFound
}

func position(id string) (int, bool) {
	if id == "" || len(id) > 9 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return 0, false
		}
		n = n*10 + int(id[i]-'0')
	}
	return n, true
}

func (r *Resource) inc(status string) {
	if r.searchTotal != nil {
		r.searchTotal.WithLabelValues(r.name, status).Inc()
	}
}

func (r *Resource) observe(began time.Time) {
	if r.searchDuration != nil {
		r.searchDuration.WithLabelValues(r.name).Observe(time.Since(began).Seconds())
	}
}
