package bleveidx

import (
	"context"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"

	"github.com/kailas-cloud/cardex/internal/db"
)

// Search runs req and returns the hits of the [From, From+Size) window
// together with the total number of matches.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	q := req.Query
	if q == nil {
		q = bleve.NewMatchAllQuery()
	}
	size := req.Size
	if size < 0 {
		size = 0
	}
	sr := bleve.NewSearchRequestOptions(q, size, req.From, false)
	sr.Fields = req.Fields
	if order := sortOrder(req.Sort); len(order) > 0 {
		sr.SortByCustom(order)
	}

	res, err := s.index.SearchInContext(ctx, sr)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	out := &db.SearchResult{
		Total:   int(res.Total),
		Entries: make([]db.SearchEntry, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		out.Entries = append(out.Entries, db.SearchEntry{
			Key:    h.ID,
			Score:  h.Score,
			Fields: h.Fields,
		})
	}
	return out, nil
}

func sortOrder(keys []db.SortKey) search.SortOrder {
	order := make(search.SortOrder, 0, len(keys))
	for _, k := range keys {
		if k.ByScore {
			order = append(order, &search.SortScore{Desc: k.Desc})
			continue
		}
		sf := &search.SortField{
			Field:   k.Field,
			Desc:    k.Desc,
			Type:    search.SortFieldAsString,
			Mode:    search.SortFieldDefault,
			Missing: search.SortFieldMissingLast,
		}
		if k.Type == db.IndexFieldNumeric {
			sf.Type = search.SortFieldAsNumber
		} else {
			sf.Field = db.SortName(k.Field)
		}
		if k.Group {
			// smallest value first ascending, largest first descending
			sf.Mode = search.SortFieldMin
			if k.Desc {
				sf.Mode = search.SortFieldMax
			}
		}
		order = append(order, sf)
	}
	return order
}
