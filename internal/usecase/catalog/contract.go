package catalog

import (
	"context"
	"iter"

	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/search/result"
	"github.com/kailas-cloud/cardex/internal/repository/pagecache"
	"github.com/kailas-cloud/cardex/internal/repository/resource"
)

// Index is the read side of one served resource.
type Index interface {
	Search(ctx context.Context, q string, sort []string, start, stop int) (*resource.Hits, error)
	Iterate(hits *resource.Hits, sel []string, start, stop int) iter.Seq2[record.Record, error]
	Get(ctx context.Context, id string, sel []string) (record.Record, error)
	Generation() string
}

// PageCache stores rendered search pages.
type PageCache interface {
	Get(ctx context.Context, k pagecache.Key) (result.Page, bool)
	Put(ctx context.Context, k pagecache.Key, p result.Page)
}
