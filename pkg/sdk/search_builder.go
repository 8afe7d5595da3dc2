package cardex

import "context"

// SearchBuilder is a fluent builder for one search page.
type SearchBuilder struct {
	svc *ResourceService

	query    string
	orderBy  []string
	sel      []string
	page     int
	pageSize int
}

// OrderBy sorts by fields; a "-" prefix sorts descending. Unknown
// fields are ignored.
func (b *SearchBuilder) OrderBy(fields ...string) *SearchBuilder {
	b.orderBy = append(b.orderBy, fields...)
	return b
}

// Select limits the returned fields. Dotted paths select nested fields.
func (b *SearchBuilder) Select(fields ...string) *SearchBuilder {
	b.sel = append(b.sel, fields...)
	return b
}

// Page sets the 1-based page number.
func (b *SearchBuilder) Page(n int) *SearchBuilder {
	b.page = n
	return b
}

// PageSize sets the page size, clamped to the configured maximum.
func (b *SearchBuilder) PageSize(n int) *SearchBuilder {
	b.pageSize = n
	return b
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (Page, error) {
	return b.svc.search(ctx, b)
}

// All walks every page and returns the matching records, stopping at
// the first partial page.
func (b *SearchBuilder) All(ctx context.Context) ([]Record, error) {
	var out []Record
	for page := max(b.page, 1); ; page++ {
		b.page = page
		p, err := b.Do(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Data...)
		if p.Partial || p.Count == 0 || page*p.PageSize >= p.TotalCount {
			return out, nil
		}
	}
}
