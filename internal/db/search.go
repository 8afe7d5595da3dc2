package db

import "github.com/blevesearch/bleve/v2/search/query"

// SortKey orders hits by one physical field.
type SortKey struct {
	Field   string
	Desc    bool
	Type    IndexFieldType
	Group   bool
	ByScore bool // ignore Field and order by relevance
}

// SearchRequest is the input of a search.
type SearchRequest struct {
	Query  query.Query
	Sort   []SortKey
	From   int
	Size   int
	Fields []string // stored fields to load per hit
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]any
}
