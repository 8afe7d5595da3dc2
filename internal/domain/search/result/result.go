// Package result holds the shapes returned by catalog reads.
package result

import "github.com/kailas-cloud/cardex/internal/domain/record"

// Page is one page of search results.
type Page struct {
	Data       []record.Record `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Count      int             `json:"count"`
	TotalCount int             `json:"totalCount"`
	// Partial is set when the search timed out. It is never serialized.
	Partial bool `json:"-"`
}

// NewPage creates a page; Count is derived from data.
func NewPage(data []record.Record, page, pageSize, totalCount int) Page {
	if data == nil {
		data = []record.Record{}
	}
	return Page{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Count:      len(data),
		TotalCount: totalCount,
	}
}
