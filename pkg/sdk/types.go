package cardex

import (
	"encoding/json"
	"fmt"
)

// Resource names a searchable resource.
type Resource string

// Served resources.
const (
	ResourceCards Resource = "card"
	ResourceSets  Resource = "set"
)

// Record is one reconstructed card or set.
type Record map[string]any

// Page is one page of search results.
type Page struct {
	Data       []Record
	Page       int
	PageSize   int
	Count      int
	TotalCount int
	// Partial is set when the search hit the configured timeout. Such a
	// page carries no records and a TotalCount of 0.
	Partial bool
}

// Decode converts a record into T through its JSON form.
func Decode[T any](r Record) (T, error) {
	var out T
	data, err := json.Marshal(r)
	if err != nil {
		return out, fmt.Errorf("cardex: encode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("cardex: decode record: %w", err)
	}
	return out, nil
}

// DecodePage converts every record of p into T.
func DecodePage[T any](p Page) ([]T, error) {
	out := make([]T, 0, len(p.Data))
	for _, r := range p.Data {
		v, err := Decode[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
