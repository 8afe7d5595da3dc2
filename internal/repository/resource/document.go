package resource

import (
	"strconv"

	"github.com/kailas-cloud/cardex/internal/db"
	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/schema"
)

// document maps a record onto the physical fields registered for the
// schema: strings for text fields, float64 for numeric ones, both for
// numeric-like fields, plus the stored payload and the position.
func (r *Resource) document(rec record.Record, pos int) (db.Document, error) {
	merged, raw, err := record.Process(rec)
	if err != nil {
		return db.Document{}, err
	}

	fields := make(map[string]any, len(merged)+2)
	for _, f := range merged {
		t, ok := r.schema.Type(f.Name)
		if !ok {
			continue
		}
		switch t.Base() {
		case schema.Text:
			fields[f.Name] = value(f, texts(f.Values))
		case schema.Numeric:
			if nums := numbers(f.Values); len(nums) > 0 {
				fields[f.Name] = value(f, nums)
			}
		case schema.NumericLike:
			if nums := numbers(f.Values); len(nums) > 0 {
				fields[f.Name] = value(f, nums)
			}
			fields[schema.ShadowName(f.Name)] = value(f, texts(f.Values))
		}
	}
	fields[schema.RawField] = raw
	fields[PosField] = float64(pos)

	id := rec.ID()
	if id == "" {
		id = strconv.Itoa(pos)
	}
	return db.Document{ID: id, Fields: fields}, nil
}

// value unwraps single-valued scalars.
func value(f record.Field, vals []any) any {
	if !f.Group && len(vals) == 1 {
		return vals[0]
	}
	return vals
}

func texts(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, record.Text(v))
	}
	return out
}

func numbers(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if n, ok := record.ToNumber(v); ok {
			out = append(out, n)
		}
	}
	return out
}
