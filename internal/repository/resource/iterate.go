package resource

import (
	"errors"
	"iter"
	"strings"

	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/schema"
)

var errNoPayload = errors.New("hit has no stored payload")

// Iterate lazily reconstructs the hits at positions [start, stop) of the
// full hit list; a negative stop means up to the last loaded hit. With a
// select list only the selected paths are kept. Without one the parsed
// payload comes from the shared cache and must be cloned before it is
// modified.
func (r *Resource) Iterate(hits *Hits, sel []string, start, stop int) iter.Seq2[record.Record, error] {
	fields := r.Filter(sel)
	lo := max(start-hits.Start, 0)
	hi := len(hits.Entries)
	if stop >= 0 {
		hi = min(hi, stop-hits.Start)
	}

	return func(yield func(record.Record, error) bool) {
		for i := lo; i < hi; i++ {
			raw, _ := hits.Entries[i].Fields[schema.RawField].(string)
			rec, err := r.unprocess(raw, fields)
			if !yield(rec, err) {
				return
			}
		}
	}
}

// Filter keeps the select entries naming a known field or a path prefix
// of one. Entries may hold comma separated lists.
func (r *Resource) Filter(sel []string) []string {
	var out []string
	for _, entry := range sel {
		for _, part := range strings.Split(entry, listDelimiter) {
			field := strings.ReplaceAll(strings.TrimSpace(part), " ", "")
			if r.schema.Covers(field) {
				out = append(out, field)
			}
		}
	}
	return out
}

func (r *Resource) unprocess(raw string, fields []string) (record.Record, error) {
	if raw == "" {
		return nil, errNoPayload
	}
	if len(fields) == 0 {
		return r.cache.Parse(raw)
	}
	rec, err := record.Decode([]byte(raw))
	if err != nil {
		return nil, err
	}
	return project(rec, fields), nil
}

// project copies the selected paths of rec. A dotted path descends into
// objects; through an array it is applied to every object element.
func project(rec record.Record, paths []string) record.Record {
	out := record.Record{}
	for _, p := range paths {
		projectPath(rec, out, strings.Split(p, record.Separator))
	}
	return out
}

func projectPath(src, dst map[string]any, parts []string) {
	key := parts[0]
	v, ok := src[key]
	if !ok {
		return
	}
	if len(parts) == 1 {
		dst[key] = v
		return
	}

	switch t := v.(type) {
	case map[string]any:
		child, ok := dst[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			dst[key] = child
		}
		projectPath(t, child, parts[1:])
	case []any:
		objs := objects(t)
		children, ok := dst[key].([]any)
		if !ok || len(children) != len(objs) {
			children = make([]any, len(objs))
			for i := range children {
				children[i] = make(map[string]any)
			}
			dst[key] = children
		}
		for i, obj := range objs {
			if child, ok := children[i].(map[string]any); ok {
				projectPath(obj, child, parts[1:])
			}
		}
	}
}

func objects(list []any) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
