package record

import (
	"encoding/json"
	"slices"
	"strconv"
)

// Entry is one leaf of a flattened record.
type Entry struct {
	Name  string
	Value any
}

// Flatten walks v depth-first and returns every leaf scalar under its
// dot-joined path. Object keys are visited in sorted order, array elements
// in sequence order. Empty containers and nulls produce no entries.
func Flatten(v any) []Entry {
	var out []Entry
	flatten(v, "", &out)
	return out
}

func flatten(v any, parent string, out *[]Entry) {
	switch t := v.(type) {
	case nil:
	case Record:
		flattenMap(t, parent, out)
	case map[string]any:
		flattenMap(t, parent, out)
	case []any:
		for i, c := range t {
			flatten(c, join(parent, strconv.Itoa(i)), out)
		}
	case []string:
		for i, c := range t {
			flatten(c, join(parent, strconv.Itoa(i)), out)
		}
	default:
		if parent == "" {
			return
		}
		*out = append(*out, Entry{Name: parent, Value: t})
	}
}

func flattenMap(m map[string]any, parent string, out *[]Entry) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		flatten(m[k], join(parent, k), out)
	}
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + Separator + key
}

// IsScalar reports whether v is a leaf value the flattener keeps.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, json.Number, float64, float32, int, int64, int32:
		return true
	default:
		return false
	}
}
