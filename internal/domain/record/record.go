// Package record holds the catalog record model and the flatten/merge
// transform that turns nested JSON into a flat, indexable field set.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Separator joins path segments of flattened and merged field names.
const Separator = "."

// IDField is the record attribute exposed as the external identifier.
const IDField = "id"

// Record is one catalog entity (card or set) decoded from JSON.
// Numbers are kept as json.Number so integers stay distinguishable from floats.
type Record map[string]any

// Decode parses a single JSON object into a Record.
func Decode(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var r Record
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("decode record: not an object")
	}
	return r, nil
}

// DecodeAll parses a JSON array of objects.
func DecodeAll(rd io.Reader) ([]Record, error) {
	dec := json.NewDecoder(rd)
	dec.UseNumber()

	var rs []Record
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return rs, nil
}

// ID returns the lower-cased external identifier, or "" when absent.
func (r Record) ID() string {
	switch v := r[IDField].(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// String returns the attribute at key when it is a string.
func (r Record) String(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// Strings returns the string elements of the list attribute at key.
func (r Record) Strings(key string) []string {
	list, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Payload returns the compact JSON serialization stored alongside the indexed fields.
func (r Record) Payload() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Clone returns a deep copy of r. Nested maps and slices are copied, leaves are shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return cloneValue(map[string]any(r)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Record:
		return Record(cloneValue(map[string]any(t)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, c := range t {
			out[k] = cloneValue(c)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, c := range t {
			out[i] = cloneValue(c)
		}
		return out
	default:
		return v
	}
}
