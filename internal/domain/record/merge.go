package record

import "strings"

// Field is one merged field: a scalar (Group false, exactly one value)
// or the ordered values of every array element that reduces to Name.
type Field struct {
	Name   string
	Values []any
	Group  bool
}

// Merged is the merged field set of one record, in first-seen order.
type Merged []Field

// Get returns the merged field with the given name.
func (m Merged) Get(name string) (Field, bool) {
	for _, f := range m {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Merge groups flattened entries by their name with numeric segments removed.
// Entries without numeric segments pass through as scalars. A group collects,
// in flattened order, every entry whose stripped name equals the group name,
// so abilities.0.name and abilities.1.name land in abilities.name while a
// sibling array such as attacks.0.name never does.
func Merge(flat []Entry) Merged {
	out := make(Merged, 0, len(flat))
	groups := make(map[string]int)

	for _, e := range flat {
		name, stripped := MergedName(e.Name)
		if !stripped {
			out = append(out, Field{Name: name, Values: []any{e.Value}})
			continue
		}
		if i, ok := groups[name]; ok {
			out[i].Values = append(out[i].Values, e.Value)
			continue
		}
		groups[name] = len(out)
		out = append(out, Field{Name: name, Values: []any{e.Value}, Group: true})
	}
	return out
}

// MergedName strips purely numeric segments from a flattened name.
// The second result reports whether any segment was removed.
func MergedName(flat string) (string, bool) {
	parts := strings.Split(flat, Separator)
	kept := parts[:0:0]
	for _, p := range parts {
		if isDigits(p) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == len(parts) || len(kept) == 0 {
		return flat, false
	}
	return strings.Join(kept, Separator), true
}

// Process flattens and merges r and returns its compact payload.
func Process(r Record) (Merged, string, error) {
	payload, err := r.Payload()
	if err != nil {
		return nil, "", err
	}
	return Merge(Flatten(r)), payload, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
