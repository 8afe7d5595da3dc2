// Package schema infers per-field classifications from observed records
// and registers the matching physical fields once the corpus has been seen.
package schema

import (
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/cardex/internal/domain"
	"github.com/kailas-cloud/cardex/internal/domain/record"
)

// RawField is the stored-only field holding the compact record payload.
const RawField = "_raw_"

// ShadowName returns the companion text field of a NUMERIC_LIKE field.
func ShadowName(name string) string { return "_" + name + "_" }

// Registrar receives physical field registrations on commit.
type Registrar interface {
	SetText(name string, group bool)
	SetNumeric(name string, group bool)
	SetNumericLike(name, shadow string, group bool)
	SetStored(name string)
}

type setter func(r Registrar, name string)

var setters = map[FieldType]setter{
	Text:             func(r Registrar, n string) { r.SetText(n, false) },
	TextGroup:        func(r Registrar, n string) { r.SetText(n, true) },
	Numeric:          func(r Registrar, n string) { r.SetNumeric(n, false) },
	NumericGroup:     func(r Registrar, n string) { r.SetNumeric(n, true) },
	NumericLike:      func(r Registrar, n string) { r.SetNumericLike(n, ShadowName(n), false) },
	NumericLikeGroup: func(r Registrar, n string) { r.SetNumericLike(n, ShadowName(n), true) },
}

// Schema maps merged field names to their classification.
// It is written by a single builder and becomes read-only after Commit.
type Schema struct {
	mu        sync.RWMutex
	types     map[string]FieldType
	committed bool
}

// New creates an empty schema.
func New() *Schema {
	return &Schema{types: make(map[string]FieldType)}
}

// FromTypes creates a schema from known classifications.
func FromTypes(types map[string]FieldType) (*Schema, error) {
	s := New()
	for name, t := range types {
		if !t.IsValid() {
			return nil, &domain.UnknownFieldTypeError{Field: name, Type: t.String()}
		}
		s.types[name] = t
	}
	return s, nil
}

// Observe folds one merged record into the schema.
//
// A field starts as TEXT. NUMERIC_LIKE is terminal. An integer-typed first
// value forces NUMERIC. Otherwise a NUMERIC field seeing a non-numeric value
// and a TEXT field seeing a numeric one both become NUMERIC_LIKE.
// GROUP is set once any record carries the field as a sequence.
func (s *Schema) Observe(m record.Merged) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committed {
		return domain.ErrSchemaCommitted
	}
	for _, f := range m {
		cur, ok := s.types[f.Name]
		if !ok {
			cur = Text
		}
		next := classify(cur.Base(), f.Values)
		if f.Group || cur.IsGroup() {
			next |= Group
		}
		s.types[f.Name] = next
	}
	return nil
}

func classify(cur FieldType, values []any) FieldType {
	if len(values) == 0 {
		return cur
	}
	switch {
	case cur == NumericLike:
		return NumericLike
	case record.IsInteger(values[0]):
		return Numeric
	case cur == Numeric:
		for _, v := range values {
			if !record.IsNumeric(v) {
				return NumericLike
			}
		}
		return Numeric
	default:
		for _, v := range values {
			if record.IsNumeric(v) {
				return NumericLike
			}
		}
		return Text
	}
}

// Commit freezes the schema and registers every field with reg, followed by
// the stored-only payload field. Registration order is sorted by name.
func (s *Schema) Commit(reg Registrar) {
	s.mu.Lock()
	s.committed = true
	s.mu.Unlock()

	for _, name := range s.Names() {
		t, _ := s.Type(name)
		setters[t](reg, name)
	}
	reg.SetStored(RawField)
}

// Committed reports whether Commit has been called.
func (s *Schema) Committed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

// Type returns the classification of name.
func (s *Schema) Type(name string) (FieldType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[name]
	return t, ok
}

// Has reports whether name is a known field.
func (s *Schema) Has(name string) bool {
	_, ok := s.Type(name)
	return ok
}

// Covers reports whether name is a known field or a path prefix of one,
// so "set" covers "set.name" but "se" does not.
func (s *Schema) Covers(name string) bool {
	if name == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.types[name]; ok {
		return true
	}
	prefix := name + record.Separator
	for n := range s.types {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

// Names returns the known field names in sorted order.
func (s *Schema) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.types))
	for n := range s.types {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of known fields.
func (s *Schema) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.types)
}

// Types returns a copy of the classification table.
func (s *Schema) Types() map[string]FieldType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]FieldType, len(s.types))
	for n, t := range s.types {
		out[n] = t
	}
	return out
}
