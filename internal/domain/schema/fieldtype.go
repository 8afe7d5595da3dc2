package schema

import (
	"fmt"
	"strings"
)

// FieldType classifies a merged field. It is a bit set: one of TEXT,
// NUMERIC or NUMERIC_LIKE, optionally combined with GROUP.
type FieldType uint8

const (
	// Group marks a repeated field.
	Group FieldType = 1 << iota
	// Text is an analyzed string field.
	Text
	// Numeric is a number field.
	Numeric
	// NumericLike holds values that are numeric in some records and text in others.
	NumericLike

	TextGroup        = Text | Group
	NumericGroup     = Numeric | Group
	NumericLikeGroup = NumericLike | Group
)

var typeNames = map[FieldType]string{
	Text:             "TEXT",
	TextGroup:        "TEXT_GROUP",
	Numeric:          "NUMERIC",
	NumericGroup:     "NUMERIC_GROUP",
	NumericLike:      "NUMERIC_LIKE",
	NumericLikeGroup: "NUMERIC_LIKE_GROUP",
}

// Has reports whether every bit of flag is set.
func (t FieldType) Has(flag FieldType) bool { return t&flag == flag }

// Base returns the type without the GROUP bit.
func (t FieldType) Base() FieldType { return t &^ Group }

// IsGroup reports whether the field is repeated.
func (t FieldType) IsGroup() bool { return t.Has(Group) }

// IsNumeric reports whether the field has a numeric representation.
func (t FieldType) IsNumeric() bool { return t.Has(Numeric) || t.Has(NumericLike) }

// IsValid reports whether t is one of the six persisted classifications.
func (t FieldType) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

func (t FieldType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", uint8(t))
}

// ParseFieldType resolves a persisted type name.
func ParseFieldType(name string) (FieldType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for t, n := range typeNames {
		if n == upper {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown field type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t FieldType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid field type %d", uint8(t))
	}
	return []byte(t.String()), nil
}
