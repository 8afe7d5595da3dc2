package db

import (
	"errors"
	"strconv"
	"strings"
)

// SortSuffix names the keyword companion of a sortable text field.
const SortSuffix = "__sort"

// SortName returns the physical sort field of a text field.
func SortName(name string) string { return name + SortSuffix }

// IndexFieldType enumerates supported physical field types.
type IndexFieldType int

const (
	// IndexFieldText is an analyzed text field with a keyword sort companion.
	IndexFieldText IndexFieldType = iota
	// IndexFieldNumeric is a float64 field supporting point, range and sort.
	IndexFieldNumeric
	// IndexFieldStored is kept verbatim for retrieval and never indexed.
	IndexFieldStored
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldText:
		return "TEXT"
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldStored:
		return "STORED"
	default:
		return "UNKNOWN"
	}
}

// IndexField describes a single physical field of an index.
type IndexField struct {
	Name  string
	Type  IndexFieldType
	Group bool // repeated values, sorted by min/max
}

// IndexDefinition is the complete physical layout of one index.
type IndexDefinition struct {
	Name   string
	Fields []IndexField
}

// Field returns the definition of the named field.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if strings.HasSuffix(f.Name, SortSuffix) {
			return errors.New("field name uses reserved suffix: " + f.Name)
		}
		if strings.HasPrefix(f.Name, ".") || strings.HasSuffix(f.Name, ".") || strings.Contains(f.Name, "..") {
			return errors.New("field name has an empty path segment: " + f.Name)
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
