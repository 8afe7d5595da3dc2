package db

import "strings"

// IndexBuilder is a fluent builder for index definitions.
// It also receives schema registrations (SetText, SetNumeric, ...).
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Text adds a scalar TEXT field.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText})
}

// TextGroup adds a repeated TEXT field.
func (b *IndexBuilder) TextGroup(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, Group: true})
}

// Numeric adds a scalar NUMERIC field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldNumeric})
}

// NumericGroup adds a repeated NUMERIC field.
func (b *IndexBuilder) NumericGroup(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldNumeric, Group: true})
}

// Stored adds a stored-only field.
func (b *IndexBuilder) Stored(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldStored})
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// SetText registers a text field.
func (b *IndexBuilder) SetText(name string, group bool) {
	b.add(IndexField{Name: name, Type: IndexFieldText, Group: group})
}

// SetNumeric registers a numeric field.
func (b *IndexBuilder) SetNumeric(name string, group bool) {
	b.add(IndexField{Name: name, Type: IndexFieldNumeric, Group: group})
}

// SetNumericLike registers a numeric field and its shadow text field.
func (b *IndexBuilder) SetNumericLike(name, shadow string, group bool) {
	b.SetText(shadow, group)
	b.SetNumeric(name, group)
}

// SetStored registers a stored-only field.
func (b *IndexBuilder) SetStored(name string) {
	b.Stored(name)
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a compact debug representation of the layout.
func (idx *IndexDefinition) String() string {
	parts := []string{"INDEX", idx.Name, "FIELDS"}
	for i := range idx.Fields {
		f := &idx.Fields[i]
		t := f.Type.String()
		if f.Group {
			t += "[]"
		}
		parts = append(parts, f.Name+":"+t)
	}
	return strings.Join(parts, " ")
}
