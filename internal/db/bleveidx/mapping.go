package bleveidx

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/cardex/internal/db"
)

// Analyzer names registered on every index.
const (
	TextAnalyzer = "cardex_text"
	SortAnalyzer = "cardex_sort"
)

// buildMapping translates a definition into an explicit, non-dynamic mapping.
// Documents arrive flat with dotted keys and bleve looks each key up as a
// single property, so every field is a root property named in full.
func buildMapping(def *db.IndexDefinition) (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()
	if err := m.AddCustomAnalyzer(TextAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     whitespace.Name,
		"token_filters": []string{lowercase.Name, WordDelimiterName},
	}); err != nil {
		return nil, fmt.Errorf("register text analyzer: %w", err)
	}
	if err := m.AddCustomAnalyzer(SortAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, fmt.Errorf("register sort analyzer: %w", err)
	}
	m.DefaultAnalyzer = TextAnalyzer
	m.IndexDynamic = false
	m.StoreDynamic = false
	m.DocValuesDynamic = false

	root := bleve.NewDocumentMapping()
	root.Dynamic = false
	for _, f := range def.Fields {
		leaf := bleve.NewDocumentMapping()
		leaf.Dynamic = false
		switch f.Type {
		case db.IndexFieldText:
			leaf.AddFieldMapping(textField(f.Name))
			leaf.AddFieldMapping(sortField(db.SortName(f.Name)))
		case db.IndexFieldNumeric:
			leaf.AddFieldMapping(numericField(f.Name))
		case db.IndexFieldStored:
			leaf.AddFieldMapping(storedField(f.Name))
		default:
			return nil, fmt.Errorf("field %s: unsupported type %s", f.Name, f.Type)
		}
		root.AddSubDocumentMapping(f.Name, leaf)
	}
	m.DefaultMapping = root

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("validate mapping: %w", err)
	}
	return m, nil
}

func textField(name string) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Name = name
	fm.Analyzer = TextAnalyzer
	fm.Store = false
	fm.IncludeInAll = false
	fm.IncludeTermVectors = true
	fm.DocValues = false
	return fm
}

func sortField(name string) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Name = name
	fm.Analyzer = SortAnalyzer
	fm.Store = false
	fm.IncludeInAll = false
	fm.IncludeTermVectors = false
	fm.DocValues = true
	return fm
}

func numericField(name string) *mapping.FieldMapping {
	fm := bleve.NewNumericFieldMapping()
	fm.Name = name
	fm.Store = false
	fm.IncludeInAll = false
	fm.DocValues = true
	return fm
}

func storedField(name string) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Name = name
	fm.Analyzer = keyword.Name
	fm.Store = true
	fm.Index = false
	fm.IncludeInAll = false
	fm.IncludeTermVectors = false
	fm.DocValues = false
	return fm
}
