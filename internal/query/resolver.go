// Package query parses classic field:value query strings and resolves
// them against an inferred schema into bleve queries.
package query

import (
	"errors"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/db/bleveidx"
	"github.com/kailas-cloud/cardex/internal/domain/record"
	"github.com/kailas-cloud/cardex/internal/domain/schema"
)

// DefaultField receives unfielded clauses and bare queries.
const DefaultField = "name"

// FieldTypes looks up the classification of a merged field.
type FieldTypes interface {
	Type(name string) (schema.FieldType, bool)
}

// Normalizer rewrites a literal before it is matched against a text field.
type Normalizer func(string) string

// Resolver builds bleve queries whose clauses target the physical field
// matching each field's classification.
type Resolver struct {
	fields       FieldTypes
	defaultField string
	normalizers  map[string]Normalizer
	normalize    Normalizer
	logger       *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaultField overrides the field used for unfielded clauses.
func WithDefaultField(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.defaultField = name
		}
	}
}

// WithNormalizer sets the literal normalizer for one field.
func WithNormalizer(field string, fn Normalizer) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.normalizers[field] = fn
		}
	}
}

// WithLogger sets the resolver logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a resolver over fields. Text literals are
// lower-cased unless a field has its own normalizer.
func NewResolver(fields FieldTypes, opts ...Option) *Resolver {
	r := &Resolver{
		fields:       fields,
		defaultField: DefaultField,
		normalizers:  make(map[string]Normalizer),
		normalize:    strings.ToLower,
		logger:       zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve turns a user query into a bleve query and never fails:
// a blank query matches everything, a malformed one matches nothing.
func (r *Resolver) Resolve(q string) bq.Query {
	if strings.TrimSpace(q) == "" {
		return bleve.NewMatchAllQuery()
	}

	res, err := r.Parse(q)
	if err != nil {
		var syn *SyntaxError
		if errors.As(err, &syn) {
			r.logger.Debug("Malformed query", zap.String("query", q), zap.Error(err))
		} else {
			r.logger.Error("Query resolution failed", zap.String("query", q), zap.Error(err))
		}
		return bleve.NewMatchNoneQuery()
	}
	return res
}

// Parse resolves q and reports syntax and validation errors. A query
// without ':' is a prefix match on the default field.
func (r *Resolver) Parse(q string) (bq.Query, error) {
	var node Node
	if !strings.Contains(q, ":") {
		node = r.bare(q)
	} else {
		n, err := Parse(q, r.defaultField)
		if err != nil {
			return nil, err
		}
		node = NormalizeNegation(n)
	}

	res, err := r.Build(node)
	if err != nil {
		return nil, err
	}
	if v, ok := res.(bq.ValidatableQuery); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// bare escapes q and appends a wildcard so every word must match and
// the last one may be incomplete.
func (r *Resolver) bare(q string) Node {
	raw := Escape(strings.TrimSpace(q)) + "*"
	return &Phrase{Field: r.defaultField, Text: unescape(raw), Raw: raw}
}

// NormalizeNegation rewrites a top-level query made of one prohibited
// clause into match-all minus that clause.
func NormalizeNegation(n Node) Node {
	b, ok := n.(*Boolean)
	if !ok || len(b.Clauses) != 1 || b.Clauses[0].Occur != MustNot {
		return n
	}
	return &Boolean{Clauses: []Clause{
		{Occur: Must, Node: &MatchAll{}},
		b.Clauses[0],
	}}
}

// Build converts a parsed clause tree into a bleve query.
func (r *Resolver) Build(n Node) (bq.Query, error) {
	switch n := n.(type) {
	case *MatchAll:
		return bleve.NewMatchAllQuery(), nil
	case *Boolean:
		return r.boolean(n)
	case *Term:
		return r.term(n.Field, n.Text), nil
	case *Phrase:
		return r.phrase(n)
	case *Prefix:
		field := r.textField(n.Field)
		q := bleve.NewPrefixQuery(r.normalizer(n.Field)(n.Text))
		q.SetField(field)
		return q, nil
	case *Wildcard:
		q := bleve.NewWildcardQuery(wildcardPattern(r.normalizer(n.Field)(n.Raw)))
		q.SetField(r.textField(n.Field))
		return q, nil
	case *Fuzzy:
		q := bleve.NewFuzzyQuery(r.normalizer(n.Field)(n.Text))
		q.SetFuzziness(n.Edits)
		q.SetField(r.textField(n.Field))
		return q, nil
	case *Range:
		return r.rangeQuery(n), nil
	case *Boost:
		inner, err := r.Build(n.Node)
		if err != nil {
			return nil, err
		}
		if b, ok := inner.(bq.BoostableQuery); ok {
			b.SetBoost(n.Value)
		}
		return inner, nil
	default:
		return nil, errors.New("unsupported query node")
	}
}

func (r *Resolver) boolean(n *Boolean) (bq.Query, error) {
	var must, should, mustNot []bq.Query
	for _, c := range n.Clauses {
		q, err := r.Build(c.Node)
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case Must:
			must = append(must, q)
		case MustNot:
			mustNot = append(mustNot, q)
		default:
			should = append(should, q)
		}
	}
	if len(must) == 0 && len(mustNot) == 0 {
		return bleve.NewDisjunctionQuery(should...), nil
	}
	b := bleve.NewBooleanQuery()
	b.AddMust(must...)
	b.AddShould(should...)
	b.AddMustNot(mustNot...)
	return b, nil
}

// term resolves a literal: numeric point when both field and literal are
// numeric, shadow text for numeric-like fields, analyzed text otherwise.
func (r *Resolver) term(field, text string) bq.Query {
	ft, _ := r.fields.Type(field)
	if ft.IsNumeric() {
		if v, ok := record.ToNumber(text); ok {
			return numericPoint(field, v)
		}
	}
	q := bleve.NewMatchQuery(r.normalizer(field)(text))
	q.Analyzer = bleveidx.TextAnalyzer
	q.SetOperator(bq.MatchQueryOperatorAnd)
	q.SetField(r.textField(field))
	return q
}

// phrase resolves quoted text. Phrases holding unescaped wildcards
// become a conjunction of per-word matches; word order is not enforced
// for those, nor for phrases with a slop.
func (r *Resolver) phrase(n *Phrase) (bq.Query, error) {
	words := splitRaw(n.Raw)
	loose := n.Slop > 0
	for _, w := range words {
		if len(wildcardPositions(w)) > 0 {
			loose = true
			break
		}
	}

	if !loose {
		ft, _ := r.fields.Type(n.Field)
		if ft.IsNumeric() {
			if v, ok := record.ToNumber(n.Text); ok {
				return numericPoint(n.Field, v), nil
			}
		}
		q := bleve.NewMatchPhraseQuery(r.normalizer(n.Field)(n.Text))
		q.Analyzer = bleveidx.TextAnalyzer
		q.SetField(r.textField(n.Field))
		return q, nil
	}

	parts := make([]bq.Query, 0, len(words))
	for _, w := range words {
		q, err := r.Build(termNode(n.Field, Token{Kind: TokTerm, Value: unescape(w), Raw: w}))
		if err != nil {
			return nil, err
		}
		parts = append(parts, q)
	}
	switch len(parts) {
	case 0:
		return bleve.NewMatchNoneQuery(), nil
	case 1:
		return parts[0], nil
	default:
		return bleve.NewConjunctionQuery(parts...), nil
	}
}

func (r *Resolver) rangeQuery(n *Range) bq.Query {
	ft, _ := r.fields.Type(n.Field)
	if ft.IsNumeric() {
		lo, loOK := rangeNumber(n.Lower)
		hi, hiOK := rangeNumber(n.Upper)
		if loOK && hiOK {
			if lo == nil && hi == nil {
				// both bounds open: any value
				lo = &[]float64{-math.MaxFloat64}[0]
			}
			q := bleve.NewNumericRangeInclusiveQuery(lo, hi, &n.IncludeLower, &n.IncludeUpper)
			q.SetField(n.Field)
			return q
		}
	}

	field := r.textField(n.Field)
	norm := r.normalizer(n.Field)
	if n.Lower == nil && n.Upper == nil {
		q := bleve.NewPrefixQuery("")
		q.SetField(field)
		return q
	}
	var lo, hi string
	if n.Lower != nil {
		lo = norm(*n.Lower)
	}
	if n.Upper != nil {
		hi = norm(*n.Upper)
	}
	q := bleve.NewTermRangeInclusiveQuery(lo, hi, &n.IncludeLower, &n.IncludeUpper)
	q.SetField(field)
	return q
}

// rangeNumber parses a bound; an open bound is numeric.
func rangeNumber(s *string) (*float64, bool) {
	if s == nil {
		return nil, true
	}
	v, ok := record.ToNumber(*s)
	if !ok {
		return nil, false
	}
	return &v, true
}

// textField returns the physical text field queried for name.
func (r *Resolver) textField(name string) string {
	if ft, ok := r.fields.Type(name); ok && ft.Has(schema.NumericLike) {
		return schema.ShadowName(name)
	}
	return name
}

func (r *Resolver) normalizer(field string) Normalizer {
	if fn, ok := r.normalizers[field]; ok {
		return fn
	}
	return r.normalize
}

func numericPoint(field string, v float64) bq.Query {
	incl := true
	q := bleve.NewNumericRangeInclusiveQuery(&v, &v, &incl, &incl)
	q.SetField(field)
	return q
}

// splitRaw splits raw phrase text on unescaped whitespace.
func splitRaw(raw string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw):
			cur.WriteByte(c)
			cur.WriteByte(raw[i+1])
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// wildcardPattern drops escapes from a raw wildcard pattern. bleve has
// no literal form for * and ?, so an escaped one matches any single
// character.
func wildcardPattern(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			i++
			c = raw[i]
			if c == '*' || c == '?' {
				c = '?'
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
