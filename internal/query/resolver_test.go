package query

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	bq "github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/cardex/internal/db"
	"github.com/kailas-cloud/cardex/internal/db/bleveidx"
	"github.com/kailas-cloud/cardex/internal/domain/schema"
)

type fieldMap map[string]schema.FieldType

func (m fieldMap) Type(name string) (schema.FieldType, bool) {
	t, ok := m[name]
	return t, ok
}

var testFields = fieldMap{
	"name":            schema.Text,
	"types":           schema.TextGroup,
	"hp":              schema.Numeric,
	"attacks.damage":  schema.NumericGroup,
	"number":          schema.NumericLike,
	"nationalPokedex": schema.NumericLikeGroup,
}

func TestResolve_FieldRouting(t *testing.T) {
	r := NewResolver(testFields)

	t.Run("numeric point", func(t *testing.T) {
		q, ok := r.Resolve("hp:60").(*bq.NumericRangeQuery)
		if !ok {
			t.Fatalf("expected NumericRangeQuery, got %T", r.Resolve("hp:60"))
		}
		if q.Field() != "hp" || *q.Min != 60 || *q.Max != 60 || !*q.InclusiveMin || !*q.InclusiveMax {
			t.Errorf("unexpected point query %+v", q)
		}
	})

	t.Run("numeric-like literal stays numeric", func(t *testing.T) {
		q, ok := r.Resolve("number:5").(*bq.NumericRangeQuery)
		if !ok || q.Field() != "number" {
			t.Fatalf("expected numeric query on number, got %#v", q)
		}
	})

	t.Run("numeric-like text goes to shadow", func(t *testing.T) {
		q, ok := r.Resolve("number:SV01").(*bq.MatchQuery)
		if !ok {
			t.Fatalf("expected MatchQuery, got %T", r.Resolve("number:SV01"))
		}
		if q.Field() != "_number_" || q.Match != "sv01" {
			t.Errorf("field = %q, match = %q", q.Field(), q.Match)
		}
	})

	t.Run("text is lower-cased", func(t *testing.T) {
		q, ok := r.Resolve("types:Fire").(*bq.MatchQuery)
		if !ok || q.Field() != "types" || q.Match != "fire" {
			t.Fatalf("unexpected %#v", q)
		}
		if q.Analyzer != bleveidx.TextAnalyzer {
			t.Errorf("analyzer = %q", q.Analyzer)
		}
	})

	t.Run("wildcard on numeric-like uses shadow", func(t *testing.T) {
		q, ok := r.Resolve("number:SV*0?").(*bq.WildcardQuery)
		if !ok {
			t.Fatalf("expected WildcardQuery, got %T", r.Resolve("number:SV*0?"))
		}
		if q.Field() != "_number_" || q.Wildcard != "sv*0?" {
			t.Errorf("field = %q, wildcard = %q", q.Field(), q.Wildcard)
		}
	})

	t.Run("wildcard on text field drops escapes", func(t *testing.T) {
		q, ok := r.Resolve(`name:Ch?r\-*`).(*bq.WildcardQuery)
		if !ok {
			t.Fatalf("expected WildcardQuery, got %T", r.Resolve(`name:Ch?r\-*`))
		}
		if q.Field() != "name" || q.Wildcard != "ch?r-*" {
			t.Errorf("field = %q, wildcard = %q", q.Field(), q.Wildcard)
		}
	})

	t.Run("prefix on own field", func(t *testing.T) {
		q, ok := r.Resolve("name:Char*").(*bq.PrefixQuery)
		if !ok || q.Field() != "name" || q.Prefix != "char" {
			t.Fatalf("unexpected %#v", q)
		}
	})

	t.Run("fuzzy on numeric-like uses shadow", func(t *testing.T) {
		q, ok := r.Resolve("nationalPokedex:abc~1").(*bq.FuzzyQuery)
		if !ok || q.Field() != "_nationalPokedex_" || q.Fuzziness != 1 {
			t.Fatalf("unexpected %#v", q)
		}
	})
}

func TestResolve_Ranges(t *testing.T) {
	r := NewResolver(testFields)

	q, ok := r.Resolve("hp:[15 TO 25}").(*bq.NumericRangeQuery)
	if !ok {
		t.Fatalf("expected NumericRangeQuery, got %T", r.Resolve("hp:[15 TO 25}"))
	}
	if *q.Min != 15 || *q.Max != 25 || !*q.InclusiveMin || *q.InclusiveMax {
		t.Errorf("unexpected range %+v", q)
	}

	open, ok := r.Resolve("hp:[100 TO *]").(*bq.NumericRangeQuery)
	if !ok || open.Max != nil || *open.Min != 100 {
		t.Fatalf("unexpected open range %#v", open)
	}

	text, ok := r.Resolve("number:[A TO c]").(*bq.TermRangeQuery)
	if !ok {
		t.Fatalf("expected TermRangeQuery, got %T", r.Resolve("number:[A TO c]"))
	}
	if text.Field() != "_number_" || text.Min != "a" || text.Max != "c" {
		t.Errorf("unexpected text range %+v", text)
	}

	name, ok := r.Resolve("name:[a TO m]").(*bq.TermRangeQuery)
	if !ok || name.Field() != "name" {
		t.Fatalf("unexpected %#v", name)
	}
}

func TestResolve_NegationRewrite(t *testing.T) {
	r := NewResolver(testFields)

	b, ok := r.Resolve("-name:pikachu").(*bq.BooleanQuery)
	if !ok {
		t.Fatalf("expected BooleanQuery, got %T", r.Resolve("-name:pikachu"))
	}
	must, ok := b.Must.(*bq.ConjunctionQuery)
	if !ok || len(must.Conjuncts) != 1 {
		t.Fatalf("expected one must clause, got %#v", b.Must)
	}
	if _, ok := must.Conjuncts[0].(*bq.MatchAllQuery); !ok {
		t.Errorf("must clause = %T, want MatchAllQuery", must.Conjuncts[0])
	}
	if b.MustNot == nil {
		t.Error("expected prohibited clause to be kept")
	}
}

func TestResolve_BlankAndMalformed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := NewResolver(testFields, WithLogger(zap.New(core)))

	for _, blank := range []string{"", "   "} {
		if _, ok := r.Resolve(blank).(*bq.MatchAllQuery); !ok {
			t.Errorf("Resolve(%q) should match all", blank)
		}
	}

	if _, ok := r.Resolve("name:(pikachu").(*bq.MatchNoneQuery); !ok {
		t.Error("unbalanced parenthesis should match nothing")
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zap.DebugLevel {
		t.Fatalf("expected one debug entry, got %+v", entries)
	}

	if _, ok := r.Resolve("name:(a OR b)~").(*bq.MatchNoneQuery); !ok {
		t.Error("fuzzy on a group should match nothing")
	}
}

func TestResolve_BareQuery(t *testing.T) {
	r := NewResolver(testFields)

	p, ok := r.Resolve("Char").(*bq.PrefixQuery)
	if !ok {
		t.Fatalf("expected PrefixQuery, got %T", r.Resolve("Char"))
	}
	if p.Field() != "name" || p.Prefix != "char" {
		t.Errorf("unexpected prefix %+v", p)
	}

	c, ok := r.Resolve("Mr. Mi").(*bq.ConjunctionQuery)
	if !ok || len(c.Conjuncts) != 2 {
		t.Fatalf("expected two-word conjunction, got %T", r.Resolve("Mr. Mi"))
	}
	if m, ok := c.Conjuncts[0].(*bq.MatchQuery); !ok || m.Match != "mr." {
		t.Errorf("first word = %#v", c.Conjuncts[0])
	}
	if p, ok := c.Conjuncts[1].(*bq.PrefixQuery); !ok || p.Prefix != "mi" {
		t.Errorf("last word = %#v", c.Conjuncts[1])
	}

	// grammar characters in a bare query are literal
	lit, ok := r.Resolve("(x*").(*bq.PrefixQuery)
	if !ok || lit.Prefix != "(x*" {
		t.Fatalf("unexpected %#v", lit)
	}
}

func TestResolve_CustomNormalizer(t *testing.T) {
	r := NewResolver(testFields, WithNormalizer("name", func(s string) string { return s }))
	q, ok := r.Resolve("name:Pikachu").(*bq.MatchQuery)
	if !ok || q.Match != "Pikachu" {
		t.Fatalf("unexpected %#v", q)
	}
}

func TestResolve_AgainstIndex(t *testing.T) {
	def := db.NewIndex("card").
		Text("name").
		Numeric("hp").
		Numeric("number").Text("_number_").
		MustBuild()
	s, err := bleveidx.Create(filepath.Join(t.TempDir(), "card"), def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	docs := []db.Document{
		{ID: "a", Fields: map[string]any{"name": "Pikachu", "hp": 10.0, "number": 5.0, "_number_": "5"}},
		{ID: "b", Fields: map[string]any{"name": "Raichu", "hp": 20.0, "_number_": "abc"}},
		{ID: "c", Fields: map[string]any{"name": "Dark Raichu", "hp": 30.0, "number": 7.0, "_number_": "7"}},
	}
	if err := s.Index(context.Background(), docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := NewResolver(fieldMap{"name": schema.Text, "hp": schema.Numeric, "number": schema.NumericLike})
	tests := []struct {
		query string
		want  []string
	}{
		{"hp:[15 TO 25]", []string{"b"}},
		{"number:5", []string{"a"}},
		{"number:abc*", []string{"b"}},
		{"-name:pikachu", []string{"b", "c"}},
		{"name:pikachu AND -hp:10", nil},
		{"", []string{"a", "b", "c"}},
		{"name:(raichu", nil},
		{"rai", []string{"b", "c"}},
		{"dark rai", []string{"c"}},
		{`name:"dark raichu"`, []string{"c"}},
		{"name:raichu OR hp:10", []string{"a", "b", "c"}},
		{"name:raichu AND hp:{20 TO *]", []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := s.Search(context.Background(), &db.SearchRequest{Query: r.Resolve(tt.query), Size: 10})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := make([]string, 0, len(res.Entries))
			for _, e := range res.Entries {
				got = append(got, e.Key)
			}
			sort.Strings(got)
			if len(got) != len(tt.want) {
				t.Fatalf("hits = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("hits = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
