package bleveidx

import (
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
)

// WordDelimiterName is the token filter splitting tokens on punctuation
// and letter/digit boundaries.
const WordDelimiterName = "cardex_word_delimiter"

func init() {
	registry.RegisterTokenFilter(WordDelimiterName, newWordDelimiterFilter)
}

// WordDelimiterFilter keeps every token and, when the token holds
// delimiters, adds its parts and their catenation. "charizard-gx" yields
// charizard-gx, charizard, gx and charizardgx. Parts advance the
// position so phrases over the parts still match.
type WordDelimiterFilter struct{}

func newWordDelimiterFilter(map[string]any, *registry.Cache) (analysis.TokenFilter, error) {
	return &WordDelimiterFilter{}, nil
}

// Filter implements analysis.TokenFilter.
func (f *WordDelimiterFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	out := make(analysis.TokenStream, 0, len(input))
	shift := 0
	for _, tok := range input {
		pos := tok.Position + shift
		parts := wordParts(tok.Term)

		out = append(out, &analysis.Token{
			Term:     tok.Term,
			Start:    tok.Start,
			End:      tok.End,
			Position: pos,
			Type:     tok.Type,
			KeyWord:  tok.KeyWord,
		})
		if tok.KeyWord || len(parts) == 0 {
			continue
		}

		var cat []byte
		for _, p := range parts {
			cat = append(cat, p...)
		}
		if len(parts) == 1 {
			if string(cat) != string(tok.Term) {
				out = append(out, partToken(tok, cat, pos))
			}
			continue
		}
		for i, p := range parts {
			out = append(out, partToken(tok, p, pos+i))
		}
		if string(cat) != string(tok.Term) {
			out = append(out, partToken(tok, cat, pos))
		}
		shift += len(parts) - 1
	}
	return out
}

func partToken(src *analysis.Token, term []byte, pos int) *analysis.Token {
	return &analysis.Token{
		Term:     term,
		Start:    src.Start,
		End:      src.End,
		Position: pos,
		Type:     src.Type,
	}
}

// wordParts splits term into runs of letters or digits. Any other rune
// delimits, and so does a change between letters and digits.
func wordParts(term []byte) [][]byte {
	const (
		none = iota
		letter
		digit
	)
	var (
		parts [][]byte
		start = -1
		class = none
	)
	for i := 0; i < len(term); {
		r, size := utf8.DecodeRune(term[i:])
		c := none
		switch {
		case unicode.IsLetter(r):
			c = letter
		case unicode.IsDigit(r):
			c = digit
		}
		if c != class && start >= 0 {
			parts = append(parts, term[start:i])
			start = -1
		}
		if c != none && start < 0 {
			start = i
		}
		class = c
		i += size
	}
	if start >= 0 {
		parts = append(parts, term[start:])
	}
	return parts
}
