package query

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	defaultFuzzyEdits = 2
	maxFuzzyEdits     = 2
	maxDepth          = 64
)

// Parse parses a query string into a clause tree. Unfielded clauses
// apply to defaultField; adjacent clauses without an operator are OR-ed.
func Parse(input, defaultField string) (Node, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.parseQuery(defaultField, 0)
	if err != nil {
		return nil, err
	}
	if !p.match(TokEOF) {
		return nil, syntaxErrorf(p.current().Pos, "unexpected %v", p.current().Kind)
	}
	return node, nil
}

type parser struct {
	tokens []Token
	pos    int
}

type conjunction int

const (
	conjNone conjunction = iota
	conjAnd
	conjOr
)

type modifier int

const (
	modNone modifier = iota
	modRequired
	modProhibited
)

// parseQuery reads clauses up to EOF or a closing parenthesis.
func (p *parser) parseQuery(field string, depth int) (Node, error) {
	if depth > maxDepth {
		return nil, syntaxErrorf(p.current().Pos, "query nested too deeply")
	}

	var clauses []Clause
	plain := false

	for !p.match(TokEOF) && !p.match(TokRParen) {
		conj := conjNone
		switch p.current().Kind {
		case TokAnd, TokOr:
			if len(clauses) == 0 {
				return nil, syntaxErrorf(p.current().Pos, "operator without left operand")
			}
			conj = conjOr
			if p.match(TokAnd) {
				conj = conjAnd
			}
			p.advance()
		}

		mod := modNone
		switch p.current().Kind {
		case TokPlus:
			mod = modRequired
			p.advance()
		case TokMinus, TokNot:
			mod = modProhibited
			p.advance()
		}

		node, err := p.parseClause(field, depth)
		if err != nil {
			return nil, err
		}
		if len(clauses) == 0 {
			plain = mod == modNone
		}
		clauses = addClause(clauses, conj, mod, node)
	}

	if len(clauses) == 0 {
		return nil, syntaxErrorf(p.current().Pos, "empty query")
	}
	if len(clauses) == 1 && plain {
		return clauses[0].Node, nil
	}
	return &Boolean{Clauses: clauses}, nil
}

// addClause applies classic OR-default semantics: AND makes both sides
// required unless prohibited, OR leaves them optional.
func addClause(clauses []Clause, conj conjunction, mod modifier, node Node) []Clause {
	if len(clauses) > 0 && conj == conjAnd {
		prev := &clauses[len(clauses)-1]
		if prev.Occur != MustNot {
			prev.Occur = Must
		}
	}

	prohibited := mod == modProhibited
	required := mod == modRequired || (conj == conjAnd && !prohibited)

	occur := Should
	switch {
	case prohibited:
		occur = MustNot
	case required:
		occur = Must
	}
	return append(clauses, Clause{Occur: occur, Node: node})
}

func (p *parser) parseClause(field string, depth int) (Node, error) {
	if p.match(TokTerm) && p.peek(1).Kind == TokColon {
		field = p.current().Value
		p.advance()
		p.advance()
	}

	switch p.current().Kind {
	case TokLParen:
		p.advance()
		node, err := p.parseQuery(field, depth+1)
		if err != nil {
			return nil, err
		}
		if !p.match(TokRParen) {
			return nil, syntaxErrorf(p.current().Pos, "expected ')', got %v", p.current().Kind)
		}
		p.advance()
		return p.parseBoost(node)
	case TokTerm:
		return p.parseTerm(field)
	case TokPhrase:
		return p.parsePhrase(field)
	case TokRangeStart:
		return p.parseRange(field)
	case TokEOF:
		return nil, syntaxErrorf(p.current().Pos, "unexpected end of query")
	default:
		return nil, syntaxErrorf(p.current().Pos, "unexpected %v", p.current().Kind)
	}
}

func (p *parser) parseTerm(field string) (Node, error) {
	tok := p.current()
	p.advance()

	if p.match(TokTilde) {
		fz := p.current()
		p.advance()
		edits, err := fuzzyEdits(fz, tok.Value)
		if err != nil {
			return nil, err
		}
		return p.parseBoost(&Fuzzy{Field: field, Text: tok.Value, Edits: edits})
	}

	return p.parseBoost(termNode(field, tok))
}

// termNode classifies a bare token as match-all, term, prefix or wildcard.
func termNode(field string, tok Token) Node {
	if field == "*" && tok.Raw == "*" {
		return &MatchAll{}
	}
	wild := wildcardPositions(tok.Raw)
	switch {
	case len(wild) == 0:
		return &Term{Field: field, Text: tok.Value}
	case len(wild) == 1 && wild[0] == len(tok.Raw)-1 && tok.Raw[len(tok.Raw)-1] == '*':
		return &Prefix{Field: field, Text: unescape(tok.Raw[:len(tok.Raw)-1])}
	default:
		return &Wildcard{Field: field, Raw: tok.Raw}
	}
}

func (p *parser) parsePhrase(field string) (Node, error) {
	tok := p.current()
	p.advance()

	node := &Phrase{Field: field, Text: tok.Value, Raw: tok.Raw}
	if p.match(TokTilde) {
		if p.current().HasNum {
			node.Slop = int(p.current().Num)
		}
		p.advance()
	}
	return p.parseBoost(node)
}

func (p *parser) parseRange(field string) (Node, error) {
	start := p.current()
	p.advance()

	lower, err := p.rangeBound()
	if err != nil {
		return nil, err
	}
	if !p.match(TokTo) {
		return nil, syntaxErrorf(p.current().Pos, "expected TO in range, got %v", p.current().Kind)
	}
	p.advance()
	upper, err := p.rangeBound()
	if err != nil {
		return nil, err
	}
	if !p.match(TokRangeEnd) {
		return nil, syntaxErrorf(p.current().Pos, "unterminated range")
	}
	end := p.current()
	p.advance()

	return p.parseBoost(&Range{
		Field:        field,
		Lower:        lower,
		Upper:        upper,
		IncludeLower: start.Value == "[",
		IncludeUpper: end.Value == "]",
	})
}

// rangeBound returns nil for the open bound "*".
func (p *parser) rangeBound() (*string, error) {
	tok := p.current()
	switch tok.Kind {
	case TokTerm:
		p.advance()
		if tok.Raw == "*" {
			return nil, nil
		}
		return &tok.Value, nil
	case TokPhrase:
		p.advance()
		return &tok.Value, nil
	default:
		return nil, syntaxErrorf(tok.Pos, "expected range bound, got %v", tok.Kind)
	}
}

func (p *parser) parseBoost(node Node) (Node, error) {
	if !p.match(TokCaret) {
		return node, nil
	}
	b := p.current()
	p.advance()
	return &Boost{Node: node, Value: b.Num}, nil
}

// fuzzyEdits converts the ~ argument into an edit distance. Values
// below 1 are legacy similarity ratios scaled by the term length.
func fuzzyEdits(tok Token, text string) (int, error) {
	if !tok.HasNum {
		return defaultFuzzyEdits, nil
	}
	n := tok.Num
	if n >= 1 {
		if n != math.Trunc(n) {
			return 0, syntaxErrorf(tok.Pos, "fractional edit distance %v", n)
		}
		return min(int(n), maxFuzzyEdits), nil
	}
	edits := int((1 - n) * float64(utf8.RuneCountInString(text)))
	return min(edits, maxFuzzyEdits), nil
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) peek(offset int) Token {
	pos := p.pos + offset
	if pos < len(p.tokens) {
		return p.tokens[pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) match(kind TokenKind) bool {
	return p.current().Kind == kind
}

// wildcardPositions returns byte offsets of unescaped * and ? in raw.
func wildcardPositions(raw string) []int {
	var out []int
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '*', '?':
			out = append(out, i)
		}
	}
	return out
}

func unescape(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

const specialChars = `\+-!():^[]"{}~*?|&/`

// Escape backslash-escapes every character with meaning in the query
// grammar so s is read as literal text.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
