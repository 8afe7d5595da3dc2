package query

import (
	"strconv"
	"strings"
	"unicode"
)

// Token represents a lexical token.
type Token struct {
	Kind  TokenKind
	Value string // unescaped text
	Raw   string // text as written, escapes kept
	Num   float64
	Pos   int
	// HasNum is set on ~ and ^ tokens followed by a number.
	HasNum bool
}

// TokenKind is the type of token.
type TokenKind int

const (
	TokTerm TokenKind = iota
	TokPhrase
	TokColon
	TokAnd
	TokOr
	TokNot
	TokPlus
	TokMinus
	TokLParen
	TokRParen
	TokRangeStart // [ or {
	TokRangeEnd   // ] or }
	TokTo
	TokTilde
	TokCaret
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokTerm:
		return "Term"
	case TokPhrase:
		return "Phrase"
	case TokColon:
		return "Colon"
	case TokAnd:
		return "And"
	case TokOr:
		return "Or"
	case TokNot:
		return "Not"
	case TokPlus:
		return "Plus"
	case TokMinus:
		return "Minus"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokRangeStart:
		return "RangeStart"
	case TokRangeEnd:
		return "RangeEnd"
	case TokTo:
		return "To"
	case TokTilde:
		return "Tilde"
	case TokCaret:
		return "Caret"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Lexer tokenizes a query string in the classic field:value syntax.
type Lexer struct {
	input   []rune
	pos     int
	inRange bool
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	return &Lexer{input: []rune(input)}
}

// Lex tokenizes the entire input.
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: l.pos}, nil
	}
	if l.inRange {
		return l.nextInRange()
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case ':':
		l.pos++
		return Token{Kind: TokColon, Pos: start}, nil
	case '(':
		l.pos++
		return Token{Kind: TokLParen, Pos: start}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen, Pos: start}, nil
	case '[', '{':
		l.pos++
		l.inRange = true
		return Token{Kind: TokRangeStart, Value: string(ch), Pos: start}, nil
	case ']', '}':
		return Token{}, syntaxErrorf(start, "unexpected %q outside a range", ch)
	case '+':
		l.pos++
		return Token{Kind: TokPlus, Pos: start}, nil
	case '-':
		l.pos++
		return Token{Kind: TokMinus, Pos: start}, nil
	case '!':
		l.pos++
		return Token{Kind: TokNot, Pos: start}, nil
	case '"':
		return l.scanPhrase()
	case '~':
		l.pos++
		return l.scanModifierNumber(TokTilde, start)
	case '^':
		l.pos++
		tok, err := l.scanModifierNumber(TokCaret, start)
		if err == nil && !tok.HasNum {
			return Token{}, syntaxErrorf(start, "boost requires a number")
		}
		return tok, err
	}

	if ch == '&' && l.peek(1) == '&' {
		l.pos += 2
		return Token{Kind: TokAnd, Pos: start}, nil
	}
	if ch == '|' && l.peek(1) == '|' {
		l.pos += 2
		return Token{Kind: TokOr, Pos: start}, nil
	}

	return l.scanTerm()
}

func (l *Lexer) nextInRange() (Token, error) {
	start := l.pos
	ch := l.input[l.pos]
	switch ch {
	case ']', '}':
		l.pos++
		l.inRange = false
		return Token{Kind: TokRangeEnd, Value: string(ch), Pos: start}, nil
	case '"':
		return l.scanPhrase()
	}

	var val, raw strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if unicode.IsSpace(c) || c == ']' || c == '}' {
			break
		}
		if c == '\\' {
			if l.pos+1 >= len(l.input) {
				return Token{}, syntaxErrorf(l.pos, "dangling escape")
			}
			raw.WriteRune(c)
			raw.WriteRune(l.input[l.pos+1])
			val.WriteRune(l.input[l.pos+1])
			l.pos += 2
			continue
		}
		raw.WriteRune(c)
		val.WriteRune(c)
		l.pos++
	}
	if raw.String() == "TO" {
		return Token{Kind: TokTo, Value: "TO", Raw: "TO", Pos: start}, nil
	}
	return Token{Kind: TokTerm, Value: val.String(), Raw: raw.String(), Pos: start}, nil
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

func (l *Lexer) scanPhrase() (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var val, raw strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case '"':
			l.pos++
			return Token{Kind: TokPhrase, Value: val.String(), Raw: raw.String(), Pos: start}, nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return Token{}, syntaxErrorf(l.pos, "dangling escape")
			}
			raw.WriteRune(ch)
			raw.WriteRune(l.input[l.pos+1])
			val.WriteRune(l.input[l.pos+1])
			l.pos += 2
		default:
			raw.WriteRune(ch)
			val.WriteRune(ch)
			l.pos++
		}
	}

	return Token{}, syntaxErrorf(start, "unterminated phrase")
}

func (l *Lexer) scanModifierNumber(kind TokenKind, start int) (Token, error) {
	numStart := l.pos
	for l.pos < len(l.input) && (unicode.IsDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	if l.pos == numStart {
		return Token{Kind: kind, Pos: start}, nil
	}
	s := string(l.input[numStart:l.pos])
	num, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Token{}, syntaxErrorf(numStart, "invalid number %q", s)
	}
	return Token{Kind: kind, Num: num, HasNum: true, Pos: start}, nil
}

func (l *Lexer) scanTerm() (Token, error) {
	start := l.pos
	var val, raw strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' {
			if l.pos+1 >= len(l.input) {
				return Token{}, syntaxErrorf(l.pos, "dangling escape")
			}
			raw.WriteRune(ch)
			raw.WriteRune(l.input[l.pos+1])
			val.WriteRune(l.input[l.pos+1])
			l.pos += 2
			continue
		}
		if !isTermChar(ch) {
			break
		}
		raw.WriteRune(ch)
		val.WriteRune(ch)
		l.pos++
	}

	if l.pos == start {
		return Token{}, syntaxErrorf(start, "unexpected character %q", l.input[start])
	}

	switch raw.String() {
	case "AND":
		return Token{Kind: TokAnd, Pos: start}, nil
	case "OR":
		return Token{Kind: TokOr, Pos: start}, nil
	case "NOT":
		return Token{Kind: TokNot, Pos: start}, nil
	}
	return Token{Kind: TokTerm, Value: val.String(), Raw: raw.String(), Pos: start}, nil
}

// isTermChar reports whether ch may continue a term. '+' and '-' are
// operators only at the start of a term.
func isTermChar(ch rune) bool {
	if unicode.IsSpace(ch) {
		return false
	}
	switch ch {
	case ':', '(', ')', '[', ']', '{', '}', '"', '^', '~', '!', '\\':
		return false
	}
	return true
}
