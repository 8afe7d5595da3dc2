package query

// Node represents a parsed query clause.
type Node interface {
	isNode()
}

// Occur is how a clause takes part in a boolean query.
type Occur int

const (
	Should Occur = iota
	Must
	MustNot
)

func (o Occur) String() string {
	switch o {
	case Must:
		return "MUST"
	case MustNot:
		return "MUST_NOT"
	default:
		return "SHOULD"
	}
}

// Clause is one member of a Boolean.
type Clause struct {
	Occur Occur
	Node  Node
}

// Boolean combines clauses. With no Must clause at least one Should
// clause has to match.
type Boolean struct {
	Clauses []Clause
}

func (*Boolean) isNode() {}

// MatchAll matches every document (*:*).
type MatchAll struct{}

func (*MatchAll) isNode() {}

// Term is a single literal on a field.
type Term struct {
	Field string
	Text  string
}

func (*Term) isNode() {}

// Phrase is a quoted literal. Raw keeps escapes so unescaped
// wildcards inside the quotes can be told apart.
type Phrase struct {
	Field string
	Text  string
	Raw   string
	Slop  int
}

func (*Phrase) isNode() {}

// Prefix matches terms starting with Text.
type Prefix struct {
	Field string
	Text  string
}

func (*Prefix) isNode() {}

// Wildcard matches terms against a pattern of * and ?. Raw keeps
// escapes so escaped wildcard characters stay literal.
type Wildcard struct {
	Field string
	Raw   string
}

func (*Wildcard) isNode() {}

// Fuzzy matches terms within Edits edits of Text.
type Fuzzy struct {
	Field string
	Text  string
	Edits int
}

func (*Fuzzy) isNode() {}

// Range is a bounded or half-open interval. A nil bound is open.
type Range struct {
	Field        string
	Lower        *string
	Upper        *string
	IncludeLower bool
	IncludeUpper bool
}

func (*Range) isNode() {}

// Boost scales the score of Node.
type Boost struct {
	Node  Node
	Value float64
}

func (*Boost) isNode() {}
