package token

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"

	"github.com/gosubset/x86c/compiler/diag"
)

type (
	Kind int

	// Token is one lexeme. Literal tokens also carry their decoded value.
	Token struct {
		Kind Kind
		Text string
		Pos  diag.Pos

		Int int64  // Int literals, including rune literals
		Str string // String literals, escapes decoded
	}
)

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String
	Bool
	Keyword
	Op
	Punct
)

// Newline is the text of a semicolon inserted at the end of a line.
const Newline = "\n"

var kindNames = [...]string{
	EOF:     "EOF",
	Ident:   "Ident",
	Int:     "Int",
	Float:   "Float",
	String:  "String",
	Bool:    "Bool",
	Keyword: "Keyword",
	Op:      "Op",
	Punct:   "Punct",
}

var keywords = map[string]struct{}{
	"break":       {},
	"case":        {},
	"chan":        {},
	"const":       {},
	"continue":    {},
	"default":     {},
	"defer":       {},
	"else":        {},
	"fallthrough": {},
	"for":         {},
	"func":        {},
	"go":          {},
	"goto":        {},
	"if":          {},
	"import":      {},
	"interface":   {},
	"map":         {},
	"package":     {},
	"range":       {},
	"return":      {},
	"select":      {},
	"struct":      {},
	"switch":      {},
	"type":        {},
	"var":         {},
}

// Operators lists every operator and punctuation, longer ones first
// so the lexer can take the longest match.
var Operators = []string{
	"...", "<<=", ">>=", "&^=",
	"==", "!=", "<=", ">=", "&&", "||", ":=", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"<<", ">>", "&^", "<-",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "&", "|", "^",
	"(", ")", "{", "}", "[", "]", ",", ";", ".", ":",
}

func IsKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}

func IsPunct(s string) bool {
	switch s {
	case "(", ")", "{", "}", "[", "]", ",", ";", ".", ":":
		return true
	}

	return false
}

// Is reports whether t is the keyword, operator or punctuation s.
func (t Token) Is(s string) bool {
	switch t.Kind {
	case Keyword, Op, Punct:
		return t.Text == s
	}

	return false
}

// String describes the token the way diagnostics mention it.
func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Ident:
		return "name " + t.Text
	case Int, Float, String, Bool:
		return "literal " + t.Text
	case Keyword:
		return "keyword " + t.Text
	case Punct:
		if t.Text == Newline {
			return "newline"
		}
	}

	return t.Text
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, t.Pos.String()+" "+t.Kind.String()+" "+strconv.Quote(t.Text))
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}
