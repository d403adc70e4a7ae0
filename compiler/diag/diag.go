package diag

import (
	"strconv"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"nikand.dev/go/heap"
	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog/tlwire"
)

type (
	Kind int

	// Pos is a source position. Line and Col are 1-based, Col counts runes.
	Pos struct {
		Off  int
		Line int
		Col  int
	}

	// Error is a positioned compiler diagnostic.
	// Every stage reports its first failure as an *Error.
	Error struct {
		Kind Kind
		File string
		Pos  Pos
		Msg  string

		// set for syntax errors
		Want []string
		Got  string

		// set for internal invariant violations
		From loc.PC
	}

	// List collects non-fatal diagnostics and hands them back in source order,
	// whatever order the stages reported them in.
	List struct {
		h   heap.Heap[entry]
		seq int
	}

	entry struct {
		*Error
		seq int
	}
)

const (
	_ Kind = iota
	LexError
	SyntaxError
	UndeclaredName
	Redeclaration
	TypeMismatch
	UnsupportedConstruct
	CodegenError
	Warning
)

var kindNames = []string{
	LexError:             "lex error",
	SyntaxError:          "syntax error",
	UndeclaredName:       "undeclared name",
	Redeclaration:        "redeclaration",
	TypeMismatch:         "type mismatch",
	UnsupportedConstruct: "unsupported",
	CodegenError:         "internal codegen error",
	Warning:              "warning",
}

func Errorf(k Kind, pos Pos, format string, args ...any) *Error {
	return &Error{
		Kind: k,
		Pos:  pos,
		Msg:  string(hfmt.Appendf(nil, format, args...)),
	}
}

// Unexpected reports a syntax error: got was found where one of want was expected.
func Unexpected(pos Pos, got string, want ...string) *Error {
	e := &Error{
		Kind: SyntaxError,
		Pos:  pos,
		Want: want,
		Got:  got,
	}

	switch len(want) {
	case 0:
		e.Msg = "unexpected " + got
	case 1:
		e.Msg = "unexpected " + got + ", want " + want[0]
	default:
		e.Msg = "unexpected " + got + ", want one of " + strings.Join(want, ", ")
	}

	return e
}

// Internal reports a violated invariant of the compiler itself.
// It remembers the caller so the report points at the broken stage.
func Internal(pos Pos, format string, args ...any) *Error {
	e := Errorf(CodegenError, pos, format, args...)
	e.From = loc.Caller(1)

	return e
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

func (e *Error) Error() string {
	var b []byte

	if e.File != "" {
		b = append(b, e.File...)
		b = append(b, ':')
	}

	b = hfmt.Appendf(b, "%v: %v: %s", e.Pos, e.Kind, e.Msg)

	if e.From != 0 {
		b = hfmt.Appendf(b, " (at %v)", e.From)
	}

	return string(b)
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

func (p Pos) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, p.String())
}

func (l *List) Add(e *Error) {
	if l.h.Less == nil {
		l.h.Less = entryLess
	}

	l.h.Push(entry{Error: e, seq: l.seq})
	l.seq++
}

func (l *List) Len() int {
	return l.h.Len()
}

// Drain empties the list returning its diagnostics ordered by position.
func (l *List) Drain() []*Error {
	if l.h.Len() == 0 {
		return nil
	}

	r := make([]*Error, 0, l.h.Len())

	for l.h.Len() != 0 {
		r = append(r, l.h.Pop().Error)
	}

	return r
}

func entryLess(d []entry, i, j int) bool {
	if d[i].Pos.Off != d[j].Pos.Off {
		return d[i].Pos.Off < d[j].Pos.Off
	}

	return d[i].seq < d[j].seq
}
