package asm

import (
	"io"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
)

type (
	// Unit is one assembly file: the text section and the pool of string constants.
	Unit struct {
		text []byte

		pool  []string
		index map[string]int

		labels int
	}
)

// Registers used for integer arguments, in order.
var ArgRegs = []string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

func NewUnit() *Unit {
	return &Unit{
		index: map[string]int{},
	}
}

// Label returns a fresh local label.
func (u *Unit) Label() string {
	l := ".L" + strconv.Itoa(u.labels)
	u.labels++

	return l
}

// Literal returns the label of the pooled copy of s.
// Equal strings share one label.
func (u *Unit) Literal(s string) string {
	i, ok := u.index[s]
	if !ok {
		i = len(u.pool)
		u.pool = append(u.pool, s)
		u.index[s] = i
	}

	return ".LC" + strconv.Itoa(i)
}

// Pool returns pooled strings in label order.
func (u *Unit) Pool() []string {
	return u.pool
}

// Ins appends an instruction or directive with its operands.
func (u *Unit) Ins(op string, args ...string) {
	u.text = append(u.text, '\t')
	u.text = append(u.text, op...)

	for i, a := range args {
		if i == 0 {
			u.text = append(u.text, '\t')
		} else {
			u.text = append(u.text, ", "...)
		}

		u.text = append(u.text, a...)
	}

	u.text = append(u.text, '\n')
}

// Mark places label l at the current position.
func (u *Unit) Mark(l string) {
	u.text = append(u.text, l...)
	u.text = append(u.text, ":\n"...)
}

// Comment appends a full-line comment.
func (u *Unit) Comment(format string, args ...any) {
	u.text = append(u.text, "\t# "...)
	u.text = hfmt.Appendf(u.text, format, args...)
	u.text = append(u.text, '\n')
}

// Blank appends an empty line.
func (u *Unit) Blank() {
	u.text = append(u.text, '\n')
}

// Append renders the whole unit after b.
func (u *Unit) Append(b []byte) []byte {
	if len(u.pool) != 0 {
		b = append(b, "\t.section .rodata\n"...)

		for i, s := range u.pool {
			b = hfmt.Appendf(b, ".LC%d:\n\t.string ", i)
			b = AppendQuote(b, s)
			b = append(b, '\n')
		}

		b = append(b, '\n')
	}

	b = append(b, "\t.text\n"...)
	b = append(b, u.text...)
	b = append(b, "\n\t.section .note.GNU-stack,\"\",@progbits\n"...)

	return b
}

func (u *Unit) Bytes() []byte {
	return u.Append(nil)
}

func (u *Unit) String() string {
	return string(u.Append(nil))
}

func (u *Unit) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(u.Append(nil))

	return int64(n), err
}

// AppendQuote appends s as a GNU as string literal.
// Bytes outside printable ASCII are written as octal escapes.
func AppendQuote(b []byte, s string) []byte {
	b = append(b, '"')

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '"' || c == '\\':
			b = append(b, '\\', c)
		case c >= 0x20 && c < 0x7f:
			b = append(b, c)
		default:
			b = append(b, '\\', '0'+c>>6, '0'+c>>3&7, '0'+c&7)
		}
	}

	return append(b, '"')
}
