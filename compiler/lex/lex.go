package lex

import (
	"context"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/token"
)

type (
	lexer struct {
		b []byte
		i int

		line int
		col  int

		toks []token.Token
	}
)

// Tokenize splits src into tokens ending with a single EOF token.
// Semicolons are inserted at line ends the way Go does it.
// The first unscannable input is reported as a diag.LexError.
func Tokenize(ctx context.Context, src []byte) (toks []token.Token, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "lex", "size", len(src))
	defer tr.Finish("err", &err)

	l := &lexer{
		b:    src,
		line: 1,
		col:  1,
	}

	err = l.run()
	if err != nil {
		return nil, err
	}

	if tr.If("tokens") {
		for _, t := range l.toks {
			tr.Printw("token", "tok", t)
		}
	}

	return l.toks, nil
}

func (l *lexer) run() (err error) {
	for {
		l.skipSpaces()

		if l.i == len(l.b) {
			l.semicolon(l.pos())
			l.toks = append(l.toks, token.Token{Kind: token.EOF, Pos: l.pos()})

			return nil
		}

		c := l.b[l.i]

		switch {
		case c == '\n':
			l.semicolon(l.pos())
			l.adv()
		case c == '/' && l.peek(1) == '/':
			for l.i < len(l.b) && l.b[l.i] != '\n' {
				l.adv()
			}
		case c == '/' && l.peek(1) == '*':
			err = l.blockComment()
		case c >= '0' && c <= '9' || c == '.' && isDigit(l.peek(1)):
			err = l.number()
		case c == '"':
			err = l.str()
		case c == '`':
			err = l.rawStr()
		case c == '\'':
			err = l.char()
		case c == '_' || c < utf8.RuneSelf && unicode.IsLetter(rune(c)):
			l.ident()
		case c >= utf8.RuneSelf:
			r, _ := utf8.DecodeRune(l.b[l.i:])
			if !unicode.IsLetter(r) {
				return diag.Errorf(diag.LexError, l.pos(), "unexpected character %q", r)
			}

			l.ident()
		default:
			err = l.operator()
		}

		if err != nil {
			return err
		}
	}
}

func (l *lexer) ident() {
	st := l.pos()
	s := l.i

	for l.i < len(l.b) {
		r, _ := utf8.DecodeRune(l.b[l.i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		l.adv()
	}

	text := string(l.b[s:l.i])

	t := token.Token{Kind: token.Ident, Text: text, Pos: st}

	switch {
	case text == "true" || text == "false":
		t.Kind = token.Bool
	case token.IsKeyword(text):
		t.Kind = token.Keyword
	}

	l.toks = append(l.toks, t)
}

func (l *lexer) number() error {
	st := l.pos()
	s := l.i

	l.skipWord()

	text := string(l.b[s:l.i])
	hex := len(text) > 1 && text[0] == '0' && text[1]|0x20 == 'x'
	float := !hex && strings.ContainsAny(text, "eE")

	if !hex && l.i < len(l.b) && l.b[l.i] == '.' {
		float = true

		l.adv()
		l.skipWord()
	}

	if float && l.i < len(l.b) && (l.b[l.i] == '+' || l.b[l.i] == '-') && l.b[l.i-1]|0x20 == 'e' {
		l.adv()
		l.skipWord()
	}

	text = string(l.b[s:l.i])

	if float {
		l.toks = append(l.toks, token.Token{Kind: token.Float, Text: text, Pos: st})
		return nil
	}

	v, err := strconv.ParseInt(text, 0, 64)
	if errors.Is(err, strconv.ErrRange) {
		return diag.Errorf(diag.LexError, st, "integer literal %s overflows int", text)
	}
	if err != nil {
		return diag.Errorf(diag.LexError, st, "invalid integer literal %s", text)
	}

	l.toks = append(l.toks, token.Token{Kind: token.Int, Text: text, Pos: st, Int: v})

	return nil
}

func (l *lexer) str() error {
	st := l.pos()
	s := l.i

	l.adv()

	var val []byte

	for {
		if l.i == len(l.b) || l.b[l.i] == '\n' {
			return diag.Errorf(diag.LexError, st, "string literal not terminated")
		}

		switch l.b[l.i] {
		case '"':
			l.adv()

			l.toks = append(l.toks, token.Token{Kind: token.String, Text: string(l.b[s:l.i]), Pos: st, Str: string(val)})

			return nil
		case '\\':
			r, isByte, err := l.escape('"')
			if err != nil {
				return err
			}

			if isByte {
				val = append(val, byte(r))
			} else {
				val = utf8.AppendRune(val, r)
			}
		default:
			_, size := utf8.DecodeRune(l.b[l.i:])
			val = append(val, l.b[l.i:l.i+size]...)

			l.adv()
		}
	}
}

func (l *lexer) rawStr() error {
	st := l.pos()
	s := l.i

	l.adv()

	for l.i < len(l.b) && l.b[l.i] != '`' {
		l.adv()
	}

	if l.i == len(l.b) {
		return diag.Errorf(diag.LexError, st, "raw string literal not terminated")
	}

	l.adv()

	text := string(l.b[s:l.i])
	val := strings.ReplaceAll(text[1:len(text)-1], "\r", "")

	l.toks = append(l.toks, token.Token{Kind: token.String, Text: text, Pos: st, Str: val})

	return nil
}

func (l *lexer) char() error {
	st := l.pos()
	s := l.i

	l.adv()

	var r rune

	switch {
	case l.i == len(l.b) || l.b[l.i] == '\n':
		return diag.Errorf(diag.LexError, st, "rune literal not terminated")
	case l.b[l.i] == '\'':
		return diag.Errorf(diag.LexError, st, "empty rune literal")
	case l.b[l.i] == '\\':
		var err error

		r, _, err = l.escape('\'')
		if err != nil {
			return err
		}
	default:
		r, _ = utf8.DecodeRune(l.b[l.i:])
		l.adv()
	}

	if l.i == len(l.b) || l.b[l.i] != '\'' {
		return diag.Errorf(diag.LexError, st, "rune literal has more than one character")
	}

	l.adv()

	l.toks = append(l.toks, token.Token{Kind: token.Int, Text: string(l.b[s:l.i]), Pos: st, Int: int64(r)})

	return nil
}

// escape decodes the escape sequence at l.i.
// isByte is set for \x and octal escapes which denote a single byte, not a rune.
func (l *lexer) escape(quote byte) (r rune, isByte bool, err error) {
	st := l.pos()

	l.adv()

	if l.i == len(l.b) {
		return 0, false, diag.Errorf(diag.LexError, st, "escape sequence not terminated")
	}

	c := l.b[l.i]

	switch c {
	case 'a':
		r = '\a'
	case 'b':
		r = '\b'
	case 'f':
		r = '\f'
	case 'n':
		r = '\n'
	case 'r':
		r = '\r'
	case 't':
		r = '\t'
	case 'v':
		r = '\v'
	case '\\':
		r = '\\'
	case quote:
		r = rune(quote)
	case 'x':
		l.adv()
		v, err := l.digits(st, 2, 16)
		return rune(v), true, err
	case 'u':
		l.adv()
		v, err := l.digits(st, 4, 16)
		return l.validRune(st, v, err)
	case 'U':
		l.adv()
		v, err := l.digits(st, 8, 16)
		return l.validRune(st, v, err)
	default:
		if c >= '0' && c <= '7' {
			v, err := l.digits(st, 3, 8)
			if err == nil && v > 255 {
				err = diag.Errorf(diag.LexError, st, "octal escape value %d > 255", v)
			}

			return rune(v), true, err
		}

		return 0, false, diag.Errorf(diag.LexError, st, "unknown escape sequence \\%c", c)
	}

	l.adv()

	return r, false, nil
}

func (l *lexer) validRune(st diag.Pos, v uint64, err error) (rune, bool, error) {
	if err != nil {
		return 0, false, err
	}

	if v > unicode.MaxRune || v >= 0xD800 && v < 0xE000 {
		return 0, false, diag.Errorf(diag.LexError, st, "escape sequence is invalid Unicode code point")
	}

	return rune(v), false, nil
}

func (l *lexer) digits(st diag.Pos, n int, base uint64) (v uint64, err error) {
	for j := 0; j < n; j++ {
		if l.i == len(l.b) {
			return 0, diag.Errorf(diag.LexError, st, "escape sequence not terminated")
		}

		d, ok := digitVal(l.b[l.i])
		if !ok || d >= base {
			return 0, diag.Errorf(diag.LexError, st, "invalid character %q in escape sequence", l.b[l.i])
		}

		v = v*base + d

		l.adv()
	}

	return v, nil
}

func (l *lexer) blockComment() error {
	st := l.pos()
	newline := false

	l.adv()
	l.adv()

	for {
		if l.i+1 >= len(l.b) {
			return diag.Errorf(diag.LexError, st, "comment not terminated")
		}

		if l.b[l.i] == '*' && l.b[l.i+1] == '/' {
			l.adv()
			l.adv()

			break
		}

		if l.b[l.i] == '\n' {
			newline = true
		}

		l.adv()
	}

	if newline {
		l.semicolon(st)
	}

	return nil
}

func (l *lexer) operator() error {
	st := l.pos()
	rest := l.b[l.i:]

	for _, op := range token.Operators {
		if len(rest) < len(op) || string(rest[:len(op)]) != op {
			continue
		}

		k := token.Op
		if token.IsPunct(op) {
			k = token.Punct
		}

		for range op {
			l.adv()
		}

		l.toks = append(l.toks, token.Token{Kind: k, Text: op, Pos: st})

		return nil
	}

	return diag.Errorf(diag.LexError, st, "unexpected character %q", l.b[l.i])
}

// semicolon inserts an automatic semicolon if the last token may end a statement.
func (l *lexer) semicolon(pos diag.Pos) {
	if len(l.toks) == 0 {
		return
	}

	last := l.toks[len(l.toks)-1]

	switch last.Kind {
	case token.Ident, token.Int, token.Float, token.String, token.Bool:
	case token.Keyword:
		switch last.Text {
		case "break", "continue", "fallthrough", "return":
		default:
			return
		}
	case token.Op:
		if last.Text != "++" && last.Text != "--" {
			return
		}
	case token.Punct:
		if last.Text != ")" && last.Text != "]" && last.Text != "}" {
			return
		}
	default:
		return
	}

	l.toks = append(l.toks, token.Token{Kind: token.Punct, Text: token.Newline, Pos: pos})
}

func (l *lexer) skipSpaces() {
	for l.i < len(l.b) {
		switch l.b[l.i] {
		case ' ', '\t', '\r':
			l.adv()
			continue
		}

		break
	}
}

func (l *lexer) skipWord() {
	for l.i < len(l.b) && (isDigit(l.b[l.i]) || l.b[l.i] == '_' || l.b[l.i]|0x20 >= 'a' && l.b[l.i]|0x20 <= 'z') {
		l.adv()
	}
}

func (l *lexer) adv() {
	if l.b[l.i] == '\n' {
		l.i++
		l.line++
		l.col = 1

		return
	}

	_, size := utf8.DecodeRune(l.b[l.i:])
	l.i += size
	l.col++
}

func (l *lexer) peek(n int) byte {
	if l.i+n >= len(l.b) {
		return 0
	}

	return l.b[l.i+n]
}

func (l *lexer) pos() diag.Pos {
	return diag.Pos{Off: l.i, Line: l.line, Col: l.col}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitVal(c byte) (uint64, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0'), true
	case c|0x20 >= 'a' && c|0x20 <= 'f':
		return uint64(c|0x20-'a') + 10, true
	}

	return 0, false
}
