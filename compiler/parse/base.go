package parse

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/token"
)

// tok returns token i, or EOF past the end.
func (p *parser) tok(i int) token.Token {
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[i]
}

func (p *parser) expect(st int, s string) (i int, err error) {
	t := p.tok(st)
	if !t.Is(s) {
		return st, diag.Unexpected(t.Pos, t.String(), s)
	}

	return st + 1, nil
}

func (p *parser) ident(st int) (x *ast.Ident, i int, err error) {
	t := p.tok(st)
	if t.Kind != token.Ident {
		return nil, st, diag.Unexpected(t.Pos, t.String(), "name")
	}

	return &ast.Ident{Base: ast.Base{Pos: t.Pos}, Name: t.Text}, st + 1, nil
}

// semi consumes a statement terminator.
// It may be omitted before a closing brace or parenthesis.
func (p *parser) semi(st int) (i int, err error) {
	t := p.tok(st)

	switch {
	case isSemi(t):
		return st + 1, nil
	case t.Is("}"), t.Is(")"):
		return st, nil
	}

	return st, diag.Unexpected(t.Pos, t.String(), "; or newline")
}

func isSemi(t token.Token) bool {
	return t.Kind == token.Punct && (t.Text == ";" || t.Text == token.Newline)
}

func unsupported(t token.Token, what string) *diag.Error {
	return diag.Errorf(diag.UnsupportedConstruct, t.Pos, "%s are not supported", what)
}
