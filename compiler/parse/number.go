package parse

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/token"
)

func (p *parser) literal(st int) (x ast.Expr, i int, err error) {
	t := p.tok(st)
	b := ast.Base{Pos: t.Pos}

	switch t.Kind {
	case token.Int:
		return &ast.IntLit{Base: b, Text: t.Text, Value: t.Int}, st + 1, nil
	case token.String:
		return &ast.StringLit{Base: b, Text: t.Text, Value: t.Str}, st + 1, nil
	case token.Bool:
		return &ast.BoolLit{Base: b, Value: t.Text == "true"}, st + 1, nil
	case token.Float:
		return nil, st, unsupported(t, "floating-point numbers")
	}

	return nil, st, diag.Unexpected(t.Pos, t.String(), "literal")
}
