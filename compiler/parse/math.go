package parse

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/token"
)

// Binary operator precedence, higher binds tighter.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (p *parser) expr(st int) (x ast.Expr, i int, err error) {
	return p.binary(st, 1)
}

// binary parses a left-associative chain of operators binding at least as tight as prec.
func (p *parser) binary(st, prec int) (x ast.Expr, i int, err error) {
	x, i, err = p.unary(st)
	if err != nil {
		return nil, i, err
	}

	for {
		t := p.tok(i)
		if t.Kind != token.Op {
			return x, i, nil
		}

		switch t.Text {
		case "&", "|", "^", "<<", ">>", "&^":
			return nil, i, unsupported(t, "bitwise operators")
		case "<-":
			return nil, i, unsupported(t, "channels")
		}

		q := precedence[t.Text]
		if q == 0 || q < prec {
			return x, i, nil
		}

		var y ast.Expr

		y, i, err = p.binary(i+1, q+1)
		if err != nil {
			return nil, i, err
		}

		x = &ast.BinaryExpr{
			Base:  ast.Base{Pos: t.Pos},
			Op:    t.Text,
			Left:  x,
			Right: y,
		}
	}
}

func (p *parser) unary(st int) (x ast.Expr, i int, err error) {
	t := p.tok(st)

	switch {
	case t.Is("-"), t.Is("!"):
	case t.Is("&"), t.Is("*"):
		return nil, st, unsupported(t, "pointers")
	case t.Is("^"):
		return nil, st, unsupported(t, "bitwise operators")
	case t.Is("<-"):
		return nil, st, unsupported(t, "channels")
	default:
		return p.primary(st)
	}

	x, i, err = p.unary(st + 1)
	if err != nil {
		return nil, i, err
	}

	return &ast.UnaryExpr{Base: ast.Base{Pos: t.Pos}, Op: t.Text, X: x}, i, nil
}
