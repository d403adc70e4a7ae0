package parse

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/token"
)

// primary parses an operand followed by any number of calls and selectors.
func (p *parser) primary(st int) (x ast.Expr, i int, err error) {
	x, i, err = p.operand(st)
	if err != nil {
		return nil, i, err
	}

	for {
		t := p.tok(i)

		switch {
		case t.Is("("):
			x, i, err = p.call(x, i)
		case t.Is("."):
			var sel *ast.Ident

			sel, i, err = p.ident(i + 1)
			if err == nil {
				x = &ast.SelectorExpr{Base: ast.Base{Pos: x.Position()}, X: x, Sel: sel}
			}
		case t.Is("["):
			return nil, i, unsupported(t, "index expressions")
		default:
			return x, i, nil
		}

		if err != nil {
			return nil, i, err
		}
	}
}

func (p *parser) operand(st int) (x ast.Expr, i int, err error) {
	t := p.tok(st)

	switch {
	case t.Kind == token.Ident:
		id := &ast.Ident{Base: ast.Base{Pos: t.Pos}, Name: t.Text}

		if p.noLit == 0 && p.tok(st+1).Is("{") {
			return p.structLit(id, st+1)
		}

		return id, st + 1, nil
	case t.Kind == token.Int, t.Kind == token.Float, t.Kind == token.String, t.Kind == token.Bool:
		return p.literal(st)
	case t.Is("("):
		saved := p.noLit
		p.noLit = 0

		x, i, err = p.expr(st + 1)

		p.noLit = saved

		if err != nil {
			return nil, i, err
		}

		i, err = p.expect(i, ")")
		if err != nil {
			return nil, i, err
		}

		return &ast.ParenExpr{Base: ast.Base{Pos: t.Pos}, X: x}, i, nil
	case t.Is("func"):
		return nil, st, unsupported(t, "function literals")
	case t.Is("["):
		return nil, st, unsupported(t, "arrays and slices")
	case t.Is("map"):
		return nil, st, unsupported(t, "maps")
	case t.Is("chan"):
		return nil, st, unsupported(t, "channels")
	case t.Is("interface"):
		return nil, st, unsupported(t, "interfaces")
	case t.Is("struct"):
		return nil, st, unsupported(t, "anonymous structs")
	case t.Is("range"):
		return nil, st, unsupported(t, "range loops")
	}

	return nil, st, diag.Unexpected(t.Pos, t.String(), "expression")
}

// call parses the argument list of fun starting at '('.
func (p *parser) call(fun ast.Expr, st int) (x ast.Expr, i int, err error) {
	c := &ast.CallExpr{Base: ast.Base{Pos: fun.Position()}, Fun: fun}
	i = st + 1

	saved := p.noLit
	p.noLit = 0

	defer func() {
		p.noLit = saved
	}()

	for !p.tok(i).Is(")") {
		var a ast.Expr

		a, i, err = p.expr(i)
		if err != nil {
			return nil, i, err
		}

		c.Args = append(c.Args, a)

		switch t := p.tok(i); {
		case t.Is(","):
			i++
		case t.Is(")"):
		case t.Is("..."):
			return nil, i, unsupported(t, "variadic calls")
		default:
			return nil, i, diag.Unexpected(t.Pos, t.String(), ",", ")")
		}
	}

	return c, i + 1, nil
}

// structLit parses `T{F: v, ...}` starting at '{'.
func (p *parser) structLit(name *ast.Ident, st int) (x ast.Expr, i int, err error) {
	l := &ast.StructLit{
		Base: name.Base,
		Type: &ast.TypeName{Base: name.Base, Name: name.Name},
	}

	i = st + 1

	for !p.tok(i).Is("}") {
		if t := p.tok(i); t.Kind != token.Ident || !p.tok(i+1).Is(":") {
			return nil, i, diag.Errorf(diag.UnsupportedConstruct, t.Pos, "struct literals without field names are not supported")
		}

		key, j, err := p.ident(i)
		if err != nil {
			return nil, j, err
		}

		kv := &ast.KeyValue{Base: key.Base, Key: key}

		kv.Value, i, err = p.expr(j + 1)
		if err != nil {
			return nil, i, err
		}

		l.Fields = append(l.Fields, kv)

		switch t := p.tok(i); {
		case t.Is(","):
			i++
		case t.Is("}"):
		default:
			return nil, i, diag.Unexpected(t.Pos, t.String(), ",", "}")
		}
	}

	return l, i + 1, nil
}
