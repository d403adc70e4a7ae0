package parse

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/token"
)

func (p *parser) typeName(st int) (x *ast.TypeName, i int, err error) {
	t := p.tok(st)

	switch {
	case t.Kind == token.Ident:
		if p.tok(st + 1).Is(".") {
			return nil, st, unsupported(t, "qualified types")
		}

		return &ast.TypeName{Base: ast.Base{Pos: t.Pos}, Name: t.Text}, st + 1, nil
	case t.Is("["):
		return nil, st, unsupported(t, "arrays and slices")
	case t.Is("*"):
		return nil, st, unsupported(t, "pointers")
	case t.Is("map"):
		return nil, st, unsupported(t, "maps")
	case t.Is("chan"), t.Is("<-"):
		return nil, st, unsupported(t, "channels")
	case t.Is("interface"):
		return nil, st, unsupported(t, "interfaces")
	case t.Is("func"):
		return nil, st, unsupported(t, "function types")
	case t.Is("struct"):
		return nil, st, unsupported(t, "anonymous structs")
	case t.Is("..."):
		return nil, st, unsupported(t, "variadic parameters")
	}

	return nil, st, diag.Unexpected(t.Pos, t.String(), "type")
}

// typeDecl parses `type Name struct { fields }`.
func (p *parser) typeDecl(st int) (d *ast.StructDecl, i int, err error) {
	i = st + 1

	if t := p.tok(i); t.Is("(") {
		return nil, i, unsupported(t, "grouped type declarations")
	}

	name, i, err := p.ident(i)
	if err != nil {
		return nil, i, err
	}

	if t := p.tok(i); !t.Is("struct") {
		if t.Is("=") || t.Kind == token.Ident || t.Kind == token.Keyword || t.Is("[") || t.Is("*") {
			return nil, i, diag.Errorf(diag.UnsupportedConstruct, t.Pos, "type %s: only struct types can be declared", name.Name)
		}

		return nil, i, diag.Unexpected(t.Pos, t.String(), "struct")
	}

	d = &ast.StructDecl{
		Base: ast.Base{Pos: p.tok(st).Pos},
		Name: name.Name,
	}

	i, err = p.expect(i+1, "{")
	if err != nil {
		return nil, i, err
	}

	for {
		t := p.tok(i)

		switch {
		case t.Is("}"):
			return d, i + 1, nil
		case isSemi(t):
			i++
			continue
		case t.Kind == token.EOF:
			return nil, i, diag.Unexpected(t.Pos, t.String(), "}")
		}

		var names []*ast.Ident

		for {
			var n *ast.Ident

			n, i, err = p.ident(i)
			if err != nil {
				return nil, i, err
			}

			names = append(names, n)

			if !p.tok(i).Is(",") {
				break
			}

			i++
		}

		var tp *ast.TypeName

		tp, i, err = p.typeName(i)
		if err != nil {
			return nil, i, err
		}

		for _, n := range names {
			d.Fields = append(d.Fields, &ast.Field{Base: n.Base, Name: n.Name, Type: tp})
		}

		i, err = p.semi(i)
		if err != nil {
			return nil, i, err
		}
	}
}

func (p *parser) funcDecl(st int) (d *ast.FuncDecl, i int, err error) {
	i = st + 1

	if t := p.tok(i); t.Is("(") {
		return nil, i, unsupported(t, "methods")
	}

	name, i, err := p.ident(i)
	if err != nil {
		return nil, i, err
	}

	d = &ast.FuncDecl{
		Base: ast.Base{Pos: p.tok(st).Pos},
		Name: name.Name,
	}

	i, err = p.expect(i, "(")
	if err != nil {
		return nil, i, err
	}

	d.Params, i, err = p.params(i)
	if err != nil {
		return nil, i, err
	}

	switch t := p.tok(i); {
	case t.Is("{"):
	case t.Is("("):
		return nil, i, unsupported(t, "parenthesized or multiple results")
	case isSemi(t):
		return nil, i, diag.Unexpected(t.Pos, t.String(), "{")
	default:
		d.Result, i, err = p.typeName(i)
		if err != nil {
			return nil, i, err
		}
	}

	d.Body, i, err = p.block(i)
	if err != nil {
		return nil, i, err
	}

	return d, i, nil
}

// params parses the parameter list after '(' including the closing ')'.
// Names sharing a type are grouped: (a, b int, c bool).
func (p *parser) params(st int) (l []*ast.Param, i int, err error) {
	i = st

	var pending []*ast.Ident

	for {
		t := p.tok(i)

		if t.Is(")") {
			if len(pending) != 0 {
				return nil, i, diag.Unexpected(t.Pos, t.String(), "type")
			}

			return l, i + 1, nil
		}

		var n *ast.Ident

		n, i, err = p.ident(i)
		if err != nil {
			return nil, i, err
		}

		pending = append(pending, n)

		if p.tok(i).Is(",") {
			i++
			continue
		}

		var tp *ast.TypeName

		tp, i, err = p.typeName(i)
		if err != nil {
			return nil, i, err
		}

		for _, n := range pending {
			l = append(l, &ast.Param{Base: n.Base, Name: n.Name, Type: tp})
		}

		pending = pending[:0]

		switch t := p.tok(i); {
		case t.Is(","):
			i++
		case t.Is(")"):
		default:
			return nil, i, diag.Unexpected(t.Pos, t.String(), ",", ")")
		}
	}
}
