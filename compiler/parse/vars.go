package parse

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
)

// varDecl parses `var x T`, `var x = v` and `var x T = v`.
func (p *parser) varDecl(st int) (v *ast.VarDecl, i int, err error) {
	i = st + 1

	if t := p.tok(i); t.Is("(") {
		return nil, i, unsupported(t, "grouped variable declarations")
	}

	name, i, err := p.ident(i)
	if err != nil {
		return nil, i, err
	}

	if t := p.tok(i); t.Is(",") {
		return nil, i, unsupported(t, "multiple variable declarations")
	}

	v = &ast.VarDecl{
		Base: ast.Base{Pos: p.tok(st).Pos},
		Name: name,
	}

	if !p.tok(i).Is("=") {
		v.Type, i, err = p.typeName(i)
		if err != nil {
			return nil, i, err
		}
	}

	if p.tok(i).Is("=") {
		v.Value, i, err = p.expr(i + 1)
		if err != nil {
			return nil, i, err
		}

		if t := p.tok(i); t.Is(",") {
			return nil, i, unsupported(t, "multiple variable declarations")
		}
	}

	return v, i, nil
}

// simpleStmt parses an expression statement, assignment, short declaration or inc/dec.
func (p *parser) simpleStmt(st int) (s ast.Stmt, i int, err error) {
	x, i, err := p.expr(st)
	if err != nil {
		return nil, i, err
	}

	t := p.tok(i)
	pos := p.tok(st).Pos

	switch {
	case t.Is(","):
		return nil, i, unsupported(t, "multiple assignments")
	case t.Is(":="):
		id, ok := x.(*ast.Ident)
		if !ok {
			return nil, i, diag.Errorf(diag.SyntaxError, pos, "non-name on left side of :=")
		}

		v := &ast.VarDecl{Base: ast.Base{Pos: pos}, Name: id, Short: true}

		v.Value, i, err = p.expr(i + 1)
		if err != nil {
			return nil, i, err
		}

		if t := p.tok(i); t.Is(",") {
			return nil, i, unsupported(t, "multiple assignments")
		}

		return v, i, nil
	case t.Is("="), t.Is("+="), t.Is("-="), t.Is("*="), t.Is("/="), t.Is("%="):
		a := &ast.AssignStmt{Base: ast.Base{Pos: pos}, Op: t.Text, Lhs: x}

		a.Rhs, i, err = p.expr(i + 1)
		if err != nil {
			return nil, i, err
		}

		if t := p.tok(i); t.Is(",") {
			return nil, i, unsupported(t, "multiple assignments")
		}

		return a, i, nil
	case t.Is("&="), t.Is("|="), t.Is("^="), t.Is("<<="), t.Is(">>="), t.Is("&^="):
		return nil, i, unsupported(t, "bitwise operators")
	case t.Is("++"), t.Is("--"):
		return &ast.IncDecStmt{Base: ast.Base{Pos: pos}, X: x, Inc: t.Text == "++"}, i + 1, nil
	case t.Is("<-"):
		return nil, i, unsupported(t, "channels")
	}

	return &ast.ExprStmt{Base: ast.Base{Pos: pos}, X: x}, i, nil
}
