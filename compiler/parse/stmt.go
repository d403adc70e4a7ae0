package parse

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/token"
)

func (p *parser) block(st int) (b *ast.Block, i int, err error) {
	i, err = p.expect(st, "{")
	if err != nil {
		return nil, i, err
	}

	b = &ast.Block{Base: ast.Base{Pos: p.tok(st).Pos}}

	for {
		t := p.tok(i)

		switch {
		case t.Is("}"):
			b.End = t.Pos
			return b, i + 1, nil
		case isSemi(t):
			i++
			continue
		case t.Kind == token.EOF:
			return nil, i, diag.Unexpected(t.Pos, t.String(), "}")
		}

		var s ast.Stmt

		s, i, err = p.stmt(i)
		if err != nil {
			return nil, i, err
		}

		b.Stmts = append(b.Stmts, s)

		i, err = p.semi(i)
		if err != nil {
			return nil, i, err
		}
	}
}

func (p *parser) stmt(st int) (s ast.Stmt, i int, err error) {
	t := p.tok(st)

	switch {
	case t.Is("var"):
		return p.varDecl(st)
	case t.Is("if"):
		return p.ifStmt(st)
	case t.Is("for"):
		return p.forStmt(st)
	case t.Is("return"):
		return p.returnStmt(st)
	case t.Is("break"), t.Is("continue"):
		if p.loops == 0 {
			return nil, st, diag.Errorf(diag.SyntaxError, t.Pos, "%s is not in a loop", t.Text)
		}

		return &ast.BranchStmt{Base: ast.Base{Pos: t.Pos}, Tok: t.Text}, st + 1, nil
	case t.Is("{"):
		return p.block(st)
	case t.Is("go"):
		return nil, st, unsupported(t, "goroutines")
	case t.Is("defer"):
		return nil, st, unsupported(t, "deferred calls")
	case t.Is("select"):
		return nil, st, unsupported(t, "select statements")
	case t.Is("switch"):
		return nil, st, unsupported(t, "switch statements")
	case t.Is("goto"):
		return nil, st, unsupported(t, "goto statements")
	case t.Is("fallthrough"):
		return nil, st, unsupported(t, "fallthrough statements")
	case t.Is("const"):
		return nil, st, unsupported(t, "constants")
	case t.Is("type"):
		return nil, st, unsupported(t, "local type declarations")
	case t.Kind == token.Ident && p.tok(st+1).Is(":"):
		return nil, st, unsupported(t, "labels")
	}

	return p.simpleStmt(st)
}

func (p *parser) ifStmt(st int) (s *ast.IfStmt, i int, err error) {
	s = &ast.IfStmt{Base: ast.Base{Pos: p.tok(st).Pos}}

	p.noLit++

	s.Init, s.Cond, i, err = p.header(st + 1)

	p.noLit--

	if err != nil {
		return nil, i, err
	}

	if s.Cond == nil {
		t := p.tok(i)
		return nil, i, diag.Errorf(diag.SyntaxError, t.Pos, "missing condition in if statement")
	}

	s.Then, i, err = p.block(i)
	if err != nil {
		return nil, i, err
	}

	if !p.tok(i).Is("else") {
		return s, i, nil
	}

	i++

	switch t := p.tok(i); {
	case t.Is("if"):
		s.Else, i, err = p.ifStmt(i)
	case t.Is("{"):
		s.Else, i, err = p.block(i)
	default:
		return nil, i, diag.Unexpected(t.Pos, t.String(), "if", "{")
	}

	if err != nil {
		return nil, i, err
	}

	return s, i, nil
}

// header parses `[init;] cond` of an if statement.
func (p *parser) header(st int) (init ast.Stmt, cond ast.Expr, i int, err error) {
	i = st

	if !p.tok(i).Is(";") {
		init, i, err = p.simpleStmt(i)
		if err != nil {
			return nil, nil, i, err
		}
	}

	if !p.tok(i).Is(";") {
		cond, err = p.condition(init)
		return nil, cond, i, err
	}

	i++

	if p.tok(i).Is("{") {
		return init, nil, i, nil
	}

	cond, i, err = p.expr(i)
	if err != nil {
		return nil, nil, i, err
	}

	return init, cond, i, nil
}

// condition turns the statement parsed in condition place into an expression.
func (p *parser) condition(s ast.Stmt) (ast.Expr, error) {
	switch s := s.(type) {
	case nil:
		return nil, nil
	case *ast.ExprStmt:
		return s.X, nil
	}

	return nil, diag.Errorf(diag.SyntaxError, s.Position(), "cannot use assignment as value")
}

func (p *parser) forStmt(st int) (s *ast.ForStmt, i int, err error) {
	s = &ast.ForStmt{Base: ast.Base{Pos: p.tok(st).Pos}}
	i = st + 1

	if t := p.tok(i); t.Is("range") {
		return nil, i, unsupported(t, "range loops")
	}

	if !p.tok(i).Is("{") {
		p.noLit++

		s.Init, s.Cond, s.Post, i, err = p.forHeader(i)

		p.noLit--

		if err != nil {
			return nil, i, err
		}
	}

	p.loops++

	s.Body, i, err = p.block(i)

	p.loops--

	if err != nil {
		return nil, i, err
	}

	return s, i, nil
}

func (p *parser) forHeader(st int) (init ast.Stmt, cond ast.Expr, post ast.Stmt, i int, err error) {
	i = st

	if !p.tok(i).Is(";") {
		init, i, err = p.simpleStmt(i)
		if err != nil {
			return nil, nil, nil, i, err
		}
	}

	if !p.tok(i).Is(";") {
		cond, err = p.condition(init)
		return nil, cond, nil, i, err
	}

	i++

	if !p.tok(i).Is(";") {
		cond, i, err = p.expr(i)
		if err != nil {
			return nil, nil, nil, i, err
		}
	}

	i, err = p.expect(i, ";")
	if err != nil {
		return nil, nil, nil, i, err
	}

	if p.tok(i).Is("{") {
		return init, cond, nil, i, nil
	}

	post, i, err = p.simpleStmt(i)
	if err != nil {
		return nil, nil, nil, i, err
	}

	if v, ok := post.(*ast.VarDecl); ok {
		return nil, nil, nil, i, diag.Errorf(diag.SyntaxError, v.Pos, "cannot declare in post statement of for loop")
	}

	return init, cond, post, i, nil
}

func (p *parser) returnStmt(st int) (s *ast.ReturnStmt, i int, err error) {
	s = &ast.ReturnStmt{Base: ast.Base{Pos: p.tok(st).Pos}}
	i = st + 1

	if t := p.tok(i); isSemi(t) || t.Is("}") {
		return s, i, nil
	}

	s.Value, i, err = p.expr(i)
	if err != nil {
		return nil, i, err
	}

	if t := p.tok(i); t.Is(",") {
		return nil, i, unsupported(t, "multiple return values")
	}

	return s, i, nil
}
