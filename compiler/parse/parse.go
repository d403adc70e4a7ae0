package parse

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/token"
)

type (
	parser struct {
		toks []token.Token

		loops int // nesting depth of for statements
		noLit int // >0 inside if and for headers where T{ opens a block
	}
)

// Parse builds the syntax tree of one source file.
// toks must end with an EOF token as lex.Tokenize returns them.
// The first problem found is returned as a *diag.Error.
func Parse(ctx context.Context, name string, toks []token.Token) (f *ast.File, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "parse", "file", name, "tokens", len(toks))
	defer tr.Finish("err", &err)

	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		return nil, diag.Internal(diag.Pos{}, "token stream is not terminated with EOF")
	}

	p := &parser{toks: toks}

	f, _, err = p.file(0)
	if err != nil {
		return nil, err
	}

	f.Name = name

	if tr.If("ast") {
		tr.Printw("parsed", "decls", len(f.Decls), "imports", len(f.Imports))
	}

	return f, nil
}

func (p *parser) file(st int) (f *ast.File, i int, err error) {
	f = &ast.File{Base: ast.Base{Pos: p.tok(st).Pos}}

	i, err = p.expect(st, "package")
	if err != nil {
		return nil, i, err
	}

	pkg, i, err := p.ident(i)
	if err != nil {
		return nil, i, err
	}

	if pkg.Name != "main" {
		return nil, i, diag.Errorf(diag.SyntaxError, pkg.Pos, "package %s is not main: only executable programs are compiled", pkg.Name)
	}

	f.Package = pkg.Name

	i, err = p.semi(i)
	if err != nil {
		return nil, i, err
	}

	for p.tok(i).Is("import") {
		f.Imports, i, err = p.imports(i, f.Imports)
		if err != nil {
			return nil, i, err
		}
	}

	for p.tok(i).Kind != token.EOF {
		var d ast.Decl

		t := p.tok(i)

		switch {
		case t.Is("func"):
			d, i, err = p.funcDecl(i)
		case t.Is("type"):
			d, i, err = p.typeDecl(i)
		case t.Is("var"):
			return nil, i, unsupported(t, "package-level variables")
		case t.Is("const"):
			return nil, i, unsupported(t, "constants")
		case isSemi(t):
			i++
			continue
		default:
			return nil, i, diag.Unexpected(t.Pos, t.String(), "func", "type")
		}

		if err != nil {
			return nil, i, err
		}

		f.Decls = append(f.Decls, d)

		if p.tok(i).Kind != token.EOF {
			i, err = p.semi(i)
			if err != nil {
				return nil, i, err
			}
		}
	}

	err = p.checkMain(f, p.tok(i))
	if err != nil {
		return nil, i, err
	}

	return f, i, nil
}

func (p *parser) imports(st int, l []*ast.Import) (_ []*ast.Import, i int, err error) {
	i = st + 1

	one := func(i int) (int, error) {
		t := p.tok(i)
		if t.Kind != token.String {
			return i, diag.Unexpected(t.Pos, t.String(), "import path")
		}

		l = append(l, &ast.Import{Base: ast.Base{Pos: t.Pos}, Path: t.Str})

		return p.semi(i + 1)
	}

	if !p.tok(i).Is("(") {
		i, err = one(i)
		return l, i, err
	}

	i++

	for !p.tok(i).Is(")") {
		if p.tok(i).Kind == token.EOF {
			t := p.tok(i)
			return nil, i, diag.Unexpected(t.Pos, t.String(), ")")
		}

		if isSemi(p.tok(i)) {
			i++
			continue
		}

		i, err = one(i)
		if err != nil {
			return nil, i, err
		}
	}

	i, err = p.semi(i + 1)

	return l, i, err
}

func (p *parser) checkMain(f *ast.File, eof token.Token) error {
	for _, d := range f.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Name != "main" {
			continue
		}

		if len(fn.Params) != 0 || fn.Result != nil {
			return diag.Errorf(diag.SyntaxError, fn.Pos, "func main must have no arguments and no return values")
		}

		return nil
	}

	return diag.Errorf(diag.SyntaxError, eof.Pos, "function main is undeclared")
}
