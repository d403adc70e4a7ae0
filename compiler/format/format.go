package format

import (
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/gosubset/x86c/compiler/ast"
)

// Format appends the source form of x to b.
// x is an *ast.File, an ast.Stmt or an ast.Expr.
func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x any, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.File:
		return formatFile(ctx, b, x, d)
	case ast.Stmt:
		return formatStmt(ctx, b, x, d)
	case ast.Expr:
		return formatExpr(ctx, b, x)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatFile(ctx context.Context, b []byte, x *ast.File, d int) (_ []byte, err error) {
	b = hfmt.Appendf(b, "package %s\n", x.Package)

	switch len(x.Imports) {
	case 0:
	case 1:
		b = hfmt.Appendf(b, "\nimport %s\n", strconv.Quote(x.Imports[0].Path))
	default:
		b = append(b, "\nimport (\n"...)

		for _, imp := range x.Imports {
			b = app(b, 1, "%s\n", strconv.Quote(imp.Path))
		}

		b = append(b, ")\n"...)
	}

	for _, decl := range x.Decls {
		b = append(b, '\n')

		switch decl := decl.(type) {
		case *ast.StructDecl:
			b = formatStruct(b, decl, d)
		case *ast.FuncDecl:
			b, err = formatFunc(ctx, b, decl, d)
			if err != nil {
				return nil, errors.Wrap(err, "func %v", decl.Name)
			}
		default:
			return nil, errors.New("unsupported decl: %T", decl)
		}
	}

	return b, nil
}

func formatStruct(b []byte, x *ast.StructDecl, d int) []byte {
	b = app(b, d, "type %s struct {\n", x.Name)

	for _, f := range x.Fields {
		b = app(b, d+1, "%s %s\n", f.Name, f.Type.Name)
	}

	return app(b, d, "}\n")
}

func formatFunc(ctx context.Context, b []byte, x *ast.FuncDecl, d int) ([]byte, error) {
	b = app(b, d, "func %v(", x.Name)

	for i, a := range x.Params {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = app(b, 0, "%v %v", a.Name, a.Type.Name)
	}

	b = append(b, ")"...)

	if x.Result != nil {
		b = app(b, 0, " %v", x.Result.Name)
	}

	b = append(b, ' ')

	b, err := formatBlock(ctx, b, x.Body, d)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = append(b, '\n')

	return b, nil
}

// formatBlock writes braces and statements; the caller positions the opening brace.
func formatBlock(ctx context.Context, b []byte, x *ast.Block, d int) (_ []byte, err error) {
	b = append(b, "{\n"...)

	for _, s := range x.Stmts {
		b = app(b, d+1, "")

		b, err = formatStmt(ctx, b, s, d+1)
		if err != nil {
			return nil, err
		}

		b = append(b, '\n')
	}

	b = app(b, d, "}")

	return b, nil
}

// formatStmt writes s without indentation before it and without the trailing newline.
func formatStmt(ctx context.Context, b []byte, s ast.Stmt, d int) (_ []byte, err error) {
	switch s := s.(type) {
	case *ast.Block:
		return formatBlock(ctx, b, s, d)
	case *ast.VarDecl:
		if s.Short {
			b = app(b, 0, "%s := ", s.Name.Name)

			return formatExpr(ctx, b, s.Value)
		}

		b = app(b, 0, "var %s", s.Name.Name)

		if s.Type != nil {
			b = app(b, 0, " %s", s.Type.Name)
		}

		if s.Value != nil {
			b = append(b, " = "...)

			return formatExpr(ctx, b, s.Value)
		}
	case *ast.AssignStmt:
		b, err = formatExpr(ctx, b, s.Lhs)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		b = app(b, 0, " %s ", s.Op)

		b, err = formatExpr(ctx, b, s.Rhs)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}
	case *ast.IncDecStmt:
		b, err = formatExpr(ctx, b, s.X)
		if err != nil {
			return nil, err
		}

		if s.Inc {
			b = append(b, "++"...)
		} else {
			b = append(b, "--"...)
		}
	case *ast.ExprStmt:
		return formatExpr(ctx, b, s.X)
	case *ast.ReturnStmt:
		b = append(b, "return"...)

		if s.Value != nil {
			b = append(b, ' ')

			return formatExpr(ctx, b, s.Value)
		}
	case *ast.BranchStmt:
		b = append(b, s.Tok...)
	case *ast.IfStmt:
		b = append(b, "if "...)

		if s.Init != nil {
			b, err = formatStmt(ctx, b, s.Init, d)
			if err != nil {
				return nil, errors.Wrap(err, "init")
			}

			b = append(b, "; "...)
		}

		b, err = formatExpr(ctx, b, s.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}

		b = append(b, ' ')

		b, err = formatBlock(ctx, b, s.Then, d)
		if err != nil {
			return nil, errors.Wrap(err, "then block")
		}

		if s.Else != nil {
			b = append(b, " else "...)

			b, err = formatStmt(ctx, b, s.Else, d)
			if err != nil {
				return nil, errors.Wrap(err, "else")
			}
		}
	case *ast.ForStmt:
		b = append(b, "for "...)

		if s.Init != nil || s.Post != nil {
			b, err = formatClauses(ctx, b, s, d)
			if err != nil {
				return nil, err
			}

			b = append(b, ' ')
		} else if s.Cond != nil {
			b, err = formatExpr(ctx, b, s.Cond)
			if err != nil {
				return nil, errors.Wrap(err, "cond")
			}

			b = append(b, ' ')
		}

		b, err = formatBlock(ctx, b, s.Body, d)
		if err != nil {
			return nil, errors.Wrap(err, "body")
		}
	default:
		return nil, errors.New("unsupported stmt: %T", s)
	}

	return b, nil
}

func formatClauses(ctx context.Context, b []byte, s *ast.ForStmt, d int) (_ []byte, err error) {
	if s.Init != nil {
		b, err = formatStmt(ctx, b, s.Init, d)
		if err != nil {
			return nil, errors.Wrap(err, "init")
		}
	}

	b = append(b, "; "...)

	if s.Cond != nil {
		b, err = formatExpr(ctx, b, s.Cond)
		if err != nil {
			return nil, errors.Wrap(err, "cond")
		}
	}

	b = append(b, "; "...)

	if s.Post != nil {
		b, err = formatStmt(ctx, b, s.Post, d)
		if err != nil {
			return nil, errors.Wrap(err, "post")
		}
	}

	return b, nil
}

func formatExpr(ctx context.Context, b []byte, x ast.Expr) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Ident:
		b = append(b, x.Name...)
	case *ast.IntLit:
		b = append(b, x.Text...)
	case *ast.StringLit:
		b = append(b, x.Text...)
	case *ast.BoolLit:
		b = strconv.AppendBool(b, x.Value)
	case *ast.ParenExpr:
		b = append(b, '(')

		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}

		b = append(b, ')')
	case *ast.UnaryExpr:
		b = append(b, x.Op...)

		if y, ok := x.X.(*ast.UnaryExpr); ok && x.Op == "-" && y.Op == "-" {
			b = append(b, ' ')
		}

		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}
	case *ast.BinaryExpr:
		b, err = formatExpr(ctx, b, x.Left)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = app(b, 0, " %s ", x.Op)

		b, err = formatExpr(ctx, b, x.Right)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}
	case *ast.CallExpr:
		b, err = formatExpr(ctx, b, x.Fun)
		if err != nil {
			return nil, errors.Wrap(err, "func")
		}

		b = append(b, '(')

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b, err = formatExpr(ctx, b, a)
			if err != nil {
				return nil, errors.Wrap(err, "arg %d", i)
			}
		}

		b = append(b, ')')
	case *ast.SelectorExpr:
		b, err = formatExpr(ctx, b, x.X)
		if err != nil {
			return nil, err
		}

		b = app(b, 0, ".%s", x.Sel.Name)
	case *ast.StructLit:
		b = app(b, 0, "%s{", x.Type.Name)

		for i, f := range x.Fields {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = app(b, 0, "%s: ", f.Key.Name)

			b, err = formatExpr(ctx, b, f.Value)
			if err != nil {
				return nil, errors.Wrap(err, "field %v", f.Key.Name)
			}
		}

		b = append(b, '}')
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	for d > len(tabs) {
		b = append(b, tabs...)
		d -= len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
