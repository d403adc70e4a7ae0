package back

import (
	"github.com/gosubset/x86c/compiler/analyze"
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/tp"
)

func (g *generator) stmts(l []ast.Stmt) error {
	for _, x := range l {
		err := g.stmt(x)
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *generator) stmt(x ast.Stmt) (err error) {
	switch x := x.(type) {
	case *ast.Block:
		return g.stmts(x.Stmts)
	case *ast.VarDecl:
		return g.varDecl(x)
	case *ast.AssignStmt:
		return g.assign(x)
	case *ast.IncDecStmt:
		off, _, err := g.offset(x.X)
		if err != nil {
			return err
		}

		op := "decq"
		if x.Inc {
			op = "incq"
		}

		g.u.Ins(op, slot(off))
	case *ast.IfStmt:
		return g.ifStmt(x)
	case *ast.ForStmt:
		return g.forStmt(x)
	case *ast.ReturnStmt:
		if x.Value != nil {
			err = g.expr(x.Value)
			if err != nil {
				return err
			}
		}

		g.u.Ins("jmp", g.ret)
	case *ast.BranchStmt:
		if len(g.loops) == 0 {
			return diag.Internal(x.Pos, "%s outside of a loop", x.Tok)
		}

		l := g.loops[len(g.loops)-1]

		switch x.Tok {
		case "break":
			g.u.Ins("jmp", l.end)
		case "continue":
			g.u.Ins("jmp", l.cont)
		default:
			return diag.Internal(x.Pos, "unexpected branch %s", x.Tok)
		}
	case *ast.ExprStmt:
		return g.discard(x.X)
	default:
		return diag.Internal(x.Position(), "unexpected statement %T", x)
	}

	return nil
}

func (g *generator) varDecl(x *ast.VarDecl) error {
	sym, ok := g.info.Defs[x.Name]
	if !ok {
		if x.Name.Name != "_" {
			return diag.Internal(x.Pos, "variable %s was not allocated", x.Name.Name)
		}

		if x.Value == nil {
			return nil
		}

		return g.discard(x.Value)
	}

	if x.Value == nil {
		g.zero(sym.Offset, sym.Type)

		return nil
	}

	return g.store(sym.Offset, sym.Type, x.Value)
}

func (g *generator) assign(x *ast.AssignStmt) (err error) {
	if id, ok := ast.Unparen(x.Lhs).(*ast.Ident); ok && id.Name == "_" {
		return g.discard(x.Rhs)
	}

	off, t, err := g.offset(x.Lhs)
	if err != nil {
		return err
	}

	if x.Op == "=" {
		return g.store(off, t, x.Rhs)
	}

	err = g.expr(x.Rhs)
	if err != nil {
		return err
	}

	g.u.Ins("movq", "%rax", "%rcx")
	g.u.Ins("movq", slot(off), "%rax")

	err = g.arith(x.Op[:len(x.Op)-1], x.Pos)
	if err != nil {
		return err
	}

	g.u.Ins("movq", "%rax", slot(off))

	return nil
}

func (g *generator) ifStmt(x *ast.IfStmt) (err error) {
	if x.Init != nil {
		err = g.stmt(x.Init)
		if err != nil {
			return err
		}
	}

	els := g.u.Label()
	end := els

	if x.Else != nil {
		end = g.u.Label()
	}

	err = g.cond(x.Cond, els)
	if err != nil {
		return err
	}

	err = g.stmts(x.Then.Stmts)
	if err != nil {
		return err
	}

	if x.Else != nil {
		g.u.Ins("jmp", end)
		g.u.Mark(els)

		err = g.stmt(x.Else)
		if err != nil {
			return err
		}
	}

	g.u.Mark(end)

	return nil
}

func (g *generator) forStmt(x *ast.ForStmt) (err error) {
	if x.Init != nil {
		err = g.stmt(x.Init)
		if err != nil {
			return err
		}
	}

	top := g.u.Label()
	cont := g.u.Label()
	end := g.u.Label()

	g.u.Mark(top)

	if x.Cond != nil {
		err = g.cond(x.Cond, end)
		if err != nil {
			return err
		}
	}

	g.loops = append(g.loops, loop{cont: cont, end: end})

	err = g.stmts(x.Body.Stmts)
	if err != nil {
		return err
	}

	g.loops = g.loops[:len(g.loops)-1]

	g.u.Mark(cont)

	if x.Post != nil {
		err = g.stmt(x.Post)
		if err != nil {
			return err
		}
	}

	g.u.Ins("jmp", top)
	g.u.Mark(end)

	return nil
}

// cond jumps to label if x is false.
func (g *generator) cond(x ast.Expr, label string) error {
	err := g.expr(x)
	if err != nil {
		return err
	}

	g.u.Ins("testq", "%rax", "%rax")
	g.u.Ins("je", label)

	return nil
}

// offset returns the frame offset and type of an assignable expression.
func (g *generator) offset(x ast.Expr) (int, tp.Type, error) {
	switch x := ast.Unparen(x).(type) {
	case *ast.Ident:
		sym := g.info.Uses[x]
		if sym == nil || sym.Kind != analyze.Var && sym.Kind != analyze.Param {
			return 0, nil, diag.Internal(x.Pos, "unresolved variable %s", x.Name)
		}

		return sym.Offset, sym.Type, nil
	case *ast.SelectorExpr:
		f, ok := g.info.Fields[x]
		if !ok {
			return 0, nil, diag.Internal(x.Sel.Pos, "unknown field %s", x.Sel.Name)
		}

		base, _, err := g.offset(x.X)
		if err != nil {
			return 0, nil, err
		}

		return base + f.Offset, f.Type, nil
	default:
		return 0, nil, diag.Internal(x.Position(), "%T is not addressable", x)
	}
}

// store evaluates x into the slot at off.
func (g *generator) store(off int, t tp.Type, x ast.Expr) error {
	if st, ok := t.(*tp.Struct); ok {
		return g.storeStruct(off, st, x)
	}

	err := g.expr(x)
	if err != nil {
		return err
	}

	g.u.Ins("movq", "%rax", slot(off))

	return nil
}

// storeStruct writes a struct value field by field.
// Literal fields are all evaluated before the first store, so the literal may read the destination.
func (g *generator) storeStruct(off int, st *tp.Struct, x ast.Expr) error {
	switch v := ast.Unparen(x).(type) {
	case *ast.StructLit:
		var fields []tp.StructField
		set := map[string]bool{}

		for _, kv := range v.Fields {
			f, ok := st.Field(kv.Key.Name)
			if !ok {
				return diag.Internal(kv.Key.Pos, "unknown field %s in struct literal of type %v", kv.Key.Name, st.Name)
			}

			err := g.expr(kv.Value)
			if err != nil {
				return err
			}

			g.push("%rax")

			fields = append(fields, f)
			set[f.Name] = true
		}

		for i := len(fields) - 1; i >= 0; i-- {
			g.pop("%rax")
			g.u.Ins("movq", "%rax", slot(off+fields[i].Offset))
		}

		for _, f := range st.Fields {
			if !set[f.Name] {
				g.zero(off+f.Offset, f.Type)
			}
		}
	case *ast.Ident:
		src, _, err := g.offset(v)
		if err != nil {
			return err
		}

		if src == off {
			return nil
		}

		for _, f := range st.Fields {
			g.u.Ins("movq", slot(src+f.Offset), "%rax")
			g.u.Ins("movq", "%rax", slot(off+f.Offset))
		}
	default:
		return diag.Internal(x.Position(), "unexpected struct value %T", v)
	}

	return nil
}

// zero stores the zero value of t at off.
func (g *generator) zero(off int, t tp.Type) {
	switch t := t.(type) {
	case *tp.Struct:
		for _, f := range t.Fields {
			g.zero(off+f.Offset, f.Type)
		}
	default:
		if t == tp.String {
			g.u.Ins("leaq", rip(g.u.Literal("")), "%rax")
			g.u.Ins("movq", "%rax", slot(off))

			return
		}

		g.u.Ins("movq", "$0", slot(off))
	}
}

// discard evaluates x for its side effects.
func (g *generator) discard(x ast.Expr) error {
	if _, ok := g.info.Types[x].(*tp.Struct); !ok {
		return g.expr(x)
	}

	lit, ok := ast.Unparen(x).(*ast.StructLit)
	if !ok {
		return nil
	}

	for _, kv := range lit.Fields {
		err := g.expr(kv.Value)
		if err != nil {
			return err
		}
	}

	return nil
}
