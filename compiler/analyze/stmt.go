package analyze

import (
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/tp"
)

func (a *analyzer) stmts(s ScopeID, l []ast.Stmt) error {
	for _, x := range l {
		err := a.stmt(s, x)
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *analyzer) stmt(s ScopeID, x ast.Stmt) (err error) {
	switch x := x.(type) {
	case *ast.Block:
		return a.stmts(a.newScope(s), x.Stmts)
	case *ast.VarDecl:
		return a.varDecl(s, x)
	case *ast.AssignStmt:
		return a.assign(s, x)
	case *ast.IncDecStmt:
		t, err := a.lvalue(s, x.X)
		if err != nil {
			return err
		}

		if t != tp.Int {
			return diag.Errorf(diag.TypeMismatch, x.Pos, "invalid operation: non-numeric operand of type %v", t)
		}

		return nil
	case *ast.IfStmt:
		s = a.newScope(s)

		if x.Init != nil {
			err = a.stmt(s, x.Init)
			if err != nil {
				return err
			}
		}

		err = a.cond(s, x.Cond, "if statement")
		if err != nil {
			return err
		}

		err = a.stmt(s, x.Then)
		if err != nil {
			return err
		}

		if x.Else != nil {
			return a.stmt(s, x.Else)
		}

		return nil
	case *ast.ForStmt:
		s = a.newScope(s)

		if x.Init != nil {
			err = a.stmt(s, x.Init)
			if err != nil {
				return err
			}
		}

		if x.Cond != nil {
			err = a.cond(s, x.Cond, "for loop")
			if err != nil {
				return err
			}
		}

		if x.Post != nil {
			err = a.stmt(s, x.Post)
			if err != nil {
				return err
			}
		}

		return a.stmt(s, x.Body)
	case *ast.ReturnStmt:
		return a.ret(s, x)
	case *ast.BranchStmt:
		return nil
	case *ast.ExprStmt:
		call, ok := ast.Unparen(x.X).(*ast.CallExpr)
		if !ok {
			_, err = a.expr(s, x.X)
			if err != nil {
				return err
			}

			return diag.Errorf(diag.TypeMismatch, x.Pos, "expression is not used")
		}

		_, err = a.call(s, call)

		return err
	default:
		return diag.Internal(x.Position(), "unexpected statement %T", x)
	}
}

func (a *analyzer) varDecl(s ScopeID, x *ast.VarDecl) (err error) {
	var t tp.Type

	if x.Type != nil {
		t, err = a.resolveType(s, x.Type)
		if err != nil {
			return err
		}
	}

	// the value is resolved before the name is visible
	if x.Value != nil {
		vt, err := a.value(s, x.Value)
		if err != nil {
			return err
		}

		switch {
		case t == nil:
			t = vt
		case t != vt:
			return diag.Errorf(diag.TypeMismatch, x.Value.Position(), "cannot use value of type %v as %v value in variable declaration", vt, t)
		}
	}

	if x.Name.Name == "_" {
		if x.Short {
			return diag.Errorf(diag.SyntaxError, x.Pos, "no new variables on left side of :=")
		}

		return nil
	}

	sym := &Symbol{Name: x.Name.Name, Kind: Var, Type: t, Pos: x.Name.Pos}

	_, err = a.declare(s, sym)
	if err != nil && x.Short {
		return diag.Errorf(diag.Redeclaration, x.Pos, "no new variables on left side of :=")
	}
	if err != nil {
		return err
	}

	a.alloc(sym)

	a.fn.Locals = append(a.fn.Locals, sym)
	a.info.Defs[x.Name] = sym

	return nil
}

func (a *analyzer) assign(s ScopeID, x *ast.AssignStmt) (err error) {
	if id, ok := x.Lhs.(*ast.Ident); ok && id.Name == "_" {
		if x.Op != "=" {
			return diag.Errorf(diag.TypeMismatch, id.Pos, "cannot use _ as value")
		}

		_, err = a.value(s, x.Rhs)

		return err
	}

	lt, err := a.lvalue(s, x.Lhs)
	if err != nil {
		return err
	}

	rt, err := a.value(s, x.Rhs)
	if err != nil {
		return err
	}

	if x.Op != "=" && (lt != tp.Int || rt != tp.Int) {
		return diag.Errorf(diag.TypeMismatch, x.Pos, "invalid operation: operator %s not defined on %v", x.Op[:len(x.Op)-1], lt)
	}

	if lt != rt {
		return diag.Errorf(diag.TypeMismatch, x.Rhs.Position(), "cannot use value of type %v as %v value in assignment", rt, lt)
	}

	if x.Op == "/=" || x.Op == "%=" {
		if isZero(x.Rhs) {
			return diag.Errorf(diag.TypeMismatch, x.Rhs.Position(), "invalid operation: division by zero")
		}
	}

	return nil
}

// lvalue checks x is assignable and returns its type.
// Assigning does not count as using a variable.
func (a *analyzer) lvalue(s ScopeID, x ast.Expr) (tp.Type, error) {
	switch x := ast.Unparen(x).(type) {
	case *ast.Ident:
		sym, err := a.resolve(s, x)
		if err != nil {
			return nil, err
		}

		if sym.Kind != Var && sym.Kind != Param {
			return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "cannot assign to %s (neither addressable nor a map index expression)", x.Name)
		}

		a.info.Uses[x] = sym
		a.info.Types[x] = sym.Type

		return sym.Type, nil
	case *ast.SelectorExpr:
		return a.selector(s, x, false)
	}

	return nil, diag.Errorf(diag.TypeMismatch, x.Position(), "cannot assign to expression")
}

func (a *analyzer) cond(s ScopeID, x ast.Expr, where string) error {
	t, err := a.value(s, x)
	if err != nil {
		return err
	}

	if t != tp.Bool {
		return diag.Errorf(diag.TypeMismatch, x.Position(), "non-boolean condition in %s", where)
	}

	return nil
}

func (a *analyzer) ret(s ScopeID, x *ast.ReturnStmt) error {
	want := a.fn.Type.Out

	switch {
	case want == nil && x.Value != nil:
		return diag.Errorf(diag.TypeMismatch, x.Value.Position(), "too many return values")
	case want != nil && x.Value == nil:
		return diag.Errorf(diag.TypeMismatch, x.Pos, "not enough return values, want %v", want)
	case x.Value == nil:
		return nil
	}

	t, err := a.value(s, x.Value)
	if err != nil {
		return err
	}

	if t != want {
		return diag.Errorf(diag.TypeMismatch, x.Value.Position(), "cannot use value of type %v as %v value in return statement", t, want)
	}

	return nil
}
