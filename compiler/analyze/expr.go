package analyze

import (
	"strings"

	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/tp"
)

var comparisons = map[string]struct{}{"==": {}, "!=": {}, "<": {}, "<=": {}, ">": {}, ">=": {}}

// resolve finds the declaration x refers to.
func (a *analyzer) resolve(s ScopeID, x *ast.Ident) (*Symbol, error) {
	if x.Name == "_" {
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "cannot use _ as value")
	}

	sym := a.lookup(s, x.Name)
	if sym == nil {
		return nil, diag.Errorf(diag.UndeclaredName, x.Pos, "undefined: %s", x.Name)
	}

	return sym, nil
}

// value is expr for expressions that must produce a value.
func (a *analyzer) value(s ScopeID, x ast.Expr) (tp.Type, error) {
	t, err := a.expr(s, x)
	if err != nil {
		return nil, err
	}

	if t == nil {
		return nil, diag.Errorf(diag.TypeMismatch, x.Position(), "function call (no value) used as value")
	}

	return t, nil
}

func (a *analyzer) expr(s ScopeID, x ast.Expr) (t tp.Type, err error) {
	switch x := x.(type) {
	case *ast.Ident:
		t, err = a.ident(s, x)
	case *ast.IntLit:
		t = tp.Int
	case *ast.StringLit:
		if strings.IndexByte(x.Value, 0) >= 0 {
			return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "strings containing NUL bytes are not supported")
		}

		t = tp.String
	case *ast.BoolLit:
		t = tp.Bool
	case *ast.ParenExpr:
		t, err = a.expr(s, x.X)
	case *ast.UnaryExpr:
		t, err = a.unary(s, x)
	case *ast.BinaryExpr:
		t, err = a.binary(s, x)
	case *ast.CallExpr:
		t, err = a.call(s, x)
	case *ast.SelectorExpr:
		t, err = a.selector(s, x, true)
	case *ast.StructLit:
		t, err = a.structLit(s, x)
	default:
		return nil, diag.Internal(x.Position(), "unexpected expression %T", x)
	}

	if err != nil {
		return nil, err
	}

	a.info.Types[x] = t

	return t, nil
}

func (a *analyzer) ident(s ScopeID, x *ast.Ident) (tp.Type, error) {
	sym, err := a.resolve(s, x)
	if err != nil {
		return nil, err
	}

	switch sym.Kind {
	case Var, Param:
	case Type:
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "%s (type) is not an expression", x.Name)
	case Package:
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "use of package %s without selector", x.Name)
	case Func, Builtin:
		return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "function values are not supported: %s must be called", x.Name)
	default:
		return nil, diag.Internal(x.Pos, "symbol %s of kind %v", sym.Name, sym.Kind)
	}

	a.used.Set(sym.ID)
	a.info.Uses[x] = sym

	return sym.Type, nil
}

func (a *analyzer) unary(s ScopeID, x *ast.UnaryExpr) (tp.Type, error) {
	t, err := a.value(s, x.X)
	if err != nil {
		return nil, err
	}

	want := tp.Int
	if x.Op == "!" {
		want = tp.Bool
	}

	if t != want {
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "invalid operation: operator %s not defined on value of type %v", x.Op, t)
	}

	return t, nil
}

func (a *analyzer) binary(s ScopeID, x *ast.BinaryExpr) (tp.Type, error) {
	l, err := a.value(s, x.Left)
	if err != nil {
		return nil, err
	}

	r, err := a.value(s, x.Right)
	if err != nil {
		return nil, err
	}

	if l != r {
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "invalid operation: mismatched types %v and %v", l, r)
	}

	if _, cmp := comparisons[x.Op]; cmp && l == tp.String {
		return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "string comparison is not supported")
	}

	switch x.Op {
	case "+", "-", "*", "/", "%":
		if x.Op == "+" && l == tp.String {
			return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "string concatenation is not supported")
		}

		if l != tp.Int {
			break
		}

		if (x.Op == "/" || x.Op == "%") && isZero(x.Right) {
			return nil, diag.Errorf(diag.TypeMismatch, x.Right.Position(), "invalid operation: division by zero")
		}

		return tp.Int, nil
	case "&&", "||":
		if l == tp.Bool {
			return tp.Bool, nil
		}
	case "<", "<=", ">", ">=":
		if l == tp.Int {
			return tp.Bool, nil
		}
	case "==", "!=":
		if tp.Comparable(l) {
			return tp.Bool, nil
		}
	default:
		return nil, diag.Internal(x.Pos, "unexpected binary operator %s", x.Op)
	}

	return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "invalid operation: operator %s not defined on %v", x.Op, l)
}

func (a *analyzer) call(s ScopeID, x *ast.CallExpr) (tp.Type, error) {
	var sym *Symbol

	switch f := ast.Unparen(x.Fun).(type) {
	case *ast.Ident:
		var err error

		sym, err = a.resolve(s, f)
		if err != nil {
			return nil, err
		}

		switch sym.Kind {
		case Func, Builtin:
		case Type:
			return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "type conversions are not supported")
		default:
			return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "invalid operation: cannot call non-function %s", f.Name)
		}

		a.info.Uses[f] = sym
	case *ast.SelectorExpr:
		pkg, ok := f.X.(*ast.Ident)
		if !ok {
			return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "method calls are not supported")
		}

		ps, err := a.resolve(s, pkg)
		if err != nil {
			return nil, err
		}

		if ps.Kind != Package {
			return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "method calls are not supported")
		}

		a.used.Set(ps.ID)
		a.info.Uses[pkg] = ps

		switch f.Sel.Name {
		case "Print":
			sym = a.fmtPrint
		case "Println":
			sym = a.fmtPrintln
		default:
			return nil, diag.Errorf(diag.UnsupportedConstruct, f.Sel.Pos, "%s.%s is not supported, only Print and Println are", pkg.Name, f.Sel.Name)
		}
	default:
		return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "calls of computed functions are not supported")
	}

	a.info.Calls[x] = sym

	if sym.Kind == Builtin {
		return nil, a.printArgs(s, x, sym)
	}

	ft := sym.Type.(*tp.Func)

	switch {
	case len(x.Args) < len(ft.In):
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "not enough arguments in call to %s, have %d, want %d", sym.Name, len(x.Args), len(ft.In))
	case len(x.Args) > len(ft.In):
		return nil, diag.Errorf(diag.TypeMismatch, x.Args[len(ft.In)].Position(), "too many arguments in call to %s, have %d, want %d", sym.Name, len(x.Args), len(ft.In))
	}

	for i, arg := range x.Args {
		t, err := a.value(s, arg)
		if err != nil {
			return nil, err
		}

		if t != ft.In[i] {
			return nil, diag.Errorf(diag.TypeMismatch, arg.Position(), "cannot use value of type %v as %v value in argument to %s", t, ft.In[i], sym.Name)
		}
	}

	return ft.Out, nil
}

func (a *analyzer) printArgs(s ScopeID, x *ast.CallExpr, sym *Symbol) error {
	if len(x.Args) > MaxPrintArgs {
		return diag.Errorf(diag.UnsupportedConstruct, x.Args[MaxPrintArgs].Position(), "%s with more than %d arguments is not supported", sym.Name, MaxPrintArgs)
	}

	for _, arg := range x.Args {
		t, err := a.value(s, arg)
		if err != nil {
			return err
		}

		if t != tp.Int && t != tp.Bool && t != tp.String {
			return diag.Errorf(diag.TypeMismatch, arg.Position(), "cannot print value of type %v", t)
		}
	}

	return nil
}

// selector checks a field access. Struct values only live in variables, so x.X must name one.
func (a *analyzer) selector(s ScopeID, x *ast.SelectorExpr, use bool) (tp.Type, error) {
	base, ok := ast.Unparen(x.X).(*ast.Ident)
	if !ok {
		return nil, diag.Errorf(diag.UnsupportedConstruct, x.Pos, "field access is only supported on struct variables")
	}

	sym, err := a.resolve(s, base)
	if err != nil {
		return nil, err
	}

	switch sym.Kind {
	case Var, Param:
	case Package:
		return nil, diag.Errorf(diag.UnsupportedConstruct, x.Sel.Pos, "%s.%s used as value", base.Name, x.Sel.Name)
	default:
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "%s is not a struct variable", base.Name)
	}

	st, ok := sym.Type.(*tp.Struct)
	if !ok {
		return nil, diag.Errorf(diag.UndeclaredName, x.Sel.Pos, "%s.%s undefined (type %v has no field %s)", base.Name, x.Sel.Name, sym.Type, x.Sel.Name)
	}

	f, ok := st.Field(x.Sel.Name)
	if !ok {
		return nil, diag.Errorf(diag.UndeclaredName, x.Sel.Pos, "%s.%s undefined (type %v has no field %s)", base.Name, x.Sel.Name, st, x.Sel.Name)
	}

	if use {
		a.used.Set(sym.ID)
	}

	a.info.Uses[base] = sym
	a.info.Types[base] = sym.Type
	a.info.Fields[x] = f
	a.info.Types[x] = f.Type

	return f.Type, nil
}

func (a *analyzer) structLit(s ScopeID, x *ast.StructLit) (tp.Type, error) {
	t, err := a.resolveType(s, x.Type)
	if err != nil {
		return nil, err
	}

	st, ok := t.(*tp.Struct)
	if !ok {
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "invalid composite literal type %v", t)
	}

	seen := map[string]bool{}

	for _, kv := range x.Fields {
		f, ok := st.Field(kv.Key.Name)
		if !ok {
			return nil, diag.Errorf(diag.UndeclaredName, kv.Key.Pos, "unknown field %s in struct literal of type %v", kv.Key.Name, st)
		}

		if seen[f.Name] {
			return nil, diag.Errorf(diag.Redeclaration, kv.Key.Pos, "duplicate field name %s in struct literal", f.Name)
		}

		seen[f.Name] = true

		vt, err := a.value(s, kv.Value)
		if err != nil {
			return nil, err
		}

		if vt != f.Type {
			return nil, diag.Errorf(diag.TypeMismatch, kv.Value.Position(), "cannot use value of type %v as %v value in struct literal", vt, f.Type)
		}
	}

	return st, nil
}

func isZero(x ast.Expr) bool {
	l, ok := ast.Unparen(x).(*ast.IntLit)

	return ok && l.Value == 0
}
