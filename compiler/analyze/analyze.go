package analyze

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/set"
	"github.com/gosubset/x86c/compiler/tp"
)

type (
	// Info is everything the code generator needs to know about a checked file.
	Info struct {
		Scopes  []Scope
		Symbols []*Symbol

		Defs   map[*ast.Ident]*Symbol // variables declared by VarDecl
		Uses   map[*ast.Ident]*Symbol // identifiers read or assigned
		Types  map[ast.Expr]tp.Type   // nil for calls without result
		Fields map[*ast.SelectorExpr]tp.StructField
		Calls  map[*ast.CallExpr]*Symbol // Func or Builtin

		Funcs   map[*ast.FuncDecl]*FuncInfo
		Structs map[string]*tp.Struct

		Warnings []*diag.Error
	}

	FuncInfo struct {
		Decl   *ast.FuncDecl
		Sym    *Symbol
		Type   *tp.Func
		Scope  ScopeID
		Params []*Symbol
		Locals []*Symbol
		Frame  int // bytes below %rbp, multiple of 16
	}

	analyzer struct {
		tr   tlog.Span
		info *Info

		fn    *FuncInfo
		frame int // lowest allocated offset of fn

		used set.Bits[SymbolID]
		warn diag.List

		fmtPrint   *Symbol
		fmtPrintln *Symbol
	}
)

// MaxArgs is the number of integer argument registers.
const MaxArgs = 6

// MaxPrintArgs leaves one register for the printf format.
const MaxPrintArgs = MaxArgs - 1

// Analyze resolves every name in f, assigns stack slots and checks types.
// The first error is returned as a *diag.Error. Unused variables are reported as warnings in Info.
func Analyze(ctx context.Context, f *ast.File) (info *Info, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "analyze", "file", f.Name)
	defer tr.Finish("err", &err)

	a := &analyzer{
		tr: tr,
		info: &Info{
			Defs:    map[*ast.Ident]*Symbol{},
			Uses:    map[*ast.Ident]*Symbol{},
			Types:   map[ast.Expr]tp.Type{},
			Fields:  map[*ast.SelectorExpr]tp.StructField{},
			Calls:   map[*ast.CallExpr]*Symbol{},
			Funcs:   map[*ast.FuncDecl]*FuncInfo{},
			Structs: map[string]*tp.Struct{},
		},
	}

	err = a.universe()
	if err != nil {
		return nil, err
	}

	err = a.file(f)
	if err != nil {
		return nil, err
	}

	a.info.Warnings = a.warn.Drain()

	tr.Printw("analyzed", "scopes", len(a.info.Scopes), "symbols", len(a.info.Symbols), "used", a.used.Size(), "warnings", len(a.info.Warnings))

	if tr.If("scope") {
		tr.Printw("used symbols", "ids", a.used)
	}

	return a.info, nil
}

func (a *analyzer) universe() error {
	u := a.newScope(NoScope)
	_ = a.newScope(u)

	for _, x := range []struct {
		name string
		kind SymbolKind
		typ  tp.Type
	}{
		{name: "int", kind: Type, typ: tp.Int},
		{name: "bool", kind: Type, typ: tp.Bool},
		{name: "string", kind: Type, typ: tp.String},
		{name: "print", kind: Builtin},
		{name: "println", kind: Builtin},
	} {
		_, err := a.declare(Universe, &Symbol{Name: x.name, Kind: x.kind, Type: x.typ})
		if err != nil {
			return diag.Internal(diag.Pos{}, "universe: %v", err)
		}
	}

	a.fmtPrint = a.member("fmt.Print")
	a.fmtPrintln = a.member("fmt.Println")

	return nil
}

// member registers a package function outside of any scope.
func (a *analyzer) member(name string) *Symbol {
	sym := &Symbol{
		ID:    SymbolID(len(a.info.Symbols)),
		Name:  name,
		Kind:  Builtin,
		Scope: NoScope,
	}

	a.info.Symbols = append(a.info.Symbols, sym)

	return sym
}

func (a *analyzer) file(f *ast.File) (err error) {
	var fmtPkg *Symbol

	for _, imp := range f.Imports {
		if imp.Path != "fmt" {
			return diag.Errorf(diag.UnsupportedConstruct, imp.Pos, "package %q is not supported, only \"fmt\" is", imp.Path)
		}

		fmtPkg, err = a.declare(FileScope, &Symbol{Name: "fmt", Kind: Package, Pos: imp.Pos})
		if err != nil {
			return err
		}
	}

	for _, d := range f.Decls {
		if d, ok := d.(*ast.StructDecl); ok {
			err = a.structDecl(d)
			if err != nil {
				return err
			}
		}
	}

	for _, d := range f.Decls {
		if d, ok := d.(*ast.StructDecl); ok {
			err = a.structFields(d)
			if err != nil {
				return err
			}
		}
	}

	var funcs []*FuncInfo

	for _, d := range f.Decls {
		if d, ok := d.(*ast.FuncDecl); ok {
			fn, err := a.funcDecl(d)
			if err != nil {
				return err
			}

			funcs = append(funcs, fn)
		}
	}

	for _, fn := range funcs {
		err = a.funcBody(fn)
		if err != nil {
			return err
		}
	}

	if fmtPkg != nil && !a.used.IsSet(fmtPkg.ID) {
		a.warn.Add(diag.Errorf(diag.Warning, fmtPkg.Pos, "%q imported and not used", "fmt"))
	}

	return nil
}

func (a *analyzer) structDecl(d *ast.StructDecl) error {
	st := &tp.Struct{Name: d.Name}

	_, err := a.declare(FileScope, &Symbol{Name: d.Name, Kind: Type, Type: st, Pos: d.Pos})
	if err != nil {
		return err
	}

	a.info.Structs[d.Name] = st

	return nil
}

func (a *analyzer) structFields(d *ast.StructDecl) error {
	st := a.info.Structs[d.Name]

	for _, f := range d.Fields {
		if f.Name == "_" {
			return diag.Errorf(diag.UnsupportedConstruct, f.Pos, "blank struct fields are not supported")
		}

		if _, ok := st.Field(f.Name); ok {
			return diag.Errorf(diag.Redeclaration, f.Pos, "%s redeclared: duplicate field in struct %s", f.Name, d.Name)
		}

		t, err := a.resolveType(FileScope, f.Type)
		if err != nil {
			return err
		}

		if _, ok := t.(*tp.Struct); ok {
			return diag.Errorf(diag.UnsupportedConstruct, f.Type.Pos, "struct-typed field %s: nested structs are not supported", f.Name)
		}

		st.AddField(f.Name, t)
	}

	return nil
}

func (a *analyzer) funcDecl(d *ast.FuncDecl) (fn *FuncInfo, err error) {
	ft := &tp.Func{}

	if len(d.Params) > MaxArgs {
		return nil, diag.Errorf(diag.UnsupportedConstruct, d.Params[MaxArgs].Pos, "functions with more than %d parameters are not supported", MaxArgs)
	}

	for _, p := range d.Params {
		t, err := a.resolveType(FileScope, p.Type)
		if err != nil {
			return nil, err
		}

		if _, ok := t.(*tp.Struct); ok {
			return nil, diag.Errorf(diag.UnsupportedConstruct, p.Type.Pos, "struct parameters are not supported")
		}

		ft.In = append(ft.In, t)
	}

	if d.Result != nil {
		ft.Out, err = a.resolveType(FileScope, d.Result)
		if err != nil {
			return nil, err
		}

		if _, ok := ft.Out.(*tp.Struct); ok {
			return nil, diag.Errorf(diag.UnsupportedConstruct, d.Result.Pos, "struct results are not supported")
		}
	}

	label := "main." + d.Name
	if d.Name == "main" {
		label = "main"
	}

	sym, err := a.declare(FileScope, &Symbol{Name: d.Name, Kind: Func, Type: ft, Pos: d.Pos, Label: label})
	if err != nil {
		return nil, err
	}

	fn = &FuncInfo{
		Decl: d,
		Sym:  sym,
		Type: ft,
	}

	a.info.Funcs[d] = fn

	return fn, nil
}

func (a *analyzer) funcBody(fn *FuncInfo) (err error) {
	a.fn = fn
	a.frame = 0

	defer func() {
		a.fn = nil
	}()

	fn.Scope = a.newScope(FileScope)

	for i, p := range fn.Decl.Params {
		sym := &Symbol{Name: p.Name, Kind: Param, Type: fn.Type.In[i], Pos: p.Pos}
		a.alloc(sym)

		fn.Params = append(fn.Params, sym)

		if p.Name == "_" {
			continue
		}

		_, err = a.declare(fn.Scope, sym)
		if err != nil {
			return err
		}
	}

	// the body shares the scope with the parameters
	err = a.stmts(fn.Scope, fn.Decl.Body.Stmts)
	if err != nil {
		return err
	}

	if fn.Type.Out != nil && !terminates(fn.Decl.Body) {
		return diag.Errorf(diag.TypeMismatch, fn.Decl.Body.End, "missing return")
	}

	fn.Frame = (-a.frame + 15) &^ 15

	for _, sym := range fn.Locals {
		if !a.used.IsSet(sym.ID) {
			a.warn.Add(diag.Errorf(diag.Warning, sym.Pos, "declared and not used: %s", sym.Name))
		}
	}

	if a.tr.If("frame") {
		a.tr.Printw("frame", "func", fn.Decl.Name, "frame", fn.Frame, "params", len(fn.Params), "locals", len(fn.Locals))
	}

	return nil
}

// alloc gives sym a fresh slot below all previous slots of the function.
func (a *analyzer) alloc(sym *Symbol) {
	a.frame -= tp.Words(sym.Type) * tp.WordSize
	sym.Offset = a.frame
}

func (a *analyzer) resolveType(s ScopeID, x *ast.TypeName) (tp.Type, error) {
	sym := a.lookup(s, x.Name)

	switch {
	case sym == nil:
		return nil, diag.Errorf(diag.UndeclaredName, x.Pos, "undefined: %s", x.Name)
	case sym.Kind != Type:
		return nil, diag.Errorf(diag.TypeMismatch, x.Pos, "%s is not a type", x.Name)
	}

	return sym.Type, nil
}

// terminates reports whether control cannot fall off the end of s.
func terminates(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.Block:
		return len(s.Stmts) != 0 && terminates(s.Stmts[len(s.Stmts)-1])
	case *ast.IfStmt:
		return s.Else != nil && terminates(s.Then) && terminates(s.Else)
	case *ast.ForStmt:
		return s.Cond == nil && !breaks(s.Body)
	}

	return false
}

// breaks reports whether a break in s leaves the enclosing loop.
func breaks(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.BranchStmt:
		return s.Tok == "break"
	case *ast.Block:
		for _, s := range s.Stmts {
			if breaks(s) {
				return true
			}
		}
	case *ast.IfStmt:
		return breaks(s.Then) || s.Else != nil && breaks(s.Else)
	}

	return false
}
