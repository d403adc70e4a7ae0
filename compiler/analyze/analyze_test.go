package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/lex"
	"github.com/gosubset/x86c/compiler/parse"
	"github.com/gosubset/x86c/compiler/tp"
)

func analyzeSrc(t *testing.T, src string) (*ast.File, *Info, error) {
	t.Helper()

	ctx := context.Background()

	toks, err := lex.Tokenize(ctx, []byte(src))
	require.NoError(t, err)

	f, err := parse.Parse(ctx, "test.go", toks)
	require.NoError(t, err)

	info, err := Analyze(ctx, f)

	return f, info, err
}

func inMain(body string) string {
	return "package main\n\nfunc main() {\n" + body + "\n}\n"
}

func kindOf(t *testing.T, err error) diag.Kind {
	t.Helper()

	require.Error(t, err)

	var e *diag.Error
	require.ErrorAs(t, err, &e)

	return e.Kind
}

func TestAnalyzeShadowing(t *testing.T) {
	f, info, err := analyzeSrc(t, inMain(`	x := 1
	{
		x := "s"
		println(x)
	}
	println(x)`))
	require.NoError(t, err)

	fn := f.Decls[0].(*ast.FuncDecl)
	stmts := fn.Body.Stmts

	outer := info.Defs[stmts[0].(*ast.VarDecl).Name]
	blk := stmts[1].(*ast.Block)
	inner := info.Defs[blk.Stmts[0].(*ast.VarDecl).Name]

	require.NotNil(t, outer)
	require.NotNil(t, inner)
	assert.NotEqual(t, outer.ID, inner.ID)
	assert.Equal(t, tp.Int, outer.Type)
	assert.Equal(t, tp.String, inner.Type)
	assert.Greater(t, inner.Depth, outer.Depth)

	assert.Equal(t, -8, outer.Offset)
	assert.Equal(t, -16, inner.Offset)

	innerUse := blk.Stmts[1].(*ast.ExprStmt).X.(*ast.CallExpr).Args[0].(*ast.Ident)
	outerUse := stmts[2].(*ast.ExprStmt).X.(*ast.CallExpr).Args[0].(*ast.Ident)

	assert.Same(t, inner, info.Uses[innerUse])
	assert.Same(t, outer, info.Uses[outerUse])

	fi := info.Funcs[fn]
	require.NotNil(t, fi)
	assert.Equal(t, 16, fi.Frame)
	assert.Equal(t, "main", fi.Sym.Label)
	assert.Empty(t, info.Warnings)
}

func TestAnalyzeFreshSlots(t *testing.T) {
	f, info, err := analyzeSrc(t, `package main

type P struct {
	X, Y int
	Name string
}

func add(a, b int) int {
	c := a + b
	return c
}

func main() {
	for i := 0; i < 2; i++ {
		v := i
		println(v)
	}
	p := P{X: 1}
	w := add(p.X, p.Y)
	println(w, p.Name)
}
`)
	require.NoError(t, err)

	add := info.Funcs[f.Decls[1].(*ast.FuncDecl)]
	require.Len(t, add.Params, 2)
	assert.Equal(t, -8, add.Params[0].Offset)
	assert.Equal(t, -16, add.Params[1].Offset)
	require.Len(t, add.Locals, 1)
	assert.Equal(t, -24, add.Locals[0].Offset)
	assert.Equal(t, 32, add.Frame)
	assert.Equal(t, "main.add", add.Sym.Label)

	main := info.Funcs[f.Decls[2].(*ast.FuncDecl)]
	require.Len(t, main.Locals, 4) // i v p w

	offs := map[string]int{}
	for _, l := range main.Locals {
		offs[l.Name] = l.Offset
	}

	assert.Equal(t, map[string]int{"i": -8, "v": -16, "p": -40, "w": -48}, offs)
	assert.Equal(t, 48, main.Frame)

	st := info.Structs["P"]
	require.NotNil(t, st)
	assert.Equal(t, 24, st.Size())

	name, ok := st.Field("Name")
	require.True(t, ok)
	assert.Equal(t, 16, name.Offset)
	assert.Equal(t, tp.String, name.Type)
}

func TestAnalyzeCallBeforeDeclaration(t *testing.T) {
	_, info, err := analyzeSrc(t, `package main

func main() {
	println(twice(2))
}

func twice(x int) int {
	return x * 2
}
`)
	require.NoError(t, err)

	for call, sym := range info.Calls {
		if id, ok := call.Fun.(*ast.Ident); ok && id.Name == "twice" {
			assert.Equal(t, Func, sym.Kind)
			assert.Equal(t, "main.twice", sym.Label)
		}
	}
}

func TestAnalyzeUseBeforeDeclaration(t *testing.T) {
	_, _, err := analyzeSrc(t, inMain("\tprintln(y)\n\ty := 1\n\t_ = y"))

	var e *diag.Error
	require.ErrorAs(t, err, &e)

	assert.Equal(t, diag.UndeclaredName, e.Kind)
	assert.Equal(t, diag.Pos{Off: 37, Line: 4, Col: 10}, e.Pos)
	assert.Equal(t, "undefined: y", e.Msg)

	_, _, err = analyzeSrc(t, inMain("\tx := x"))
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))

	_, _, err = analyzeSrc(t, inMain("\t{\n\t\tz := 1\n\t\tprintln(z)\n\t}\n\tprintln(z)"))
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))

	_, _, err = analyzeSrc(t, inMain("\tif a := 1; a > 0 {\n\t}\n\tprintln(a)"))
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))

	_, _, err = analyzeSrc(t, inMain("\tfor i := 0; i < 1; i++ {\n\t}\n\tprintln(i)"))
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))

	_, _, err = analyzeSrc(t, inMain("\tfmt.Println(1)"))
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))

	_, _, err = analyzeSrc(t, inMain("\tvar p Q\n\t_ = p"))
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))
}

func TestAnalyzeRedeclaration(t *testing.T) {
	for _, src := range []string{
		inMain("\tx := 1\n\tvar x int\n\t_ = x"),
		inMain("\tx := 1\n\tx := 2\n\t_ = x"),
		"package main\nfunc f() {}\nfunc f() {}\nfunc main() {}\n",
		"package main\nfunc main() {}\nfunc main() {}\n",
		"package main\nfunc f(a, a int) {}\nfunc main() {}\n",
		"package main\nfunc f(a int) {\n\tvar a int\n\t_ = a\n}\nfunc main() {}\n",
		"package main\ntype P struct {\n\tX int\n\tX bool\n}\nfunc main() {}\n",
		"package main\ntype P struct{}\nfunc P() {}\nfunc main() {}\n",
		"package main\nimport \"fmt\"\nimport \"fmt\"\nfunc main() { fmt.Println() }\n",
		"package main\ntype P struct{ X int }\nfunc main() {\n\tp := P{X: 1, X: 2}\n\t_ = p\n}\n",
	} {
		_, _, err := analyzeSrc(t, src)
		assert.Equal(t, diag.Redeclaration, kindOf(t, err), "src %q: %v", src, err)
	}
}

func TestAnalyzeTypeMismatch(t *testing.T) {
	for _, body := range []string{
		"\tx := 1 + true\n\t_ = x",
		"\tif 1 {\n\t}",
		"\tfor \"s\" {\n\t}",
		"\tvar s string = 1\n\t_ = s",
		"\tx := \"a\" - \"b\"\n\t_ = x",
		"\tx := !1\n\t_ = x",
		"\tx := -true\n\t_ = x",
		"\tx := true && 1 == 1 || 2\n\t_ = x",
		"\tx := 1\n\tx = \"s\"",
		"\tx := true\n\tx++",
		"\tx := \"s\"\n\tx += \"t\"",
		"\treturn 1",
		"\t1 + 2",
		"\tx := 1 / 0\n\t_ = x",
		"\tx := 1\n\tx()",
		"\tx := main()\n\t_ = x",
		"\tint = 1",
	} {
		_, _, err := analyzeSrc(t, inMain(body))
		assert.Equal(t, diag.TypeMismatch, kindOf(t, err), "body %q: %v", body, err)
	}

	for _, src := range []string{
		"package main\nfunc f(a int) {}\nfunc main() { f(true) }\n",
		"package main\nfunc f(a int) {}\nfunc main() { f() }\n",
		"package main\nfunc f(a int) {}\nfunc main() { f(1, 2) }\n",
		"package main\nfunc f() int { println(1) }\nfunc main() { f() }\n",
		"package main\nfunc f() int { if true { return 1 } }\nfunc main() { f() }\n",
		"package main\nfunc f() int { for { break }\n}\nfunc main() { f() }\n",
		"package main\nfunc f() int { return }\nfunc main() { f() }\n",
		"package main\nfunc f() bool { return 1 }\nfunc main() { f() }\n",
		"package main\ntype P struct{ X int }\nfunc main() {\n\tp := P{X: true}\n\t_ = p\n}\n",
		"package main\ntype P struct{ X int }\nfunc main() {\n\tp := P{}\n\tq := P{}\n\t_ = p == q\n}\n",
		"package main\ntype P struct{ X int }\nfunc main() {\n\tp := P{}\n\tprintln(p)\n}\n",
		"package main\ntype P struct{ X int }\nfunc main() {\n\tp := P{}\n\tp = 1\n}\n",
	} {
		_, _, err := analyzeSrc(t, src)
		assert.Equal(t, diag.TypeMismatch, kindOf(t, err), "src %q: %v", src, err)
	}
}

func TestAnalyzeTerminatingStatements(t *testing.T) {
	_, _, err := analyzeSrc(t, `package main

func sign(x int) int {
	if x < 0 {
		return -1
	} else if x == 0 {
		return 0
	} else {
		return 1
	}
}

func loop() int {
	for {
	}
}

func main() {
	println(sign(-3))
	println(loop())
}
`)
	require.NoError(t, err)
}

func TestAnalyzeUnsupported(t *testing.T) {
	for _, src := range []string{
		"package main\nimport \"os\"\nfunc main() {}\n",
		"package main\nimport \"fmt\"\nfunc main() { fmt.Printf(\"%d\", 1) }\n",
		"package main\nimport \"fmt\"\nfunc main() { f := fmt.Println\n\t_ = f }\n",
		"package main\nfunc f() {}\nfunc main() { g := f\n\t_ = g }\n",
		"package main\nfunc main() { x := int(1)\n\t_ = x }\n",
		"package main\nfunc main() { x := \"a\" + \"b\"\n\t_ = x }\n",
		"package main\nfunc main() { x := \"a\" == \"b\"\n\t_ = x }\n",
		"package main\nfunc main() { x := \"a\" != \"b\"\n\t_ = x }\n",
		"package main\nfunc main() { x := \"a\" < \"b\"\n\t_ = x }\n",
		"package main\nfunc main() { println(\"a\\x00b\") }\n",
		"package main\nfunc main() { println(1, 2, 3, 4, 5, 6) }\n",
		"package main\nfunc f(a, b, c, d, e, f, g int) {}\nfunc main() {}\n",
		"package main\ntype P struct{ X int }\nfunc f(p P) {}\nfunc main() {}\n",
		"package main\ntype P struct{ X int }\nfunc f() P { return P{} }\nfunc main() {}\n",
		"package main\ntype P struct{ X int }\ntype Q struct{ P P }\nfunc main() {}\n",
		"package main\ntype P struct{ X int }\nfunc main() { x := P{X: 1}.X\n\t_ = x }\n",
	} {
		_, _, err := analyzeSrc(t, src)
		assert.Equal(t, diag.UnsupportedConstruct, kindOf(t, err), "src %q: %v", src, err)
	}
}

func TestAnalyzeFields(t *testing.T) {
	f, info, err := analyzeSrc(t, `package main

type P struct {
	X int
	Ok bool
}

func main() {
	var p P
	p.Ok = true
	if p.Ok {
		println(p.X)
	}
}
`)
	require.NoError(t, err)

	main := f.Decls[1].(*ast.FuncDecl)
	as := main.Body.Stmts[1].(*ast.AssignStmt)

	fld, ok := info.Fields[as.Lhs.(*ast.SelectorExpr)]
	require.True(t, ok)
	assert.Equal(t, "Ok", fld.Name)
	assert.Equal(t, 8, fld.Offset)

	_, _, err = analyzeSrc(t, "package main\ntype P struct{ X int }\nfunc main() {\n\tvar p P\n\tprintln(p.Y)\n}\n")
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))

	_, _, err = analyzeSrc(t, "package main\ntype P struct{ X int }\nfunc main() {\n\tp := P{Y: 1}\n\t_ = p\n}\n")
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))

	_, _, err = analyzeSrc(t, inMain("\tx := 1\n\tprintln(x.Y)"))
	assert.Equal(t, diag.UndeclaredName, kindOf(t, err))
}

func TestAnalyzeWarnings(t *testing.T) {
	_, info, err := analyzeSrc(t, `package main

import "fmt"

func main() {
	a := 1
	b := 2
	a = 3
	println(b)
}
`)
	require.NoError(t, err)

	require.Len(t, info.Warnings, 2)

	assert.Equal(t, diag.Warning, info.Warnings[0].Kind)
	assert.Equal(t, 3, info.Warnings[0].Pos.Line)
	assert.Equal(t, `"fmt" imported and not used`, info.Warnings[0].Msg)

	assert.Equal(t, diag.Pos{Off: 43, Line: 6, Col: 2}, info.Warnings[1].Pos)
	assert.Equal(t, "declared and not used: a", info.Warnings[1].Msg)
}

func TestAnalyzeFmt(t *testing.T) {
	_, info, err := analyzeSrc(t, `package main

import "fmt"

func main() {
	fmt.Print("a", 1)
	fmt.Println(true)
	print("b")
	println()
}
`)
	require.NoError(t, err)
	require.Len(t, info.Calls, 4)

	names := map[string]bool{}
	for _, sym := range info.Calls {
		assert.Equal(t, Builtin, sym.Kind)
		names[sym.Name] = true
	}

	assert.Equal(t, map[string]bool{"fmt.Print": true, "fmt.Println": true, "print": true, "println": true}, names)
	assert.Empty(t, info.Warnings)
}
