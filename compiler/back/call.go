package back

import (
	"github.com/gosubset/x86c/compiler/analyze"
	"github.com/gosubset/x86c/compiler/asm"
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/tp"
)

func (g *generator) call(x *ast.CallExpr) error {
	sym := g.info.Calls[x]

	switch {
	case sym == nil:
		return diag.Internal(x.Pos, "unresolved call")
	case sym.Kind == analyze.Builtin:
		return g.print(x, sym)
	case sym.Kind != analyze.Func:
		return diag.Internal(x.Pos, "call of %v %s", sym.Kind, sym.Name)
	}

	if len(x.Args) > len(asm.ArgRegs) {
		return diag.Internal(x.Pos, "%d arguments do not fit in registers", len(x.Args))
	}

	err := g.args(x.Args, asm.ArgRegs, false)
	if err != nil {
		return err
	}

	g.callq(sym.Label)

	return nil
}

// print lowers print, println, fmt.Print and fmt.Println to one printf call.
// fmt.Print separates two operands only if neither is a string.
func (g *generator) print(x *ast.CallExpr, sym *analyze.Symbol) error {
	line := sym.Name != "fmt.Print"

	if len(x.Args) > len(asm.ArgRegs)-1 {
		return diag.Internal(x.Pos, "%s with %d arguments", sym.Name, len(x.Args))
	}

	var f []byte
	var prev tp.Type

	for i, arg := range x.Args {
		t := g.info.Types[arg]

		if i != 0 && (line || prev != tp.String && t != tp.String) {
			f = append(f, ' ')
		}

		switch t {
		case tp.Int:
			f = append(f, "%ld"...)
		case tp.Bool, tp.String:
			f = append(f, "%s"...)
		default:
			return diag.Internal(arg.Position(), "cannot print value of type %v", t)
		}

		prev = t
	}

	if line {
		f = append(f, '\n')
	}

	err := g.args(x.Args, asm.ArgRegs[1:], true)
	if err != nil {
		return err
	}

	g.u.Ins("leaq", rip(g.u.Literal(string(f))), "%rdi")
	g.u.Ins("xorl", "%eax", "%eax")
	g.callq("printf")

	return nil
}

// args evaluates args right to left and loads them into regs.
// If text is set bool values are replaced by pointers to "true" or "false".
func (g *generator) args(args []ast.Expr, regs []string, text bool) error {
	for i := len(args) - 1; i >= 0; i-- {
		err := g.expr(args[i])
		if err != nil {
			return err
		}

		if text && g.info.Types[args[i]] == tp.Bool {
			g.u.Ins("testq", "%rax", "%rax")
			g.u.Ins("leaq", rip(g.u.Literal("false")), "%rax")
			g.u.Ins("leaq", rip(g.u.Literal("true")), "%rcx")
			g.u.Ins("cmovne", "%rcx", "%rax")
		}

		g.push("%rax")
	}

	for i := range args {
		g.pop(regs[i])
	}

	return nil
}
