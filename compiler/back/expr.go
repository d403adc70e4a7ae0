package back

import (
	"math"

	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/tp"
)

var setcc = map[string]string{
	"==": "sete",
	"!=": "setne",
	"<":  "setl",
	"<=": "setle",
	">":  "setg",
	">=": "setge",
}

// expr evaluates a scalar expression into %rax.
func (g *generator) expr(x ast.Expr) error {
	switch x := x.(type) {
	case *ast.ParenExpr:
		return g.expr(x.X)
	case *ast.IntLit:
		g.loadInt(x.Value)
	case *ast.BoolLit:
		var v int64
		if x.Value {
			v = 1
		}

		g.u.Ins("movq", imm(v), "%rax")
	case *ast.StringLit:
		g.u.Ins("leaq", rip(g.u.Literal(x.Value)), "%rax")
	case *ast.Ident, *ast.SelectorExpr:
		off, t, err := g.offset(x)
		if err != nil {
			return err
		}

		if _, ok := t.(*tp.Struct); ok {
			return diag.Internal(x.Position(), "struct value of type %v used as a scalar", t.String())
		}

		g.u.Ins("movq", slot(off), "%rax")
	case *ast.UnaryExpr:
		err := g.expr(x.X)
		if err != nil {
			return err
		}

		switch x.Op {
		case "-":
			g.u.Ins("negq", "%rax")
		case "!":
			g.u.Ins("xorq", "$1", "%rax")
		default:
			return diag.Internal(x.Pos, "unexpected unary operator %s", x.Op)
		}
	case *ast.BinaryExpr:
		return g.binary(x)
	case *ast.CallExpr:
		return g.call(x)
	case *ast.StructLit:
		return diag.Internal(x.Pos, "struct literal used as a scalar")
	default:
		return diag.Internal(x.Position(), "unexpected expression %T", x)
	}

	return nil
}

func (g *generator) loadInt(v int64) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		g.u.Ins("movabsq", imm(v), "%rax")
		return
	}

	g.u.Ins("movq", imm(v), "%rax")
}

func (g *generator) binary(x *ast.BinaryExpr) (err error) {
	if x.Op == "&&" || x.Op == "||" {
		end := g.u.Label()

		err = g.expr(x.Left)
		if err != nil {
			return err
		}

		// %rax already holds the result if we jump
		g.u.Ins("testq", "%rax", "%rax")

		if x.Op == "&&" {
			g.u.Ins("je", end)
		} else {
			g.u.Ins("jne", end)
		}

		err = g.expr(x.Right)
		if err != nil {
			return err
		}

		g.u.Mark(end)

		return nil
	}

	err = g.expr(x.Right)
	if err != nil {
		return err
	}

	g.push("%rax")

	err = g.expr(x.Left)
	if err != nil {
		return err
	}

	g.pop("%rcx")

	if cc, ok := setcc[x.Op]; ok {
		g.u.Ins("cmpq", "%rcx", "%rax")
		g.u.Ins(cc, "%al")
		g.u.Ins("movzbq", "%al", "%rax")

		return nil
	}

	return g.arith(x.Op, x.Pos)
}

// arith computes %rax op %rcx into %rax.
func (g *generator) arith(op string, pos diag.Pos) error {
	switch op {
	case "+":
		g.u.Ins("addq", "%rcx", "%rax")
	case "-":
		g.u.Ins("subq", "%rcx", "%rax")
	case "*":
		g.u.Ins("imulq", "%rcx", "%rax")
	case "/", "%":
		// idivq traps on MinInt64 / -1, so -1 takes its own path
		div := g.u.Label()
		end := g.u.Label()

		g.u.Ins("cmpq", "$-1", "%rcx")
		g.u.Ins("jne", div)

		if op == "/" {
			g.u.Ins("negq", "%rax")
		} else {
			g.u.Ins("xorl", "%eax", "%eax")
		}

		g.u.Ins("jmp", end)
		g.u.Mark(div)
		g.u.Ins("cqo")
		g.u.Ins("idivq", "%rcx")

		if op == "%" {
			g.u.Ins("movq", "%rdx", "%rax")
		}

		g.u.Mark(end)
	default:
		return diag.Internal(pos, "unexpected arithmetic operator %s", op)
	}

	return nil
}
