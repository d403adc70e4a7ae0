package back

import (
	"context"
	"strconv"

	"tlog.app/go/tlog"

	"github.com/gosubset/x86c/compiler/analyze"
	"github.com/gosubset/x86c/compiler/asm"
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/diag"
)

type (
	generator struct {
		tr   tlog.Span
		info *analyze.Info
		u    *asm.Unit

		fn    *analyze.FuncInfo
		ret   string
		loops []loop

		depth int // bytes pushed since the prologue
	}

	loop struct {
		cont string
		end  string
	}
)

// Generate lowers an analyzed file to x86-64 assembly.
// Functions are emitted in declaration order.
// A returned error is always a CodegenError: analysis is expected to reject everything else.
func Generate(ctx context.Context, f *ast.File, info *analyze.Info) (u *asm.Unit, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "generate", "file", f.Name)
	defer tr.Finish("err", &err)

	g := &generator{
		tr:   tr,
		info: info,
		u:    asm.NewUnit(),
	}

	for _, d := range f.Decls {
		d, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}

		err = g.function(d)
		if err != nil {
			return nil, err
		}
	}

	if tr.If("asm") {
		tr.Printw("assembly", "text", g.u.String())
	}

	tr.Printw("generated", "funcs", len(info.Funcs), "literals", len(g.u.Pool()))

	return g.u, nil
}

func (g *generator) function(d *ast.FuncDecl) (err error) {
	fn := g.info.Funcs[d]
	if fn == nil {
		return diag.Internal(d.Pos, "function %s was not analyzed", d.Name)
	}

	g.fn = fn
	g.ret = g.u.Label()
	g.loops = g.loops[:0]
	g.depth = 0

	name := fn.Sym.Label

	g.u.Comment("func %s at %s frame %d", d.Name, d.Pos.String(), fn.Frame)

	if name == "main" {
		g.u.Ins(".globl", name)
	}

	g.u.Ins(".type", name, "@function")
	g.u.Mark(name)

	g.u.Ins("pushq", "%rbp")
	g.u.Ins("movq", "%rsp", "%rbp")

	if fn.Frame != 0 {
		g.u.Ins("subq", imm(int64(fn.Frame)), "%rsp")
	}

	for i, p := range fn.Params {
		g.u.Ins("movq", asm.ArgRegs[i], slot(p.Offset))
	}

	err = g.stmts(d.Body.Stmts)
	if err != nil {
		return err
	}

	if g.depth != 0 {
		return diag.Internal(d.Body.End, "unbalanced stack in %s: %d bytes", d.Name, g.depth)
	}

	g.u.Mark(g.ret)

	if name == "main" {
		g.u.Ins("movl", "$0", "%eax")
	}

	g.u.Ins("leave")
	g.u.Ins("ret")
	g.u.Ins(".size", name, ".-"+name)
	g.u.Blank()

	if g.tr.If("frame") {
		g.tr.Printw("function", "name", d.Name, "label", name, "frame", fn.Frame, "params", len(fn.Params))
	}

	return nil
}

func (g *generator) push(r string) {
	g.u.Ins("pushq", r)
	g.depth += 8
}

func (g *generator) pop(r string) {
	g.u.Ins("popq", r)
	g.depth -= 8
}

// callq calls fn keeping %rsp 16-byte aligned at the call.
func (g *generator) callq(fn string) {
	pad := g.depth%16 != 0

	if pad {
		g.u.Ins("subq", "$8", "%rsp")
		g.depth += 8
	}

	g.u.Ins("call", fn)

	if pad {
		g.u.Ins("addq", "$8", "%rsp")
		g.depth -= 8
	}
}

func imm(v int64) string {
	return "$" + strconv.FormatInt(v, 10)
}

func slot(off int) string {
	return strconv.Itoa(off) + "(%rbp)"
}

func rip(label string) string {
	return label + "(%rip)"
}
