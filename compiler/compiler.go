package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gosubset/x86c/compiler/analyze"
	"github.com/gosubset/x86c/compiler/asm"
	"github.com/gosubset/x86c/compiler/ast"
	"github.com/gosubset/x86c/compiler/back"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/lex"
	"github.com/gosubset/x86c/compiler/parse"
	"github.com/gosubset/x86c/compiler/token"
)

type (
	Result struct {
		Unit     *asm.Unit
		Warnings []*diag.Error
	}
)

func CompileFile(ctx context.Context, name string) (*Result, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

// Compile translates one source file into assembly.
// Diagnostics are returned as *diag.Error with File set to name.
func Compile(ctx context.Context, name string, text []byte) (res *Result, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	f, err := Parse(ctx, name, text)
	if err != nil {
		return nil, err
	}

	info, err := analyze.Analyze(ctx, f)
	if err != nil {
		return nil, inFile(err, name)
	}

	u, err := back.Generate(ctx, f, info)
	if err != nil {
		return nil, inFile(err, name)
	}

	for _, w := range info.Warnings {
		w.File = name
	}

	return &Result{
		Unit:     u,
		Warnings: info.Warnings,
	}, nil
}

// Parse runs the lexer and the parser.
func Parse(ctx context.Context, name string, text []byte) (*ast.File, error) {
	toks, err := Tokenize(ctx, name, text)
	if err != nil {
		return nil, err
	}

	f, err := parse.Parse(ctx, name, toks)
	if err != nil {
		return nil, inFile(err, name)
	}

	return f, nil
}

func Tokenize(ctx context.Context, name string, text []byte) ([]token.Token, error) {
	toks, err := lex.Tokenize(ctx, text)
	if err != nil {
		return nil, inFile(err, name)
	}

	return toks, nil
}

func inFile(err error, name string) error {
	var e *diag.Error
	if errors.As(err, &e) && e.File == "" {
		e.File = name
	}

	return err
}
