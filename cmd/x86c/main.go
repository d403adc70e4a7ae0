package main

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gosubset/x86c/compiler"
	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/format"
)

func main() {
	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print the token stream of a file",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse",
		Description: "parse a file and print it back formatted",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile a file to x86-64 assembly",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "-", "output file"),
		},
	}

	app := &cli.Command{
		Name:        "x86c",
		Description: "x86c compiles a subset of Go to x86-64 assembly (GNU as, System V)",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("log", "stderr", "log output file (or stderr)"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.FlagfileFlag,
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			tokensCmd,
			parseCmd,
			compileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	w, err := logWriter(c.String("log"))
	if err != nil {
		return errors.Wrap(err, "open log file")
	}

	tlog.DefaultLogger = tlog.New(tlog.NewConsoleWriter(w, tlog.LstdFlags))

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func logWriter(name string) (io.Writer, error) {
	switch name {
	case "", "stderr", "-":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	return os.Create(name)
}

func tokensAct(c *cli.Command) error {
	ctx := rootContext()

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read file")
		}

		toks, err := compiler.Tokenize(ctx, a, text)
		if err != nil {
			return err
		}

		var b []byte

		for _, t := range toks {
			b = hfmt.Appendf(b, "%s:%v\t%v\t%s\n", a, t.Pos, t.Kind, strconv.Quote(t.Text))
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func parseAct(c *cli.Command) error {
	ctx := rootContext()

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read file")
		}

		f, err := compiler.Parse(ctx, a, text)
		if err != nil {
			return err
		}

		b, err := format.Format(ctx, nil, f)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}

		_, err = os.Stdout.Write(b)
		if err != nil {
			return errors.Wrap(err, "write")
		}
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := rootContext()

	if len(c.Args) != 1 {
		return errors.New("expected exactly one source file, got %d", len(c.Args))
	}

	res, err := compiler.CompileFile(ctx, c.Args[0])
	if err != nil {
		return err
	}

	printWarnings(res.Warnings)

	out := c.String("output")

	if out == "" || out == "-" {
		_, err = res.Unit.WriteTo(os.Stdout)
		if err != nil {
			return errors.Wrap(err, "write")
		}

		return nil
	}

	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = errors.Wrap(e, "close output")
		}
	}()

	_, err = res.Unit.WriteTo(f)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	tlog.Printw("compiled", "src", c.Args[0], "out", out)

	return nil
}

func printWarnings(ws []*diag.Error) {
	var b []byte

	for _, w := range ws {
		b = append(b, w.Error()...)
		b = append(b, '\n')
	}

	_, _ = os.Stderr.Write(b)
}

func rootContext() context.Context {
	return tlog.ContextWithSpan(context.Background(), tlog.Root())
}
