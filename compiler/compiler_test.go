package compiler

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosubset/x86c/compiler/diag"
)

func TestCompile(t *testing.T) {
	ctx := context.Background()

	res, err := Compile(ctx, "hello.go", []byte("package main\n\nfunc main() {\n\tprint(\"Hello, World!\")\n}\n"))
	require.NoError(t, err)
	require.NotNil(t, res.Unit)
	assert.Empty(t, res.Warnings)

	text := res.Unit.String()
	assert.Contains(t, text, "\t.string \"Hello, World!\"\n")
	assert.Contains(t, text, "\tcall\tprintf\n")
	assert.Contains(t, text, "\t.globl\tmain\n")
}

func TestCompileWarnings(t *testing.T) {
	res, err := Compile(context.Background(), "w.go", []byte("package main\n\nimport \"fmt\"\n\nfunc main() {\n\tx := 1\n}\n"))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)

	assert.Equal(t, `w.go:3:8: warning: "fmt" imported and not used`, res.Warnings[0].Error())
	assert.Equal(t, "w.go:6:2: warning: declared and not used: x", res.Warnings[1].Error())
}

func TestCompileErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		kind diag.Kind
		pos  string
	}{
		{name: "unterminated", src: "package main\n\nfunc main() {", kind: diag.SyntaxError, pos: "3:14"},
		{name: "char", src: "package main\n\nfunc main() {\n\t@\n}\n", kind: diag.LexError, pos: "4:2"},
		{name: "array", src: "package main\n\nfunc main() {\n\tvar a [3][3]int\n}\n", kind: diag.UnsupportedConstruct, pos: "4:8"},
		{name: "go", src: "package main\n\nfunc f() {}\n\nfunc main() {\n\tgo f()\n}\n", kind: diag.UnsupportedConstruct, pos: "6:2"},
		{name: "undefined", src: "package main\n\nfunc main() {\n\tprintln(y)\n}\n", kind: diag.UndeclaredName, pos: "4:10"},
		{name: "redeclared", src: "package main\n\nfunc main() {\n\tvar x int\n\tvar x int\n\tprintln(x)\n}\n", kind: diag.Redeclaration, pos: "5:6"},
		{name: "mismatch", src: "package main\n\nfunc main() {\n\tx := 1 + true\n\tprintln(x)\n}\n", kind: diag.TypeMismatch, pos: "4:9"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Compile(context.Background(), "bad.go", []byte(tc.src))
			require.Error(t, err)
			assert.Nil(t, res)

			var e *diag.Error
			require.ErrorAs(t, err, &e)

			assert.Equal(t, tc.kind, e.Kind, "%v", err)
			assert.Equal(t, tc.pos, e.Pos.String(), "%v", err)
			assert.Equal(t, "bad.go", e.File)
			assert.True(t, strings.HasPrefix(err.Error(), "bad.go:"+tc.pos+": "), "%v", err)
		})
	}
}

func TestCompileUnterminatedMessage(t *testing.T) {
	_, err := Compile(context.Background(), "bad.go", []byte("package main\n\nfunc main() {"))
	require.Error(t, err)
	assert.EqualError(t, err, "bad.go:3:14: syntax error: unexpected EOF, want }")
}

func TestCompileFileMissing(t *testing.T) {
	_, err := CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.go"))
	require.Error(t, err)

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Zero(t, diag.KindOf(err))
}

func TestDeterministic(t *testing.T) {
	src, err := os.ReadFile("testdata/calls.go")
	require.NoError(t, err)

	a, err := Compile(context.Background(), "calls.go", src)
	require.NoError(t, err)

	b, err := Compile(context.Background(), "calls.go", src)
	require.NoError(t, err)

	assert.Equal(t, a.Unit.String(), b.Unit.String())
}

// TestRun assembles, links and runs every testdata program and compares its output.
func TestRun(t *testing.T) {
	if runtime.GOOS != "linux" || runtime.GOARCH != "amd64" {
		t.Skipf("assembly targets linux/amd64, running on %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	gcc, err := exec.LookPath("gcc")
	if err != nil {
		t.Skip("gcc not found")
	}

	files, err := filepath.Glob("testdata/*.go")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		file := file
		name := strings.TrimSuffix(filepath.Base(file), ".go")

		t.Run(name, func(t *testing.T) {
			exp, err := os.ReadFile(strings.TrimSuffix(file, ".go") + ".out")
			require.NoError(t, err)

			res, err := CompileFile(context.Background(), file)
			require.NoError(t, err)
			assert.Empty(t, res.Warnings)

			dir := t.TempDir()
			asmFile := filepath.Join(dir, name+".s")
			bin := filepath.Join(dir, name)

			err = os.WriteFile(asmFile, res.Unit.Bytes(), 0o644)
			require.NoError(t, err)

			out, err := exec.Command(gcc, "-no-pie", "-o", bin, asmFile).CombinedOutput()
			require.NoError(t, err, "gcc: %s", out)

			out, err = exec.Command(bin).Output()
			require.NoError(t, err)

			assert.Equal(t, string(exp), string(out))
		})
	}
}
