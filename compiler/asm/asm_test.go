package asm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitLayout(t *testing.T) {
	u := NewUnit()

	assert.Equal(t, ".LC0", u.Literal("hello"))
	assert.Equal(t, ".LC1", u.Literal("%ld\n"))
	assert.Equal(t, ".LC0", u.Literal("hello"))
	assert.Equal(t, []string{"hello", "%ld\n"}, u.Pool())

	assert.Equal(t, ".L0", u.Label())
	assert.Equal(t, ".L1", u.Label())

	u.Ins(".globl", "main")
	u.Mark("main")
	u.Comment("frame %d", 16)
	u.Ins("movq", "$1", "%rax")
	u.Ins("ret")
	u.Blank()

	exp := "\t.section .rodata\n" +
		".LC0:\n\t.string \"hello\"\n" +
		".LC1:\n\t.string \"%ld\\012\"\n" +
		"\n" +
		"\t.text\n" +
		"\t.globl\tmain\n" +
		"main:\n" +
		"\t# frame 16\n" +
		"\tmovq\t$1, %rax\n" +
		"\tret\n" +
		"\n" +
		"\n\t.section .note.GNU-stack,\"\",@progbits\n"

	assert.Equal(t, exp, u.String())
	assert.Equal(t, []byte(exp), u.Bytes())

	var buf bytes.Buffer

	n, err := u.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(exp)), n)
	assert.Equal(t, exp, buf.String())
}

func TestUnitNoPool(t *testing.T) {
	u := NewUnit()
	u.Ins("nop")

	assert.Equal(t, "\t.text\n\tnop\n\n\t.section .note.GNU-stack,\"\",@progbits\n", u.String())
}

func TestAppendQuote(t *testing.T) {
	for _, tc := range []struct {
		in, exp string
	}{
		{in: "", exp: `""`},
		{in: "Hello, World!", exp: `"Hello, World!"`},
		{in: "a\"b\\c\n\x01é", exp: `"a\"b\\c\012\001\303\251"`},
		{in: "%s %ld\t", exp: `"%s %ld\011"`},
	} {
		assert.Equal(t, tc.exp, string(AppendQuote(nil, tc.in)), "in %q", tc.in)
	}

	assert.Equal(t, `x="y"`, string(AppendQuote([]byte("x="), "y")))
}
