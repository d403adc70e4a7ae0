package tp

import "strings"

type (
	Type interface {
		Size() int
		String() string
	}

	Basic int

	// Struct is a named struct type. Types are compared by identity.
	Struct struct {
		Name   string
		Fields []StructField
	}

	StructField struct {
		Name   string
		Offset int
		Type   Type
	}

	Func struct {
		In  []Type
		Out Type // nil if none
	}
)

const (
	_ Basic = iota
	Int
	Bool
	String
)

// WordSize is the size of every scalar value.
const WordSize = 8

var basicNames = []string{
	Int:    "int",
	Bool:   "bool",
	String: "string",
}

func (x Basic) Size() int { return WordSize }

func (x Basic) String() string {
	if x > 0 && int(x) < len(basicNames) {
		return basicNames[x]
	}

	return "invalid"
}

// AddField appends a field placing it after the previous ones.
func (x *Struct) AddField(name string, t Type) {
	x.Fields = append(x.Fields, StructField{
		Name:   name,
		Offset: x.Size(),
		Type:   t,
	})
}

func (x *Struct) Field(name string) (StructField, bool) {
	for _, f := range x.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return StructField{}, false
}

func (x *Struct) Size() (s int) {
	for _, f := range x.Fields {
		s += f.Type.Size()
	}

	return s
}

func (x *Struct) String() string { return x.Name }

func (x *Func) Size() int { return WordSize }

func (x *Func) String() string {
	var b strings.Builder

	b.WriteString("func(")

	for i, t := range x.In {
		if i != 0 {
			b.WriteString(", ")
		}

		b.WriteString(t.String())
	}

	b.WriteString(")")

	if x.Out != nil {
		b.WriteString(" ")
		b.WriteString(x.Out.String())
	}

	return b.String()
}

// Comparable reports whether == and != apply to values of t.
func Comparable(t Type) bool {
	return t == Int || t == Bool
}

// Words returns the number of 8-byte words t occupies.
func Words(t Type) int {
	return (t.Size() + WordSize - 1) / WordSize
}
