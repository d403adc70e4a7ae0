package ast

import "github.com/gosubset/x86c/compiler/diag"

type (
	Node interface {
		Position() diag.Pos
	}

	Expr interface {
		Node
		expr()
	}

	Stmt interface {
		Node
		stmt()
	}

	Decl interface {
		Node
		decl()
	}

	Base struct {
		Pos diag.Pos
	}

	File struct {
		Base `tlog:",embed"`

		Name    string
		Package string
		Imports []*Import
		Decls   []Decl
	}

	Import struct {
		Base `tlog:",embed"`

		Path string
	}

	FuncDecl struct {
		Base `tlog:",embed"`

		Name   string
		Params []*Param
		Result *TypeName // nil if the function returns nothing
		Body   *Block
	}

	Param struct {
		Base `tlog:",embed"`

		Name string
		Type *TypeName
	}

	StructDecl struct {
		Base `tlog:",embed"`

		Name   string
		Fields []*Field
	}

	Field struct {
		Base `tlog:",embed"`

		Name string
		Type *TypeName
	}

	TypeName struct {
		Base `tlog:",embed"`

		Name string
	}

	Block struct {
		Base `tlog:",embed"`

		Stmts []Stmt
		End   diag.Pos // closing brace
	}

	// VarDecl is both `var x T = v` and `x := v`.
	VarDecl struct {
		Base `tlog:",embed"`

		Name  *Ident
		Type  *TypeName // nil if inferred
		Value Expr      // nil if zero value
		Short bool
	}

	// AssignStmt is `x = v` or `x op= v`. Op is "=" or the compound operator.
	AssignStmt struct {
		Base `tlog:",embed"`

		Op  string
		Lhs Expr
		Rhs Expr
	}

	IncDecStmt struct {
		Base `tlog:",embed"`

		X   Expr
		Inc bool
	}

	IfStmt struct {
		Base `tlog:",embed"`

		Init Stmt
		Cond Expr
		Then *Block
		Else Stmt // nil, *Block or *IfStmt
	}

	ForStmt struct {
		Base `tlog:",embed"`

		Init Stmt
		Cond Expr // nil means forever
		Post Stmt
		Body *Block
	}

	ReturnStmt struct {
		Base `tlog:",embed"`

		Value Expr
	}

	// BranchStmt is break or continue.
	BranchStmt struct {
		Base `tlog:",embed"`

		Tok string
	}

	ExprStmt struct {
		Base `tlog:",embed"`

		X Expr
	}

	// BinaryExpr Pos is the operator position.
	BinaryExpr struct {
		Base `tlog:",embed"`

		Op    string
		Left  Expr
		Right Expr
	}

	UnaryExpr struct {
		Base `tlog:",embed"`

		Op string
		X  Expr
	}

	ParenExpr struct {
		Base `tlog:",embed"`

		X Expr
	}

	Ident struct {
		Base `tlog:",embed"`

		Name string
	}

	IntLit struct {
		Base `tlog:",embed"`

		Text  string
		Value int64
	}

	StringLit struct {
		Base `tlog:",embed"`

		Text  string
		Value string
	}

	BoolLit struct {
		Base `tlog:",embed"`

		Value bool
	}

	CallExpr struct {
		Base `tlog:",embed"`

		Fun  Expr
		Args []Expr
	}

	SelectorExpr struct {
		Base `tlog:",embed"`

		X   Expr
		Sel *Ident
	}

	StructLit struct {
		Base `tlog:",embed"`

		Type   *TypeName
		Fields []*KeyValue
	}

	KeyValue struct {
		Base `tlog:",embed"`

		Key   *Ident
		Value Expr
	}
)

func (b Base) Position() diag.Pos { return b.Pos }

func (*FuncDecl) decl()   {}
func (*StructDecl) decl() {}

func (*Block) stmt()      {}
func (*VarDecl) stmt()    {}
func (*AssignStmt) stmt() {}
func (*IncDecStmt) stmt() {}
func (*IfStmt) stmt()     {}
func (*ForStmt) stmt()    {}
func (*ReturnStmt) stmt() {}
func (*BranchStmt) stmt() {}
func (*ExprStmt) stmt()   {}

func (*BinaryExpr) expr()   {}
func (*UnaryExpr) expr()    {}
func (*ParenExpr) expr()    {}
func (*Ident) expr()        {}
func (*IntLit) expr()       {}
func (*StringLit) expr()    {}
func (*BoolLit) expr()      {}
func (*CallExpr) expr()     {}
func (*SelectorExpr) expr() {}
func (*StructLit) expr()    {}

// Unparen strips any parentheses around x.
func Unparen(x Expr) Expr {
	for {
		p, ok := x.(*ParenExpr)
		if !ok {
			return x
		}

		x = p.X
	}
}
