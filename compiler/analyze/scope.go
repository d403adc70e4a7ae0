package analyze

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"

	"github.com/gosubset/x86c/compiler/diag"
	"github.com/gosubset/x86c/compiler/tp"
)

type (
	ScopeID  int
	SymbolID int

	SymbolKind int

	// Scope is one frame of the scope arena.
	// Scopes refer to their parent by index so the arena owns all of them.
	Scope struct {
		Parent ScopeID // NoScope for the universe
		Depth  int

		names map[string]SymbolID
	}

	Symbol struct {
		ID    SymbolID
		Name  string
		Kind  SymbolKind
		Type  tp.Type
		Pos   diag.Pos
		Scope ScopeID
		Depth int

		Offset int    // Var and Param: frame offset from %rbp, negative
		Label  string // Func: assembly symbol
	}
)

const (
	_ SymbolKind = iota
	Var
	Param
	Func
	Type
	Builtin
	Package
)

const (
	NoScope ScopeID = -1

	Universe ScopeID = 0
	FileScope ScopeID = 1
)

var symbolKindNames = []string{
	Var:     "var",
	Param:   "param",
	Func:    "func",
	Type:    "type",
	Builtin: "builtin",
	Package: "package",
}

func (a *analyzer) newScope(parent ScopeID) ScopeID {
	id := ScopeID(len(a.info.Scopes))

	depth := 0
	if parent != NoScope {
		depth = a.info.Scopes[parent].Depth + 1
	}

	a.info.Scopes = append(a.info.Scopes, Scope{
		Parent: parent,
		Depth:  depth,
		names:  map[string]SymbolID{},
	})

	return id
}

// declare adds sym to scope s. A name may be declared only once per scope.
func (a *analyzer) declare(s ScopeID, sym *Symbol) (*Symbol, error) {
	sc := &a.info.Scopes[s]

	if prev, ok := sc.names[sym.Name]; ok {
		p := a.info.Symbols[prev]

		return nil, diag.Errorf(diag.Redeclaration, sym.Pos, "%s redeclared in this block (previous declaration at %v)", sym.Name, p.Pos)
	}

	sym.ID = SymbolID(len(a.info.Symbols))
	sym.Scope = s
	sym.Depth = sc.Depth

	a.info.Symbols = append(a.info.Symbols, sym)
	sc.names[sym.Name] = sym.ID

	if a.tr.If("scope") {
		a.tr.Printw("declare", "name", sym.Name, "kind", sym.Kind, "type", sym.Type, "scope", s, "depth", sym.Depth, "off", sym.Offset)
	}

	return sym, nil
}

// lookup finds the nearest declaration of name visible from scope s.
func (a *analyzer) lookup(s ScopeID, name string) *Symbol {
	return a.info.Lookup(s, name)
}

// Lookup resolves name in scope s after the analysis finished.
func (info *Info) Lookup(s ScopeID, name string) *Symbol {
	for s != NoScope {
		sc := &info.Scopes[s]

		if id, ok := sc.names[name]; ok {
			return info.Symbols[id]
		}

		s = sc.Parent
	}

	return nil
}

func (k SymbolKind) String() string {
	if k > 0 && int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}

	return "SymbolKind(" + strconv.Itoa(int(k)) + ")"
}

func (k SymbolKind) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, k.String())
}
