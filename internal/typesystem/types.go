package typesystem

import (
	"strings"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	Apply(Subst) Type
}

// TCon is a concrete type constant ($int, $string, bare $array).
type TCon struct {
	Name string
}

func (t TCon) String() string { return "$" + t.Name }

func (t TCon) Apply(s Subst) Type { return t }

// TApp is a type application: $array[$int] is TApp{Array, [Int]}.
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	var out strings.Builder
	out.WriteString(t.Constructor.String())
	out.WriteString("[")
	for i, a := range t.Args {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(a.String())
	}
	out.WriteString("]")
	return out.String()
}

func (t TApp) Apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return TApp{Constructor: t.Constructor.Apply(s), Args: args}
}

// TVar is an unresolved generic parameter ($T, #T). Resolution binds it
// per call site; nothing survives between calls.
type TVar struct {
	Name string
}

func (t TVar) String() string { return "$" + t.Name }

func (t TVar) Apply(s Subst) Type {
	if replacement, ok := s[t.Name]; ok {
		return replacement
	}
	return t
}

// Subst maps generic parameter names to resolved types.
type Subst map[string]Type

// The built-in type constants.
var (
	Any      = TCon{Name: "any"}
	Number   = TCon{Name: "number"}
	Int      = TCon{Name: "int"}
	Float    = TCon{Name: "float"}
	String   = TCon{Name: "string"}
	Bool     = TCon{Name: "bool"}
	Array    = TCon{Name: "array"}
	Function = TCon{Name: "function"}
	Macro    = TCon{Name: "macro"}
	TypeT    = TCon{Name: "type"}
	Void     = TCon{Name: "void"}
	Ast      = TCon{Name: "ast"}
	Scope    = TCon{Name: "scope"}

	// Mixed is the element pseudo-kind of a list whose elements do not
	// share one kind. It unifies with nothing except $any.
	Mixed = TCon{Name: "mixed"}
)

// Builtin resolves a type name to its constant, or false for unknown
// names (which the caller treats as generic parameters or errors).
func Builtin(name string) (TCon, bool) {
	switch name {
	case "any":
		return Any, true
	case "number":
		return Number, true
	case "int":
		return Int, true
	case "float":
		return Float, true
	case "string":
		return String, true
	case "bool":
		return Bool, true
	case "array":
		return Array, true
	case "function":
		return Function, true
	case "macro":
		return Macro, true
	case "type":
		return TypeT, true
	case "void":
		return Void, true
	case "ast":
		return Ast, true
	case "scope":
		return Scope, true
	}
	return TCon{}, false
}

// Equal is exact structural equality, no lattice.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case TCon:
		b, ok := b.(TCon)
		return ok && a.Name == b.Name
	case TVar:
		b, ok := b.(TVar)
		return ok && a.Name == b.Name
	case TApp:
		bApp, ok := b.(TApp)
		if !ok || len(a.Args) != len(bApp.Args) || !Equal(a.Constructor, bApp.Constructor) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], bApp.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}
