package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/sigil/internal/token"
)

// Node is the base interface for all AST nodes. Nodes are never mutated
// after parsing; macro expansion builds new nodes and re-links.
type Node interface {
	GetToken() token.Token
	String() string
}

// Program is the root node of every AST the parser produces. Its Nodes
// are the top-level forms in source order.
type Program struct {
	File  string
	Nodes []Node
}

func (p *Program) GetToken() token.Token {
	if len(p.Nodes) > 0 {
		return p.Nodes[0].GetToken()
	}
	return token.Token{}
}

func (p *Program) String() string {
	parts := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, "\n")
}

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return strconv.FormatInt(il.Value, 10) }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return strconv.FormatFloat(fl.Value, 'g', -1, 64) }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return strconv.Quote(sl.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }
func (bl *BooleanLiteral) String() string {
	if bl.Value {
		return "true"
	}
	return "false"
}

// VoidLiteral has no source spelling; it appears when expansion splices
// a void macro result into the tree.
type VoidLiteral struct {
	Token token.Token
}

func (vl *VoidLiteral) GetToken() token.Token { return vl.Token }
func (vl *VoidLiteral) String() string        { return "void" }

// Identifier covers plain names, @macro heads, $type references and
// #generic parameters, distinguished by Class. TypeArgs carries an
// explicit instantiation suffix (sum[$int]).
type Identifier struct {
	Token    token.Token
	Value    string
	Class    token.IdentClass
	TypeArgs []*TypeRef
}

func (id *Identifier) GetToken() token.Token { return id.Token }

func (id *Identifier) String() string {
	var out strings.Builder
	out.WriteString(id.Class.Sigil())
	out.WriteString(id.Value)
	if len(id.TypeArgs) > 0 {
		out.WriteString("[")
		for i, a := range id.TypeArgs {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(a.String())
		}
		out.WriteString("]")
	}
	return out.String()
}

// TypeRef is a type expression: $int, $array[$T]. Args are the generic
// arguments from the instantiation suffix.
type TypeRef struct {
	Token token.Token
	Name  string
	Args  []*TypeRef
}

func (tr *TypeRef) GetToken() token.Token { return tr.Token }

func (tr *TypeRef) String() string {
	var out strings.Builder
	out.WriteString(tr.Token.Class.Sigil())
	out.WriteString(tr.Name)
	if len(tr.Args) > 0 {
		out.WriteString("[")
		for i, a := range tr.Args {
			if i > 0 {
				out.WriteString(", ")
			}
			out.WriteString(a.String())
		}
		out.WriteString("]")
	}
	return out.String()
}

// Form is a prefix-notation application: (head arg1 arg2 ...).
type Form struct {
	Token token.Token // the '(' token
	Head  Node
	Args  []Node
}

func (f *Form) GetToken() token.Token { return f.Token }

func (f *Form) String() string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(f.Head.String())
	for _, a := range f.Args {
		out.WriteString(" ")
		out.WriteString(a.String())
	}
	out.WriteString(")")
	return out.String()
}

// ListLiteral is a bracketed list: [1, 2, 3].
type ListLiteral struct {
	Token    token.Token // the '[' token
	Elements []Node
}

func (ll *ListLiteral) GetToken() token.Token { return ll.Token }

func (ll *ListLiteral) String() string {
	parts := make([]string, len(ll.Elements))
	for i, e := range ll.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
