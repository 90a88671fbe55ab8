package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/sigil/internal/ast"
	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
	"github.com/funvibe/sigil/internal/typesystem"
)

type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	BOOLEAN_OBJ  = "BOOLEAN"
	STRING_OBJ   = "STRING"
	LIST_OBJ     = "LIST"
	VOID_OBJ     = "VOID"
	TYPE_OBJ     = "TYPE"
	AST_OBJ      = "AST"
	SCOPE_OBJ    = "SCOPE"
	FUNCTION_OBJ = "FUNCTION"
	MACRO_OBJ    = "MACRO"
	BUILTIN_OBJ  = "BUILTIN"
	FAULT_OBJ    = "FAULT"
)

// Object is the interface for all run-time values. RuntimeType reports
// the value's type-system descriptor, used by generic resolution and
// the type natives.
type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() typesystem.Type
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType             { return INTEGER_OBJ }
func (i *Integer) Inspect() string              { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) RuntimeType() typesystem.Type { return typesystem.Int }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType             { return FLOAT_OBJ }
func (f *Float) Inspect() string              { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (f *Float) RuntimeType() typesystem.Type { return typesystem.Float }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *Boolean) RuntimeType() typesystem.Type { return typesystem.Bool }

type String struct {
	Value string
}

func (s *String) Type() ObjectType             { return STRING_OBJ }
func (s *String) Inspect() string              { return s.Value }
func (s *String) RuntimeType() typesystem.Type { return typesystem.String }

// List is the array value. Lists are shared by reference: push mutates
// in place and every binding holding the list observes it.
type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }

func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, el := range l.Elements {
		parts[i] = formatted(el)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RuntimeType is $array for an empty list, $array[k] for a uniform list
// and $array[$mixed] otherwise.
func (l *List) RuntimeType() typesystem.Type {
	if len(l.Elements) == 0 {
		return typesystem.Array
	}
	elem := l.Elements[0].RuntimeType()
	for _, el := range l.Elements[1:] {
		if !typesystem.Equal(elem, el.RuntimeType()) {
			return typesystem.TApp{Constructor: typesystem.Array, Args: []typesystem.Type{typesystem.Mixed}}
		}
	}
	return typesystem.TApp{Constructor: typesystem.Array, Args: []typesystem.Type{elem}}
}

// formatted renders a value the way it appears inside a printed list:
// strings keep their quotes, everything else prints as usual.
func formatted(obj Object) string {
	if s, ok := obj.(*String); ok {
		return strconv.Quote(s.Value)
	}
	return obj.Inspect()
}

type Void struct{}

func (v *Void) Type() ObjectType             { return VOID_OBJ }
func (v *Void) Inspect() string              { return "void" }
func (v *Void) RuntimeType() typesystem.Type { return typesystem.Void }

// TypeValue is a first-class type descriptor, the result of evaluating
// a $name reference.
type TypeValue struct {
	T typesystem.Type
}

func (t *TypeValue) Type() ObjectType             { return TYPE_OBJ }
func (t *TypeValue) Inspect() string              { return t.T.String() }
func (t *TypeValue) RuntimeType() typesystem.Type { return typesystem.TypeT }

// AstValue is a quoted node: what macros receive as arguments and what
// an $ast-returning macro produces.
type AstValue struct {
	Node ast.Node
}

func (a *AstValue) Type() ObjectType             { return AST_OBJ }
func (a *AstValue) Inspect() string              { return a.Node.String() }
func (a *AstValue) RuntimeType() typesystem.Type { return typesystem.Ast }

// ScopeValue is the explicit scope handle passed to macros.
type ScopeValue struct {
	Scope *Scope
}

func (s *ScopeValue) Type() ObjectType             { return SCOPE_OBJ }
func (s *ScopeValue) Inspect() string              { return "scope" }
func (s *ScopeValue) RuntimeType() typesystem.Type { return typesystem.Scope }

type Param struct {
	Name string
	Type typesystem.Type
}

// Function is a user-defined function: typed params, generic params
// from the name's [...] suffix, optional declared return type and the
// captured definition scope (lexical closure).
type Function struct {
	Name     string
	Generics []typesystem.GenericParam
	Params   []Param
	Return   typesystem.Type // nil means unchecked
	Body     []ast.Node
	Scope    *Scope
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }

func (f *Function) Inspect() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + " " + p.Type.String()
	}
	return fmt.Sprintf("fn %s [%s]", f.Name, strings.Join(params, ", "))
}

func (f *Function) RuntimeType() typesystem.Type { return typesystem.Function }

// Macro is a user-defined macro. It receives the caller's scope as a
// value and the unevaluated argument nodes; ReturnsAst marks the $ast
// return declaration, which makes the result splice as a node rather
// than as a literal value.
type Macro struct {
	Name       string
	ScopeParam string
	ArgsParam  string
	ReturnsAst bool
	Body       []ast.Node
	Scope      *Scope
}

func (m *Macro) Type() ObjectType { return MACRO_OBJ }
func (m *Macro) Inspect() string {
	return fmt.Sprintf("macro @%s [%s, %s]", m.Name, m.ScopeParam, m.ArgsParam)
}
func (m *Macro) RuntimeType() typesystem.Type { return typesystem.Macro }

type BuiltinFn func(e *Evaluator, tok token.Token, args ...Object) Object

// Builtin is a native function from the fixed table.
type Builtin struct {
	Name string
	Fn   BuiltinFn
}

func (b *Builtin) Type() ObjectType             { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string              { return "builtin " + b.Name }
func (b *Builtin) RuntimeType() typesystem.Type { return typesystem.Function }

// Fault is an error value threaded through evaluation. Faults abort the
// enclosing top-level statement; they are never used for ordinary
// control flow.
type Fault struct {
	Kind    string
	Message string
	Line    int
	Column  int
}

func (f *Fault) Type() ObjectType             { return FAULT_OBJ }
func (f *Fault) Inspect() string              { return f.Kind + ": " + f.Message }
func (f *Fault) RuntimeType() typesystem.Type { return typesystem.Any }

// Diagnostic converts a fault into the shared error shape the pipeline
// and CLI report.
func (f *Fault) Diagnostic(file string) *diagnostics.Error {
	return &diagnostics.Error{
		Kind:    f.Kind,
		Message: f.Message,
		File:    file,
		Line:    f.Line,
		Column:  f.Column,
	}
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	VOID  = &Void{}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

func newFault(kind string, tok token.Token, format string, args ...interface{}) *Fault {
	return &Fault{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

func isFault(obj Object) bool {
	if obj != nil {
		return obj.Type() == FAULT_OBJ
	}
	return false
}
