package evaluator

import (
	"github.com/funvibe/sigil/internal/ast"
	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
)

// Expand is the static macro pass over the @main body. It rewrites
// user-macro forms depth-first, innermost first, to a fixed point.
//
// Forms it cannot finish statically stay in the tree for the
// evaluator: the built-in conditionals (the untaken branch must never
// be expanded or evaluated), the binding macros (they must bind into
// the run-time scope), and any user macro whose application needs
// bindings that only exist at run time. Expansion of a macro-free tree
// is a no-op.
func (e *Evaluator) Expand(node ast.Node, scope *Scope) (ast.Node, *Fault) {
	return e.expandNode(node, scope, 0)
}

func (e *Evaluator) expandNode(node ast.Node, scope *Scope, depth int) (ast.Node, *Fault) {
	if depth > e.Limits.ExpansionDepth {
		return nil, newFault(diagnostics.KindMacroExpansionOverflow, node.GetToken(),
			"macro expansion depth limit of %d exceeded", e.Limits.ExpansionDepth)
	}

	switch node := node.(type) {
	case *ast.Form:
		return e.expandForm(node, scope, depth)
	case *ast.ListLiteral:
		elements, fault := e.expandAll(node.Elements, scope, depth)
		if fault != nil {
			return nil, fault
		}
		return &ast.ListLiteral{Token: node.Token, Elements: elements}, nil
	default:
		return node, nil
	}
}

func (e *Evaluator) expandAll(nodes []ast.Node, scope *Scope, depth int) ([]ast.Node, *Fault) {
	out := make([]ast.Node, len(nodes))
	for i, n := range nodes {
		expanded, fault := e.expandNode(n, scope, depth)
		if fault != nil {
			return nil, fault
		}
		out[i] = expanded
	}
	return out, nil
}

func (e *Evaluator) expandForm(form *ast.Form, scope *Scope, depth int) (ast.Node, *Fault) {
	head, ok := form.Head.(*ast.Identifier)
	if !ok {
		return form, nil
	}

	if head.Class != token.IdentMacro {
		args, fault := e.expandAll(form.Args, scope, depth)
		if fault != nil {
			return nil, fault
		}
		return &ast.Form{Token: form.Token, Head: form.Head, Args: args}, nil
	}

	switch head.Value {
	case "if", "ifelse", "assert", "fn", "const", "macro", "main":
		return form, nil
	}

	obj, ok := scope.Get(macroKey(head.Value))
	if !ok {
		// possibly bound at run time; the evaluator reports the
		// fault if it never is
		return form, nil
	}
	m, ok := obj.(*Macro)
	if !ok {
		return nil, newFault(diagnostics.KindTypeMismatch, head.Token, "@%s is not a macro", head.Value)
	}

	// innermost first: nested macro invocations resolve before the
	// enclosing macro sees its arguments
	args, fault := e.expandAll(form.Args, scope, depth)
	if fault != nil {
		return nil, fault
	}

	result := e.applyUserMacro(m, args, scope)
	if f, ok := result.(*Fault); ok {
		if f.Kind == diagnostics.KindUnboundIdentifier {
			// the macro needs run-time bindings; leave the form,
			// with expanded arguments, for the evaluator
			return &ast.Form{Token: form.Token, Head: form.Head, Args: args}, nil
		}
		return nil, f
	}

	if a, ok := result.(*AstValue); ok {
		// the replacement may itself contain macro forms
		return e.expandNode(a.Node, scope, depth+1)
	}
	if m.ReturnsAst {
		return nil, newFault(diagnostics.KindTypeMismatch, form.GetToken(),
			"@%s declares return type $ast, returned %s", m.Name, result.RuntimeType())
	}
	if lit, ok := spliceLiteral(result, form.Token); ok {
		return lit, nil
	}
	// functions, macros and scopes have no literal spelling; the
	// evaluator re-runs the macro with the same result
	return &ast.Form{Token: form.Token, Head: form.Head, Args: args}, nil
}

// spliceLiteral converts a concrete macro result into a literal node,
// making value-returning macros behave as compile-time constants.
func spliceLiteral(obj Object, tok token.Token) (ast.Node, bool) {
	switch obj := obj.(type) {
	case *Integer:
		return &ast.IntegerLiteral{Token: tok, Value: obj.Value}, true
	case *Float:
		return &ast.FloatLiteral{Token: tok, Value: obj.Value}, true
	case *String:
		return &ast.StringLiteral{Token: tok, Value: obj.Value}, true
	case *Boolean:
		return &ast.BooleanLiteral{Token: tok, Value: obj.Value}, true
	case *Void:
		return &ast.VoidLiteral{Token: tok}, true
	case *List:
		elements := make([]ast.Node, len(obj.Elements))
		for i, el := range obj.Elements {
			node, ok := spliceLiteral(el, tok)
			if !ok {
				return nil, false
			}
			elements[i] = node
		}
		return &ast.ListLiteral{Token: tok, Elements: elements}, true
	}
	return nil, false
}
