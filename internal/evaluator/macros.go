package evaluator

import (
	"fmt"

	"github.com/funvibe/sigil/internal/ast"
	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
	"github.com/funvibe/sigil/internal/typesystem"
)

// evalMacroForm dispatches a @-headed form. The built-in macros are
// implemented natively; anything else is a user macro bound in scope.
func (e *Evaluator) evalMacroForm(form *ast.Form, head *ast.Identifier, scope *Scope) Object {
	switch head.Value {
	case "fn":
		return e.macroFn(form, scope)
	case "const":
		return e.macroConst(form, scope)
	case "macro":
		return e.macroMacro(form, scope)
	case "if":
		return e.macroIf(form, scope)
	case "ifelse":
		return e.macroIfelse(form, scope)
	case "assert":
		return e.macroAssert(form, scope)
	case "main":
		return newFault(diagnostics.KindSyntaxError, form.GetToken(), "@main is only allowed at top level")
	}

	obj, ok := scope.Get(macroKey(head.Value))
	if !ok {
		return newFault(diagnostics.KindUnboundIdentifier, head.Token, "macro not found: @%s", head.Value)
	}
	m, ok := obj.(*Macro)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, head.Token, "@%s is not a macro", head.Value)
	}
	return e.invokeMacro(m, form, scope)
}

// invokeMacro is the run-time expansion path: apply the macro to the
// unevaluated argument nodes, then evaluate an $ast result in place.
// The depth counter spans the evaluation of the replacement, so a
// macro that keeps producing macro forms hits the expansion limit.
func (e *Evaluator) invokeMacro(m *Macro, form *ast.Form, scope *Scope) Object {
	e.expandDepth++
	defer func() { e.expandDepth-- }()
	if e.expandDepth > e.Limits.ExpansionDepth {
		return newFault(diagnostics.KindMacroExpansionOverflow, form.GetToken(),
			"macro expansion depth limit of %d exceeded", e.Limits.ExpansionDepth)
	}

	result := e.applyUserMacro(m, form.Args, scope)
	if isFault(result) {
		return result
	}
	if a, ok := result.(*AstValue); ok {
		return e.Eval(a.Node, scope)
	}
	if m.ReturnsAst {
		return newFault(diagnostics.KindTypeMismatch, form.GetToken(),
			"@%s declares return type $ast, returned %s", m.Name, result.RuntimeType())
	}
	return result
}

// applyUserMacro evaluates the macro body in a fresh child of its
// defining scope, with the caller's scope handle and the quoted
// argument nodes bound to the two declared parameters.
func (e *Evaluator) applyUserMacro(m *Macro, argNodes []ast.Node, caller *Scope) Object {
	frame := NewEnclosedScope(m.Scope)
	frame.Declare(m.ScopeParam, &ScopeValue{Scope: caller})

	quoted := make([]Object, len(argNodes))
	for i, n := range argNodes {
		quoted[i] = &AstValue{Node: n}
	}
	frame.Declare(m.ArgsParam, &List{Elements: quoted})

	var result Object = VOID
	for _, node := range m.Body {
		result = e.Eval(node, frame)
		if isFault(result) {
			return result
		}
	}
	return result
}

// macroFn handles (@fn name[generics] [params] $ret body...). The
// function binds as a const in the enclosing scope and the form
// produces no value.
func (e *Evaluator) macroFn(form *ast.Form, scope *Scope) Object {
	if len(form.Args) < 2 {
		return newFault(diagnostics.KindArityMismatch, form.GetToken(),
			"@fn expects a name and a parameter list")
	}
	name, ok := form.Args[0].(*ast.Identifier)
	if !ok || name.Class != token.IdentPlain {
		return newFault(diagnostics.KindSyntaxError, form.Args[0].GetToken(),
			"@fn expects a plain function name")
	}

	generics, fault := e.genericParams(name, scope)
	if fault != nil {
		return fault
	}
	genericNames := make(map[string]bool, len(generics))
	for _, g := range generics {
		genericNames[g.Name] = true
	}

	paramsList, ok := form.Args[1].(*ast.ListLiteral)
	if !ok {
		return newFault(diagnostics.KindSyntaxError, form.Args[1].GetToken(),
			"@fn expects a bracketed parameter list")
	}

	var params []Param
	els := paramsList.Elements
	for i := 0; i < len(els); i++ {
		pname, ok := els[i].(*ast.Identifier)
		if !ok || pname.Class != token.IdentPlain {
			return newFault(diagnostics.KindSyntaxError, els[i].GetToken(),
				"@fn parameter name must be a plain identifier")
		}
		ptype := typesystem.Type(typesystem.Any)
		if i+1 < len(els) {
			if ref, isRef := els[i+1].(*ast.TypeRef); isRef {
				t, fault := e.typeFromRef(ref, genericNames, scope)
				if fault != nil {
					return fault
				}
				ptype = t
				i++
			}
		}
		params = append(params, Param{Name: pname.Value, Type: ptype})
	}

	bodyStart := 2
	var ret typesystem.Type
	if len(form.Args) > 2 {
		if ref, isRef := form.Args[2].(*ast.TypeRef); isRef {
			t, fault := e.typeFromRef(ref, genericNames, scope)
			if fault != nil {
				return fault
			}
			ret = t
			bodyStart = 3
		}
	}

	fn := &Function{
		Name:     name.Value,
		Generics: generics,
		Params:   params,
		Return:   ret,
		Body:     form.Args[bodyStart:],
		Scope:    scope,
	}
	scope.DeclareConst(name.Value, fn)
	return VOID
}

// genericParams reads the name's [...] suffix: each entry is a generic
// parameter, optionally followed by a built-in type as its constraint
// (sum[$T $number]).
func (e *Evaluator) genericParams(name *ast.Identifier, scope *Scope) ([]typesystem.GenericParam, *Fault) {
	refs := name.TypeArgs
	var out []typesystem.GenericParam
	for i := 0; i < len(refs); i++ {
		ref := refs[i]
		if _, isBuiltin := typesystem.Builtin(ref.Name); isBuiltin {
			return nil, newFault(diagnostics.KindSyntaxError, ref.Token,
				"expected a generic parameter name, got %s", ref)
		}
		g := typesystem.GenericParam{Name: ref.Name}
		if i+1 < len(refs) {
			if _, isBuiltin := typesystem.Builtin(refs[i+1].Name); isBuiltin {
				t, fault := e.typeFromRef(refs[i+1], nil, scope)
				if fault != nil {
					return nil, fault
				}
				g.Constraint = t
				i++
			}
		}
		out = append(out, g)
	}
	return out, nil
}

func (e *Evaluator) macroConst(form *ast.Form, scope *Scope) Object {
	name, fault := bindingName(form, "@const")
	if fault != nil {
		return fault
	}
	val := e.Eval(form.Args[1], scope)
	if isFault(val) {
		return val
	}
	scope.DeclareConst(name.Value, val)
	return val
}

// macroMacro handles (@macro name [scope-param, args-param] $ast body...).
func (e *Evaluator) macroMacro(form *ast.Form, scope *Scope) Object {
	if len(form.Args) < 2 {
		return newFault(diagnostics.KindArityMismatch, form.GetToken(),
			"@macro expects a name and a parameter list")
	}
	name, ok := form.Args[0].(*ast.Identifier)
	if !ok || name.Class != token.IdentPlain {
		return newFault(diagnostics.KindSyntaxError, form.Args[0].GetToken(),
			"@macro expects a plain macro name")
	}
	paramsList, ok := form.Args[1].(*ast.ListLiteral)
	if !ok || len(paramsList.Elements) != 2 {
		return newFault(diagnostics.KindSyntaxError, form.Args[1].GetToken(),
			"@macro expects a parameter list of a scope name and an args name")
	}
	scopeParam, ok := paramsList.Elements[0].(*ast.Identifier)
	if !ok || scopeParam.Class != token.IdentPlain {
		return newFault(diagnostics.KindSyntaxError, paramsList.Elements[0].GetToken(),
			"@macro scope parameter must be a plain identifier")
	}
	argsParam, ok := paramsList.Elements[1].(*ast.Identifier)
	if !ok || argsParam.Class != token.IdentPlain {
		return newFault(diagnostics.KindSyntaxError, paramsList.Elements[1].GetToken(),
			"@macro args parameter must be a plain identifier")
	}

	bodyStart := 2
	returnsAst := false
	if len(form.Args) > 2 {
		if ref, isRef := form.Args[2].(*ast.TypeRef); isRef {
			returnsAst = ref.Name == "ast"
			bodyStart = 3
		}
	}

	m := &Macro{
		Name:       name.Value,
		ScopeParam: scopeParam.Value,
		ArgsParam:  argsParam.Value,
		ReturnsAst: returnsAst,
		Body:       form.Args[bodyStart:],
		Scope:      scope,
	}
	scope.DeclareConst(macroKey(name.Value), m)
	return VOID
}

// macroIf evaluates the condition immediately; the body runs in a
// child scope only when it holds. The untaken path is never touched.
func (e *Evaluator) macroIf(form *ast.Form, scope *Scope) Object {
	if len(form.Args) < 2 {
		return newFault(diagnostics.KindArityMismatch, form.GetToken(),
			"@if expects a condition and a body")
	}
	cond := e.Eval(form.Args[0], scope)
	if isFault(cond) {
		return cond
	}
	b, ok := cond.(*Boolean)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, form.Args[0].GetToken(),
			"@if condition must be $bool, got %s", cond.RuntimeType())
	}
	if !b.Value {
		return VOID
	}

	branch := NewEnclosedScope(scope)
	var result Object = VOID
	for _, node := range form.Args[1:] {
		result = e.Eval(node, branch)
		if isFault(result) {
			return result
		}
	}
	return result
}

func (e *Evaluator) macroIfelse(form *ast.Form, scope *Scope) Object {
	if len(form.Args) != 3 {
		return newFault(diagnostics.KindArityMismatch, form.GetToken(),
			"@ifelse expects a condition and two branches, got %d arguments", len(form.Args))
	}
	cond := e.Eval(form.Args[0], scope)
	if isFault(cond) {
		return cond
	}
	b, ok := cond.(*Boolean)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, form.Args[0].GetToken(),
			"@ifelse condition must be $bool, got %s", cond.RuntimeType())
	}

	branch := form.Args[2]
	if b.Value {
		branch = form.Args[1]
	}
	return e.Eval(branch, NewEnclosedScope(scope))
}

// macroAssert reports pass/fail per operand and never propagates a
// fault: a faulting operand counts as a failure.
func (e *Evaluator) macroAssert(form *ast.Form, scope *Scope) Object {
	for _, operand := range form.Args {
		v := e.Eval(operand, scope)
		if b, ok := v.(*Boolean); ok && b.Value {
			fmt.Fprintf(e.Out, "assert passed: %s\n", operand.String())
		} else {
			fmt.Fprintf(e.Out, "assert failed: %s\n", operand.String())
		}
	}
	return VOID
}
