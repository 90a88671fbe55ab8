package evaluator

import (
	"io"
	"os"

	"github.com/funvibe/sigil/internal/ast"
	"github.com/funvibe/sigil/internal/config"
	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
	"github.com/funvibe/sigil/internal/typesystem"
)

// Evaluator runs a program in two phases: a macro pass over the @main
// body and a tree walk over the expanded result. Both phases are
// ordinary recursive calls on one control stack, bounded by the
// configured depth limits.
type Evaluator struct {
	Out    io.Writer
	Limits config.Limits

	global      *Scope
	evalDepth   int
	expandDepth int
}

func New(out io.Writer, limits config.Limits) *Evaluator {
	if out == nil {
		out = os.Stdout
	}
	if limits.EvalDepth <= 0 {
		limits.EvalDepth = config.DefaultEvalDepth
	}
	if limits.ExpansionDepth <= 0 {
		limits.ExpansionDepth = config.DefaultExpansionDepth
	}
	e := &Evaluator{Out: out, Limits: limits, global: NewScope()}
	registerBuiltins(e.global)
	return e
}

// GlobalScope exposes the root scope, mainly for tests.
func (e *Evaluator) GlobalScope() *Scope { return e.global }

// RunProgram drives the lifecycle: register every top-level
// declaration into the root scope, expand the @main body, then
// evaluate it. The first fault aborts the run.
func (e *Evaluator) RunProgram(program *ast.Program) Object {
	var mainForm *ast.Form

	// registration pass
	for _, node := range program.Nodes {
		form, ok := node.(*ast.Form)
		if !ok {
			return newFault(diagnostics.KindSyntaxError, node.GetToken(), "expected a top-level form")
		}
		head, ok := form.Head.(*ast.Identifier)
		if !ok || head.Class != token.IdentMacro {
			return newFault(diagnostics.KindSyntaxError, form.GetToken(),
				"only @fn, @const, @macro and @main are allowed at top level")
		}
		switch head.Value {
		case "fn", "const", "macro":
			if result := e.evalMacroForm(form, head, e.global); isFault(result) {
				return result
			}
		case "main":
			if mainForm != nil {
				return newFault(diagnostics.KindSyntaxError, form.GetToken(), "duplicate @main")
			}
			mainForm = form
		default:
			return newFault(diagnostics.KindSyntaxError, head.GetToken(),
				"@%s is not allowed at top level", head.Value)
		}
	}
	if mainForm == nil {
		return newFault(diagnostics.KindSyntaxError, program.GetToken(), "missing @main")
	}

	// macro pass over the @main body
	body := make([]ast.Node, len(mainForm.Args))
	for i, node := range mainForm.Args {
		expanded, fault := e.Expand(node, e.global)
		if fault != nil {
			return fault
		}
		body[i] = expanded
	}

	// evaluation
	scope := NewEnclosedScope(e.global)
	var result Object = VOID
	for _, node := range body {
		result = e.Eval(node, scope)
		if isFault(result) {
			return result
		}
	}
	return result
}

func (e *Evaluator) Eval(node ast.Node, scope *Scope) Object {
	e.evalDepth++
	defer func() { e.evalDepth-- }()
	if e.evalDepth > e.Limits.EvalDepth {
		return newFault(diagnostics.KindRecursionLimit, node.GetToken(),
			"evaluation depth limit of %d exceeded", e.Limits.EvalDepth)
	}

	switch node := node.(type) {
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)
	case *ast.VoidLiteral:
		return VOID
	case *ast.Identifier:
		return e.evalIdentifier(node, scope)
	case *ast.TypeRef:
		return e.evalTypeRef(node, scope)
	case *ast.ListLiteral:
		return e.evalList(node, scope)
	case *ast.Form:
		return e.evalForm(node, scope)
	}
	return newFault(diagnostics.KindSyntaxError, node.GetToken(), "cannot evaluate %T", node)
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, scope *Scope) Object {
	if node.Class == token.IdentMacro {
		if obj, ok := scope.Get(macroKey(node.Value)); ok {
			return obj
		}
		return newFault(diagnostics.KindUnboundIdentifier, node.Token, "macro not found: @%s", node.Value)
	}
	if obj, ok := scope.Get(node.Value); ok {
		return obj
	}
	return newFault(diagnostics.KindUnboundIdentifier, node.Token, "identifier not found: %s", node.Value)
}

func (e *Evaluator) evalTypeRef(ref *ast.TypeRef, scope *Scope) Object {
	t, fault := e.typeFromRef(ref, nil, scope)
	if fault != nil {
		return fault
	}
	return &TypeValue{T: t}
}

// typeFromRef resolves a type expression. Names in generics become
// unbound TVars (declaration position); otherwise built-in names win
// and unknown names are looked up as generic bindings of the current
// call frame.
func (e *Evaluator) typeFromRef(ref *ast.TypeRef, generics map[string]bool, scope *Scope) (typesystem.Type, *Fault) {
	if generics[ref.Name] {
		if len(ref.Args) > 0 {
			return nil, newFault(diagnostics.KindSyntaxError, ref.Token,
				"generic parameter $%s cannot take type arguments", ref.Name)
		}
		return typesystem.TVar{Name: ref.Name}, nil
	}

	if con, ok := typesystem.Builtin(ref.Name); ok {
		if len(ref.Args) == 0 {
			return con, nil
		}
		if con != typesystem.Array {
			return nil, newFault(diagnostics.KindSyntaxError, ref.Token,
				"$%s does not take type arguments", ref.Name)
		}
		if len(ref.Args) != 1 {
			return nil, newFault(diagnostics.KindSyntaxError, ref.Token,
				"$array takes exactly one type argument, got %d", len(ref.Args))
		}
		elem, fault := e.typeFromRef(ref.Args[0], generics, scope)
		if fault != nil {
			return nil, fault
		}
		return typesystem.TApp{Constructor: con, Args: []typesystem.Type{elem}}, nil
	}

	if scope != nil {
		if obj, ok := scope.Get(typeKey(ref.Name)); ok {
			if tv, ok := obj.(*TypeValue); ok {
				return tv.T, nil
			}
		}
	}
	return nil, newFault(diagnostics.KindUnboundIdentifier, ref.Token, "type not found: $%s", ref.Name)
}

func (e *Evaluator) evalList(node *ast.ListLiteral, scope *Scope) Object {
	elements := make([]Object, 0, len(node.Elements))
	for _, el := range node.Elements {
		v := e.Eval(el, scope)
		if isFault(v) {
			return v
		}
		elements = append(elements, v)
	}
	return &List{Elements: elements}
}

func (e *Evaluator) evalForm(form *ast.Form, scope *Scope) Object {
	head, ok := form.Head.(*ast.Identifier)
	if !ok {
		return newFault(diagnostics.KindSyntaxError, form.GetToken(), "form head must be an identifier")
	}

	if head.Class == token.IdentMacro {
		return e.evalMacroForm(form, head, scope)
	}

	switch head.Value {
	case "let":
		return e.evalLet(form, scope)
	case "set":
		return e.evalSet(form, scope)
	case "while":
		return e.evalWhile(form, scope)
	}

	callee := e.evalIdentifier(head, scope)
	if isFault(callee) {
		return callee
	}

	args := make([]Object, 0, len(form.Args))
	for _, argNode := range form.Args {
		v := e.Eval(argNode, scope)
		if isFault(v) {
			return v
		}
		args = append(args, v)
	}

	return e.applyCall(callee, head, args, form, scope)
}

func (e *Evaluator) evalLet(form *ast.Form, scope *Scope) Object {
	name, fault := bindingName(form, "let")
	if fault != nil {
		return fault
	}
	val := e.Eval(form.Args[1], scope)
	if isFault(val) {
		return val
	}
	scope.Declare(name.Value, val)
	return val
}

func (e *Evaluator) evalSet(form *ast.Form, scope *Scope) Object {
	name, fault := bindingName(form, "set")
	if fault != nil {
		return fault
	}
	val := e.Eval(form.Args[1], scope)
	if isFault(val) {
		return val
	}
	switch scope.Assign(name.Value, val) {
	case nil:
		return val
	case errConstAssign:
		return newFault(diagnostics.KindTypeMismatch, name.Token, "cannot set constant %s", name.Value)
	default:
		return newFault(diagnostics.KindUnboundIdentifier, name.Token, "identifier not found: %s", name.Value)
	}
}

func bindingName(form *ast.Form, formName string) (*ast.Identifier, *Fault) {
	if len(form.Args) != 2 {
		return nil, newFault(diagnostics.KindArityMismatch, form.GetToken(),
			"%s expects a name and a value, got %d arguments", formName, len(form.Args))
	}
	name, ok := form.Args[0].(*ast.Identifier)
	if !ok || name.Class != token.IdentPlain {
		return nil, newFault(diagnostics.KindSyntaxError, form.Args[0].GetToken(),
			"%s expects a plain identifier to bind", formName)
	}
	return name, nil
}

// evalWhile runs condition and body in the current scope. No child
// scope per iteration: mutations via set stay visible to the next
// condition check.
func (e *Evaluator) evalWhile(form *ast.Form, scope *Scope) Object {
	if len(form.Args) < 1 {
		return newFault(diagnostics.KindArityMismatch, form.GetToken(), "while expects a condition")
	}
	for {
		cond := e.Eval(form.Args[0], scope)
		if isFault(cond) {
			return cond
		}
		b, ok := cond.(*Boolean)
		if !ok {
			return newFault(diagnostics.KindTypeMismatch, form.Args[0].GetToken(),
				"while condition must be $bool, got %s", cond.RuntimeType())
		}
		if !b.Value {
			return VOID
		}
		for _, node := range form.Args[1:] {
			if v := e.Eval(node, scope); isFault(v) {
				return v
			}
		}
	}
}

func (e *Evaluator) applyCall(callee Object, head *ast.Identifier, args []Object, form *ast.Form, scope *Scope) Object {
	switch fn := callee.(type) {
	case *Builtin:
		return fn.Fn(e, form.GetToken(), args...)
	case *Function:
		return e.applyFunction(fn, head, args, form, scope)
	case *Macro:
		// a macro reached through a plain binding expands here, with
		// the raw argument nodes
		return e.invokeMacro(fn, form, scope)
	default:
		if len(args) == 0 {
			// a bare parenthesized value evaluates to itself
			return callee
		}
		return newFault(diagnostics.KindTypeMismatch, form.GetToken(),
			"%s is not a function", head.Value)
	}
}

func (e *Evaluator) applyFunction(fn *Function, head *ast.Identifier, args []Object, form *ast.Form, scope *Scope) Object {
	if len(args) != len(fn.Params) {
		return newFault(diagnostics.KindArityMismatch, form.GetToken(),
			"%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}

	var explicit []typesystem.Type
	for _, ref := range head.TypeArgs {
		t, fault := e.typeFromRef(ref, nil, scope)
		if fault != nil {
			return fault
		}
		explicit = append(explicit, t)
	}

	paramTypes := make([]typesystem.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = p.Type
	}
	argKinds := make([]typesystem.Type, len(args))
	for i, a := range args {
		argKinds[i] = a.RuntimeType()
	}

	subst, err := typesystem.Resolve(fn.Generics, explicit, paramTypes, argKinds)
	if err != nil {
		return faultFromTypeError(err, fn.Name, form.GetToken())
	}

	frame := NewEnclosedScope(fn.Scope)
	for _, g := range fn.Generics {
		frame.DeclareConst(typeKey(g.Name), &TypeValue{T: subst[g.Name]})
	}
	for i, p := range fn.Params {
		frame.Declare(p.Name, args[i])
	}

	var result Object = VOID
	for _, node := range fn.Body {
		result = e.Eval(node, frame)
		if isFault(result) {
			return result
		}
	}

	if fn.Return != nil {
		declared := fn.Return.Apply(subst)
		if !typesystem.Assignable(declared, result.RuntimeType()) {
			return newFault(diagnostics.KindTypeMismatch, form.GetToken(),
				"%s declares return type %s, returned %s", fn.Name, declared, result.RuntimeType())
		}
	}
	return result
}

func faultFromTypeError(err error, name string, tok token.Token) *Fault {
	if _, ok := err.(*typesystem.ConstraintError); ok {
		return newFault(diagnostics.KindConstraintViolation, tok, "calling %s: %s", name, err)
	}
	return newFault(diagnostics.KindTypeMismatch, tok, "calling %s: %s", name, err)
}
