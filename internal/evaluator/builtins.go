package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
	"github.com/funvibe/sigil/internal/typesystem"
)

// registerBuiltins binds the native function table into the root
// scope. Natives are const bindings like any other top-level name.
func registerBuiltins(scope *Scope) {
	for _, b := range builtins {
		scope.DeclareConst(b.Name, b)
	}
}

var builtins = []*Builtin{
	{Name: "print", Fn: builtinPrint},
	{Name: "+", Fn: numericFold("+")},
	{Name: "*", Fn: numericFold("*")},
	{Name: "-", Fn: numericBinary("-")},
	{Name: "div", Fn: numericBinary("div")},
	{Name: "%", Fn: numericBinary("%")},
	{Name: "==", Fn: builtinEq},
	{Name: "!=", Fn: builtinNotEq},
	{Name: "<", Fn: ordered("<")},
	{Name: "<=", Fn: ordered("<=")},
	{Name: ">", Fn: ordered(">")},
	{Name: ">=", Fn: ordered(">=")},
	{Name: "concat", Fn: builtinConcat},
	{Name: "len", Fn: builtinLen},
	{Name: "head", Fn: builtinHead},
	{Name: "tail", Fn: builtinTail},
	{Name: "push", Fn: builtinPush},
	{Name: "get", Fn: builtinGet},
	{Name: "float", Fn: builtinFloat},
	{Name: "int", Fn: builtinInt},
	{Name: "as", Fn: builtinAs},
	{Name: "gettype", Fn: builtinGetType},
	{Name: "istype", Fn: builtinIsType},
	{Name: "isassignable", Fn: builtinIsAssignable},
	{Name: "sqrt", Fn: builtinSqrt},
	{Name: "abs", Fn: builtinAbs},
	{Name: "min", Fn: extremum("min")},
	{Name: "max", Fn: extremum("max")},
	{Name: "uuid", Fn: builtinUUID},
	{Name: "eval", Fn: builtinEval},
}

func arityFault(name string, tok token.Token, want string, got int) *Fault {
	return newFault(diagnostics.KindArityMismatch, tok, "%s expects %s arguments, got %d", name, want, got)
}

func kindFault(name string, tok token.Token, arg Object) *Fault {
	return newFault(diagnostics.KindTypeMismatch, tok, "%s cannot take %s", name, arg.RuntimeType())
}

// print emits one line per call, arguments joined by a single space.
func builtinPrint(e *Evaluator, tok token.Token, args ...Object) Object {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Inspect()
	}
	fmt.Fprintln(e.Out, strings.Join(parts, " "))
	return VOID
}

// numericFold gives the variadic same-kind arithmetic of + and *.
// Mixing $int and $float faults: there is no implicit promotion.
func numericFold(name string) BuiltinFn {
	return func(e *Evaluator, tok token.Token, args ...Object) Object {
		if len(args) == 0 {
			return arityFault(name, tok, "at least 1", 0)
		}
		switch first := args[0].(type) {
		case *Integer:
			acc := first.Value
			for _, a := range args[1:] {
				i, ok := a.(*Integer)
				if !ok {
					return mixFault(name, tok, args[0], a)
				}
				if name == "+" {
					acc += i.Value
				} else {
					acc *= i.Value
				}
			}
			return &Integer{Value: acc}
		case *Float:
			acc := first.Value
			for _, a := range args[1:] {
				f, ok := a.(*Float)
				if !ok {
					return mixFault(name, tok, args[0], a)
				}
				if name == "+" {
					acc += f.Value
				} else {
					acc *= f.Value
				}
			}
			return &Float{Value: acc}
		}
		return kindFault(name, tok, args[0])
	}
}

func mixFault(name string, tok token.Token, left, right Object) *Fault {
	return newFault(diagnostics.KindTypeMismatch, tok,
		"%s requires operands of one numeric kind, got %s and %s; coerce with float, int or as first",
		name, left.RuntimeType(), right.RuntimeType())
}

func numericBinary(name string) BuiltinFn {
	return func(e *Evaluator, tok token.Token, args ...Object) Object {
		if len(args) != 2 {
			return arityFault(name, tok, "2", len(args))
		}
		switch l := args[0].(type) {
		case *Integer:
			r, ok := args[1].(*Integer)
			if !ok {
				return mixFault(name, tok, args[0], args[1])
			}
			switch name {
			case "-":
				return &Integer{Value: l.Value - r.Value}
			case "div":
				if r.Value == 0 {
					return newFault(diagnostics.KindConstraintViolation, tok, "division by zero")
				}
				return &Integer{Value: l.Value / r.Value}
			case "%":
				if r.Value == 0 {
					return newFault(diagnostics.KindConstraintViolation, tok, "division by zero")
				}
				return &Integer{Value: l.Value % r.Value}
			}
		case *Float:
			r, ok := args[1].(*Float)
			if !ok {
				return mixFault(name, tok, args[0], args[1])
			}
			switch name {
			case "-":
				return &Float{Value: l.Value - r.Value}
			case "div":
				return &Float{Value: l.Value / r.Value}
			case "%":
				return &Float{Value: math.Mod(l.Value, r.Value)}
			}
		}
		return kindFault(name, tok, args[0])
	}
}

func builtinEq(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("==", tok, "2", len(args))
	}
	return nativeBoolToBooleanObject(objectsEqual(args[0], args[1]))
}

func builtinNotEq(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("!=", tok, "2", len(args))
	}
	return nativeBoolToBooleanObject(!objectsEqual(args[0], args[1]))
}

func objectsEqual(a, b Object) bool {
	switch a := a.(type) {
	case *Integer:
		b, ok := b.(*Integer)
		return ok && a.Value == b.Value
	case *Float:
		b, ok := b.(*Float)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case *Void:
		_, ok := b.(*Void)
		return ok
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !objectsEqual(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *TypeValue:
		b, ok := b.(*TypeValue)
		return ok && typesystem.Equal(a.T, b.T)
	}
	return a == b
}

// ordered compares two numbers of one kind, or two strings.
func ordered(name string) BuiltinFn {
	return func(e *Evaluator, tok token.Token, args ...Object) Object {
		if len(args) != 2 {
			return arityFault(name, tok, "2", len(args))
		}
		var cmp int
		switch l := args[0].(type) {
		case *Integer:
			r, ok := args[1].(*Integer)
			if !ok {
				return mixFault(name, tok, args[0], args[1])
			}
			cmp = compareInt(l.Value, r.Value)
		case *Float:
			r, ok := args[1].(*Float)
			if !ok {
				return mixFault(name, tok, args[0], args[1])
			}
			cmp = compareFloat(l.Value, r.Value)
		case *String:
			r, ok := args[1].(*String)
			if !ok {
				return mixFault(name, tok, args[0], args[1])
			}
			cmp = strings.Compare(l.Value, r.Value)
		default:
			return kindFault(name, tok, args[0])
		}
		switch name {
		case "<":
			return nativeBoolToBooleanObject(cmp < 0)
		case "<=":
			return nativeBoolToBooleanObject(cmp <= 0)
		case ">":
			return nativeBoolToBooleanObject(cmp > 0)
		default:
			return nativeBoolToBooleanObject(cmp >= 0)
		}
	}
}

func compareInt(l, r int64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func compareFloat(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

// concat stringifies every argument and joins them.
func builtinConcat(e *Evaluator, tok token.Token, args ...Object) Object {
	var out strings.Builder
	for _, a := range args {
		out.WriteString(a.Inspect())
	}
	return &String{Value: out.String()}
}

func builtinLen(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("len", tok, "1", len(args))
	}
	switch arg := args[0].(type) {
	case *List:
		return &Integer{Value: int64(len(arg.Elements))}
	case *String:
		return &Integer{Value: int64(len(arg.Value))}
	}
	return kindFault("len", tok, args[0])
}

func builtinHead(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("head", tok, "1", len(args))
	}
	list, ok := args[0].(*List)
	if !ok {
		return kindFault("head", tok, args[0])
	}
	if len(list.Elements) == 0 {
		return newFault(diagnostics.KindEmptyCollection, tok, "head of an empty list")
	}
	return list.Elements[0]
}

func builtinTail(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("tail", tok, "1", len(args))
	}
	list, ok := args[0].(*List)
	if !ok {
		return kindFault("tail", tok, args[0])
	}
	if len(list.Elements) == 0 {
		return newFault(diagnostics.KindEmptyCollection, tok, "tail of an empty list")
	}
	rest := make([]Object, len(list.Elements)-1)
	copy(rest, list.Elements[1:])
	return &List{Elements: rest}
}

// push appends in place; the list is shared by reference.
func builtinPush(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("push", tok, "2", len(args))
	}
	list, ok := args[0].(*List)
	if !ok {
		return kindFault("push", tok, args[0])
	}
	list.Elements = append(list.Elements, args[1])
	return list
}

func builtinGet(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("get", tok, "2", len(args))
	}
	list, ok := args[0].(*List)
	if !ok {
		return kindFault("get", tok, args[0])
	}
	idx, ok := args[1].(*Integer)
	if !ok {
		return kindFault("get", tok, args[1])
	}
	if idx.Value < 0 || idx.Value >= int64(len(list.Elements)) {
		return newFault(diagnostics.KindEmptyCollection, tok,
			"index %d out of range for a list of %d", idx.Value, len(list.Elements))
	}
	return list.Elements[idx.Value]
}

func builtinFloat(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("float", tok, "1", len(args))
	}
	switch arg := args[0].(type) {
	case *Integer:
		return &Float{Value: float64(arg.Value)}
	case *Float:
		return arg
	}
	return kindFault("float", tok, args[0])
}

func builtinInt(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("int", tok, "1", len(args))
	}
	switch arg := args[0].(type) {
	case *Integer:
		return arg
	case *Float:
		return &Integer{Value: int64(arg.Value)}
	}
	return kindFault("int", tok, args[0])
}

// as coerces a value to a target type: (as $float 3) is 3.0.
func builtinAs(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("as", tok, "2", len(args))
	}
	target, ok := args[0].(*TypeValue)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, tok, "as expects a type as its first argument")
	}
	val := args[1]

	switch {
	case typesystem.Equal(target.T, typesystem.Float):
		return builtinFloat(e, tok, val)
	case typesystem.Equal(target.T, typesystem.Int):
		switch v := val.(type) {
		case *Integer:
			return v
		case *Float:
			return &Integer{Value: int64(v.Value)}
		case *String:
			n, err := strconv.ParseInt(v.Value, 10, 64)
			if err != nil {
				return newFault(diagnostics.KindTypeMismatch, tok, "cannot parse %q as $int", v.Value)
			}
			return &Integer{Value: n}
		}
	case typesystem.Equal(target.T, typesystem.String):
		return &String{Value: val.Inspect()}
	}

	if typesystem.Assignable(target.T, val.RuntimeType()) {
		return val
	}
	return newFault(diagnostics.KindTypeMismatch, tok, "cannot coerce %s to %s", val.RuntimeType(), target.T)
}

func builtinGetType(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("gettype", tok, "1", len(args))
	}
	return &TypeValue{T: args[0].RuntimeType()}
}

func builtinIsType(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("istype", tok, "2", len(args))
	}
	t, ok := args[0].(*TypeValue)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, tok, "istype expects a type as its first argument")
	}
	return nativeBoolToBooleanObject(typesystem.Assignable(t.T, args[1].RuntimeType()))
}

func builtinIsAssignable(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("isassignable", tok, "2", len(args))
	}
	general, ok := args[0].(*TypeValue)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, tok, "isassignable expects two types")
	}
	specific, ok := args[1].(*TypeValue)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, tok, "isassignable expects two types")
	}
	return nativeBoolToBooleanObject(typesystem.Assignable(general.T, specific.T))
}

func builtinSqrt(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("sqrt", tok, "1", len(args))
	}
	switch arg := args[0].(type) {
	case *Integer:
		return &Float{Value: math.Sqrt(float64(arg.Value))}
	case *Float:
		return &Float{Value: math.Sqrt(arg.Value)}
	}
	return kindFault("sqrt", tok, args[0])
}

func builtinAbs(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 1 {
		return arityFault("abs", tok, "1", len(args))
	}
	switch arg := args[0].(type) {
	case *Integer:
		if arg.Value < 0 {
			return &Integer{Value: -arg.Value}
		}
		return arg
	case *Float:
		return &Float{Value: math.Abs(arg.Value)}
	}
	return kindFault("abs", tok, args[0])
}

// extremum is variadic min/max over one numeric kind.
func extremum(name string) BuiltinFn {
	return func(e *Evaluator, tok token.Token, args ...Object) Object {
		if len(args) == 0 {
			return arityFault(name, tok, "at least 1", 0)
		}
		switch first := args[0].(type) {
		case *Integer:
			best := first.Value
			for _, a := range args[1:] {
				i, ok := a.(*Integer)
				if !ok {
					return mixFault(name, tok, args[0], a)
				}
				if (name == "min") == (i.Value < best) {
					best = i.Value
				}
			}
			return &Integer{Value: best}
		case *Float:
			best := first.Value
			for _, a := range args[1:] {
				f, ok := a.(*Float)
				if !ok {
					return mixFault(name, tok, args[0], a)
				}
				if (name == "min") == (f.Value < best) {
					best = f.Value
				}
			}
			return &Float{Value: best}
		}
		return kindFault(name, tok, args[0])
	}
}

func builtinUUID(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 0 {
		return arityFault("uuid", tok, "no", len(args))
	}
	return &String{Value: uuid.NewString()}
}

// eval runs a quoted node in an explicit scope. With the scope handle
// and quoted args a macro receives, this is how a macro body inspects
// or computes with its arguments.
func builtinEval(e *Evaluator, tok token.Token, args ...Object) Object {
	if len(args) != 2 {
		return arityFault("eval", tok, "2", len(args))
	}
	sv, ok := args[0].(*ScopeValue)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, tok, "eval expects a scope as its first argument")
	}
	av, ok := args[1].(*AstValue)
	if !ok {
		return newFault(diagnostics.KindTypeMismatch, tok, "eval expects an ast as its second argument")
	}
	return e.Eval(av.Node, sv.Scope)
}
