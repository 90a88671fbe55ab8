package evaluator

import "errors"

var (
	errUnbound     = errors.New("unbound identifier")
	errConstAssign = errors.New("assignment to constant")
)

// Scope is a lexical binding frame. Macros live under "@name" keys and
// generic type bindings under "$name", so the three namespaces never
// collide. Scopes are shared by pointer between closures and frames.
type Scope struct {
	store  map[string]Object
	consts map[string]bool
	outer  *Scope
}

func NewScope() *Scope {
	return &Scope{store: make(map[string]Object), consts: make(map[string]bool)}
}

func NewEnclosedScope(outer *Scope) *Scope {
	s := NewScope()
	s.outer = outer
	return s
}

func macroKey(name string) string { return "@" + name }
func typeKey(name string) string  { return "$" + name }

// Get walks the chain outward.
func (s *Scope) Get(name string) (Object, bool) {
	obj, ok := s.store[name]
	if !ok && s.outer != nil {
		return s.outer.Get(name)
	}
	return obj, ok
}

// Declare binds in the current scope, shadowing any outer binding.
func (s *Scope) Declare(name string, val Object) Object {
	s.store[name] = val
	delete(s.consts, name)
	return val
}

// DeclareConst binds an immutable name in the current scope.
func (s *Scope) DeclareConst(name string, val Object) Object {
	s.store[name] = val
	s.consts[name] = true
	return val
}

// Assign mutates the nearest enclosing scope that declares name.
func (s *Scope) Assign(name string, val Object) error {
	if _, ok := s.store[name]; ok {
		if s.consts[name] {
			return errConstAssign
		}
		s.store[name] = val
		return nil
	}
	if s.outer != nil {
		return s.outer.Assign(name, val)
	}
	return errUnbound
}
