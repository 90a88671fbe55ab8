package typesystem

// Assignable reports whether a value of kind specific fits a slot
// declared as general: true when general is the same or more general.
// The lattice is $any over everything and $number over $int and $float;
// a bare $array admits every array, $array[T] admits $array[U] when T
// admits U. An empty list (bare $array kind) fits any array slot.
func Assignable(general, specific Type) bool {
	if Equal(general, Any) {
		return true
	}
	if Equal(general, specific) {
		return true
	}

	switch g := general.(type) {
	case TCon:
		if g == Number {
			return Equal(specific, Int) || Equal(specific, Float)
		}
		if g == Array {
			if app, ok := specific.(TApp); ok {
				return Equal(app.Constructor, Array)
			}
		}
		return false
	case TApp:
		switch s := specific.(type) {
		case TApp:
			if !Equal(g.Constructor, s.Constructor) || len(g.Args) != len(s.Args) {
				return false
			}
			for i := range g.Args {
				if !Assignable(g.Args[i], s.Args[i]) {
					return false
				}
			}
			return true
		case TCon:
			return Equal(g.Constructor, s)
		}
	}
	return false
}

// Unify matches a declared type against the run-time kind of an
// argument, binding generic parameters in s. A parameter already bound
// (by an explicit instantiation or an earlier argument position) must
// match the new kind exactly; the lattice applies only to concrete
// declared types, never to parameter bindings.
func Unify(declared, actual Type, s Subst) error {
	switch d := declared.(type) {
	case TVar:
		if Equal(actual, Mixed) {
			return &MismatchError{Want: d, Got: Mixed}
		}
		if bound, ok := s[d.Name]; ok {
			if !Equal(bound, actual) {
				return &MismatchError{Want: bound, Got: actual}
			}
			return nil
		}
		s[d.Name] = actual
		return nil

	case TCon:
		if Assignable(d, actual) {
			return nil
		}
		return &MismatchError{Want: d, Got: actual}

	case TApp:
		switch a := actual.(type) {
		case TApp:
			if !Equal(d.Constructor, a.Constructor) || len(d.Args) != len(a.Args) {
				return &MismatchError{Want: d, Got: a}
			}
			for i := range d.Args {
				if err := Unify(d.Args[i], a.Args[i], s); err != nil {
					return err
				}
			}
			return nil
		case TCon:
			// an empty list has the bare constructor kind; it fits and
			// leaves the element parameter for other positions to bind
			if Equal(d.Constructor, a) {
				return nil
			}
			return &MismatchError{Want: d, Got: a}
		}
		return &MismatchError{Want: d, Got: actual}
	}

	return &MismatchError{Want: declared, Got: actual}
}

// GenericParam is one declared generic of a function signature. A nil
// Constraint means $any.
type GenericParam struct {
	Name       string
	Constraint Type
}

// Resolve performs call-site generic resolution. Explicit type
// arguments win; otherwise each argument position unifies the declared
// parameter type with the argument's run-time kind. Every generic must
// end up bound and inside its constraint. Resolution is per call, no
// caching.
func Resolve(generics []GenericParam, explicit []Type, params []Type, args []Type) (Subst, error) {
	s := Subst{}

	if len(explicit) > 0 {
		if len(explicit) != len(generics) {
			return nil, &InstantiationError{Want: len(generics), Got: len(explicit)}
		}
		for i, g := range generics {
			s[g.Name] = explicit[i]
		}
	}

	for i := range params {
		if i >= len(args) {
			break
		}
		if err := Unify(params[i], args[i], s); err != nil {
			return nil, err
		}
	}

	for _, g := range generics {
		bound, ok := s[g.Name]
		if !ok {
			return nil, &UnresolvedError{Param: g.Name}
		}
		constraint := g.Constraint
		if constraint == nil {
			constraint = Any
		}
		if !Assignable(constraint, bound) {
			return nil, &ConstraintError{Param: g.Name, Constraint: constraint, Got: bound}
		}
	}

	return s, nil
}
