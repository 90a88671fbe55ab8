package typesystem

import "fmt"

// MismatchError reports a value kind that does not fit a declared type.
type MismatchError struct {
	Want Type
	Got  Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, e.Got)
}

// ConstraintError reports a generic binding outside its constraint.
type ConstraintError struct {
	Param      string
	Constraint Type
	Got        Type
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("$%s resolved to %s, which does not satisfy %s", e.Param, e.Got, e.Constraint)
}

// UnresolvedError reports a generic parameter no argument position or
// explicit instantiation could bind.
type UnresolvedError struct {
	Param string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("cannot resolve generic parameter $%s", e.Param)
}

// InstantiationError reports a wrong number of explicit type arguments.
type InstantiationError struct {
	Want int
	Got  int
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("expected %d type arguments, got %d", e.Want, e.Got)
}
