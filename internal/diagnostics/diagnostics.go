package diagnostics

import (
	"fmt"

	"github.com/funvibe/sigil/internal/token"
)

// Fault kinds shared by every stage. Faults are values carrying a kind
// and a message; they are never used for ordinary control flow.
const (
	KindSyntaxError            = "SyntaxError"
	KindUnboundIdentifier      = "UnboundIdentifier"
	KindMacroExpansionOverflow = "MacroExpansionOverflow"
	KindTypeMismatch           = "TypeMismatch"
	KindConstraintViolation    = "ConstraintViolation"
	KindArityMismatch          = "ArityMismatch"
	KindEmptyCollection        = "EmptyCollection"
	KindRecursionLimit         = "RecursionLimitExceeded"
)

type Error struct {
	Kind    string
	Message string
	File    string
	Line    int
	Column  int
}

func NewError(kind string, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

func (e *Error) Error() string {
	loc := ""
	if e.Line > 0 {
		if e.File != "" {
			loc = fmt.Sprintf(" at %s:%d:%d", e.File, e.Line, e.Column)
		} else {
			loc = fmt.Sprintf(" at %d:%d", e.Line, e.Column)
		}
	}
	return fmt.Sprintf("%s: %s%s", e.Kind, e.Message, loc)
}
