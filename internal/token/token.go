package token

type TokenType string

const (
	EOF     = "EOF"
	ILLEGAL = "ILLEGAL"

	// Identifiers + literals
	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"
	BOOL   = "BOOL"

	// Delimiters
	COMMA = ","
	COLON = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"
)

// IdentClass distinguishes the sigil an identifier was written with.
// `@name` invokes or defines a macro, `$name` references a type and
// `#name` names a generic parameter. The sigil is stripped from the
// literal; the class keeps it recoverable.
type IdentClass int

const (
	IdentPlain IdentClass = iota
	IdentMacro
	IdentType
	IdentGeneric
)

func (c IdentClass) Sigil() string {
	switch c {
	case IdentMacro:
		return "@"
	case IdentType:
		return "$"
	case IdentGeneric:
		return "#"
	}
	return ""
}

type Token struct {
	Type    TokenType
	Lexeme  string // raw source text
	Literal string // decoded value (sigil stripped for idents, unescaped for strings)
	Line    int
	Column  int

	// Class is meaningful only for IDENT tokens.
	Class IdentClass
	// GenericArgs holds the tokens lexed from a trailing `[...]`
	// instantiation suffix (e.g. sum[$int]); nil when absent.
	GenericArgs []Token
}

// ClassifyIdent builds an IDENT (or BOOL) token from a raw identifier
// spelling, splitting off the leading sigil.
func ClassifyIdent(raw string, generics []Token, line, column int) Token {
	switch raw {
	case "true", "false":
		return Token{Type: BOOL, Lexeme: raw, Literal: raw, Line: line, Column: column}
	}

	tok := Token{Type: IDENT, Lexeme: raw, Literal: raw, Line: line, Column: column, GenericArgs: generics}
	switch {
	case len(raw) > 1 && raw[0] == '@':
		tok.Class = IdentMacro
		tok.Literal = raw[1:]
	case len(raw) > 1 && raw[0] == '$':
		tok.Class = IdentType
		tok.Literal = raw[1:]
	case len(raw) > 1 && raw[0] == '#':
		tok.Class = IdentGeneric
		tok.Literal = raw[1:]
	}
	return tok
}
