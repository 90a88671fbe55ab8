package lexer

import (
	"testing"

	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
)

func TestNextTokenBasicProgram(t *testing.T) {
	input := `(@fn add [a $int, b $int] $int
	(+ a b)) // trailing comment
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
		expectedClass   token.IdentClass
	}{
		{token.LPAREN, "(", token.IdentPlain},
		{token.IDENT, "fn", token.IdentMacro},
		{token.IDENT, "add", token.IdentPlain},
		{token.LBRACKET, "[", token.IdentPlain},
		{token.IDENT, "a", token.IdentPlain},
		{token.IDENT, "int", token.IdentType},
		{token.COMMA, ",", token.IdentPlain},
		{token.IDENT, "b", token.IdentPlain},
		{token.IDENT, "int", token.IdentType},
		{token.RBRACKET, "]", token.IdentPlain},
		{token.IDENT, "int", token.IdentType},
		{token.LPAREN, "(", token.IdentPlain},
		{token.IDENT, "+", token.IdentPlain},
		{token.IDENT, "a", token.IdentPlain},
		{token.IDENT, "b", token.IdentPlain},
		{token.RPAREN, ")", token.IdentPlain},
		{token.RPAREN, ")", token.IdentPlain},
		{token.EOF, "", token.IdentPlain},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %s", i, err)
		}
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
		if tok.Type == token.IDENT && tok.Class != tt.expectedClass {
			t.Fatalf("tests[%d] - wrong class. expected=%v, got=%v", i, tt.expectedClass, tok.Class)
		}
	}
}

func TestIdentifierRules(t *testing.T) {
	tests := []struct {
		input   string
		class   token.IdentClass
		literal string
	}{
		{"foo", token.IdentPlain, "foo"},
		{"-", token.IdentPlain, "-"},
		{"-a", token.IdentPlain, "-a"},
		{"+", token.IdentPlain, "+"},
		{"<=", token.IdentPlain, "<="},
		{"==", token.IdentPlain, "=="},
		{"%", token.IdentPlain, "%"},
		{"snake_case-kebab?", token.IdentPlain, "snake_case-kebab?"},
		{"@main", token.IdentMacro, "main"},
		{"@ifelse", token.IdentMacro, "ifelse"},
		{"$int", token.IdentType, "int"},
		{"$array", token.IdentType, "array"},
		{"#T", token.IdentGeneric, "T"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("input %q - unexpected error: %s", tt.input, err)
		}
		if tok.Type != token.IDENT {
			t.Fatalf("input %q - expected IDENT, got %q", tt.input, tok.Type)
		}
		if tok.Class != tt.class {
			t.Errorf("input %q - wrong class. expected=%v, got=%v", tt.input, tt.class, tok.Class)
		}
		if tok.Literal != tt.literal {
			t.Errorf("input %q - wrong literal. expected=%q, got=%q", tt.input, tt.literal, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		ty      token.TokenType
		literal string
	}{
		{"0", token.INT, "0"},
		{"42", token.INT, "42"},
		{"-1", token.INT, "-1"},
		{"1_000_000", token.INT, "1000000"},
		{"3.25", token.FLOAT, "3.25"},
		{"-0.5", token.FLOAT, "-0.5"},
		{".5", token.FLOAT, ".5"},
		{"-1.5", token.FLOAT, "-1.5"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("input %q - unexpected error: %s", tt.input, err)
		}
		if tok.Type != tt.ty {
			t.Errorf("input %q - wrong type. expected=%q, got=%q", tt.input, tt.ty, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Errorf("input %q - wrong literal. expected=%q, got=%q", tt.input, tt.literal, tok.Literal)
		}
	}
}

func TestNumberFollowedByDelimiter(t *testing.T) {
	l := New("(- 10 4)")
	var types []token.TokenType
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}

	expected := []token.TokenType{token.LPAREN, token.IDENT, token.INT, token.INT, token.RPAREN, token.EOF}
	if len(types) != len(expected) {
		t.Fatalf("wrong token count. expected=%d, got=%d (%v)", len(expected), len(types), types)
	}
	for i := range expected {
		if types[i] != expected[i] {
			t.Errorf("token %d - expected=%q, got=%q", i, expected[i], types[i])
		}
	}
}

func TestGenericSuffix(t *testing.T) {
	l := New("(sum[$int] nums)")

	if tok, err := l.NextToken(); err != nil || tok.Type != token.LPAREN {
		t.Fatalf("expected LPAREN, got %v (err=%v)", tok, err)
	}

	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if tok.Literal != "sum" {
		t.Fatalf("wrong literal. expected=%q, got=%q", "sum", tok.Literal)
	}
	if len(tok.GenericArgs) != 1 {
		t.Fatalf("wrong generic arg count. expected=1, got=%d", len(tok.GenericArgs))
	}
	arg := tok.GenericArgs[0]
	if arg.Class != token.IdentType || arg.Literal != "int" {
		t.Fatalf("wrong generic arg. got class=%v literal=%q", arg.Class, arg.Literal)
	}

	if tok, err := l.NextToken(); err != nil || tok.Literal != "nums" {
		t.Fatalf("expected nums, got %v (err=%v)", tok, err)
	}
}

func TestGenericSuffixNested(t *testing.T) {
	l := New("first[$array[$int]]")

	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if tok.Literal != "first" || len(tok.GenericArgs) != 1 {
		t.Fatalf("wrong outer token: %v", tok)
	}
	inner := tok.GenericArgs[0]
	if inner.Literal != "array" || inner.Class != token.IdentType {
		t.Fatalf("wrong inner type: %v", inner)
	}
	if len(inner.GenericArgs) != 1 || inner.GenericArgs[0].Literal != "int" {
		t.Fatalf("wrong nested args: %v", inner.GenericArgs)
	}
}

func TestStringsAndEscapes(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\"b"`, `a"b`},
		{`"tab\there"`, "tab\there"},
		{`"line\n"`, "line\n"},
		{`"back\\slash"`, `back\slash`},
		{`"slash\/ok"`, "slash/ok"},
		{`"A"`, "A"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("input %s - unexpected error: %s", tt.input, err)
		}
		if tok.Type != token.STRING {
			t.Fatalf("input %s - expected STRING, got %q", tt.input, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Errorf("input %s - wrong literal. expected=%q, got=%q", tt.input, tt.literal, tok.Literal)
		}
	}
}

func TestBooleans(t *testing.T) {
	l := New("true false")

	tok, _ := l.NextToken()
	if tok.Type != token.BOOL || tok.Literal != "true" {
		t.Fatalf("expected BOOL true, got %v", tok)
	}
	tok, _ = l.NextToken()
	if tok.Type != token.BOOL || tok.Literal != "false" {
		t.Fatalf("expected BOOL false, got %v", tok)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
	}{
		{"1abc"},    // identifiers must not start with a digit
		{"1.2.3"},   // one dot only
		{`"open`},   // unterminated string
		{`"bad\q"`}, // unknown escape
		{"a;b"},     // ';' is reserved; lexes "a" then errors
		{"'c'"},
		{`\`},
		{"sum[$int"}, // unterminated suffix
	}

	for _, tt := range tests {
		l := New(tt.input)
		var lexErr *diagnostics.Error
		for i := 0; i < 16; i++ {
			tok, err := l.NextToken()
			if err != nil {
				lexErr = err
				break
			}
			if tok.Type == token.EOF {
				break
			}
		}
		if lexErr == nil {
			t.Errorf("input %q - expected a lex error, got none", tt.input)
			continue
		}
		if lexErr.Kind != diagnostics.KindSyntaxError {
			t.Errorf("input %q - wrong kind. expected=%s, got=%s", tt.input, diagnostics.KindSyntaxError, lexErr.Kind)
		}
	}
}

func TestPositions(t *testing.T) {
	input := "(add\n  x)"
	l := New(input)

	expected := []struct {
		literal string
		line    int
		column  int
	}{
		{"(", 1, 1},
		{"add", 1, 2},
		{"x", 2, 3},
		{")", 2, 4},
	}

	for i, tt := range expected {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.literal, tok.Literal)
		}
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Errorf("tests[%d] (%q) - wrong position. expected=%d:%d, got=%d:%d",
				i, tt.literal, tt.line, tt.column, tok.Line, tok.Column)
		}
	}
}
