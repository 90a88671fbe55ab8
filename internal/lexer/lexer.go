package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// NextToken scans the next token. Commas and colons are real tokens here;
// the parser skips them as separators.
func (l *Lexer) NextToken() (token.Token, *diagnostics.Error) {
	l.skipWhitespace()

	line, col := l.line, l.column

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: col}, nil
	case ',':
		return l.delimiter(token.COMMA), nil
	case ':':
		return l.delimiter(token.COLON), nil
	case '(':
		return l.delimiter(token.LPAREN), nil
	case ')':
		return l.delimiter(token.RPAREN), nil
	case '{':
		return l.delimiter(token.LBRACE), nil
	case '}':
		return l.delimiter(token.RBRACE), nil
	case '[':
		return l.delimiter(token.LBRACKET), nil
	case ']':
		return l.delimiter(token.RBRACKET), nil
	case '"':
		return l.readString()
	case ';', '\'', '\\', '/':
		return token.Token{}, l.errorf(line, col, "unexpected character %q", l.ch)
	}

	if isDigit(l.ch) || l.ch == '.' {
		return l.readNumber()
	}
	if l.ch == '-' && (isDigit(l.peekChar()) || l.peekChar() == '.') {
		return l.readNumber()
	}

	return l.readIdentifier()
}

// Tokenize scans the whole input. The returned stream always ends with EOF.
func (l *Lexer) Tokenize() ([]token.Token, *diagnostics.Error) {
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) delimiter(tokenType token.TokenType) token.Token {
	tok := newToken(tokenType, l.ch, l.line, l.column)
	l.readChar()
	return tok
}

// readIdentifier scans an identifier and, when it is followed immediately
// by '[', the type-argument tokens of the instantiation suffix
// (e.g. sum[$int]). Identifiers run until whitespace or a reserved
// character; ClassifyIdent splits off a leading sigil.
func (l *Lexer) readIdentifier() (token.Token, *diagnostics.Error) {
	line, col := l.line, l.column
	position := l.position

	l.readChar()
	for l.ch != 0 && !unicode.IsSpace(l.ch) && !isReserved(l.ch) {
		l.readChar()
	}
	raw := l.input[position:l.position]

	var generics []token.Token
	if l.ch == '[' {
		l.readChar()
		for {
			tok, err := l.NextToken()
			if err != nil {
				return token.Token{}, err
			}
			if tok.Type == token.RBRACKET {
				break
			}
			if tok.Type == token.EOF {
				return token.Token{}, l.errorf(line, col, "unterminated type argument list for %s", raw)
			}
			generics = append(generics, tok)
		}
	}

	return token.ClassifyIdent(raw, generics, line, col), nil
}

// readNumber scans an int or float literal. A single dot and '_' digit
// separators are allowed; the literal must end at whitespace, a delimiter
// or EOF, so "1abc" is an error rather than two tokens.
func (l *Lexer) readNumber() (token.Token, *diagnostics.Error) {
	line, col := l.line, l.column
	position := l.position
	foundDot := l.ch == '.'

	l.readChar()
	for {
		if isDigit(l.ch) || l.ch == '_' {
			l.readChar()
			continue
		}
		if l.ch == '.' {
			if foundDot {
				return token.Token{}, l.errorf(l.line, l.column, "unexpected second '.' in number")
			}
			foundDot = true
			l.readChar()
			continue
		}
		if l.ch == 0 || unicode.IsSpace(l.ch) || isDelimiter(l.ch) {
			break
		}
		return token.Token{}, l.errorf(l.line, l.column, "unexpected character %q in number", l.ch)
	}

	raw := l.input[position:l.position]
	digits := strings.ReplaceAll(raw, "_", "")

	if foundDot {
		if _, err := strconv.ParseFloat(digits, 64); err != nil {
			return token.Token{}, l.errorf(line, col, "malformed float literal %q", raw)
		}
		return token.Token{Type: token.FLOAT, Lexeme: raw, Literal: digits, Line: line, Column: col}, nil
	}
	if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
		return token.Token{}, l.errorf(line, col, "malformed integer literal %q", raw)
	}
	return token.Token{Type: token.INT, Lexeme: raw, Literal: digits, Line: line, Column: col}, nil
}

// readString scans a double-quoted string, resolving the escape sequences
// \" \\ \/ \b \f \n \r \t and \uXXXX.
func (l *Lexer) readString() (token.Token, *diagnostics.Error) {
	line, col := l.line, l.column
	position := l.position
	var out strings.Builder

	for {
		l.readChar()
		switch l.ch {
		case 0:
			return token.Token{}, l.errorf(line, col, "unterminated string literal")
		case '"':
			l.readChar()
			lexeme := l.input[position:l.position]
			return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: out.String(), Line: line, Column: col}, nil
		case '\\':
			l.readChar()
			switch l.ch {
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			case '/':
				out.WriteByte('/')
			case 'b':
				out.WriteByte('\b')
			case 'f':
				out.WriteByte('\f')
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case 'u':
				val, ok := l.readHexEscape(4)
				if !ok {
					return token.Token{}, l.errorf(l.line, l.column, "invalid \\u escape in string")
				}
				out.WriteRune(rune(val))
			case 0:
				return token.Token{}, l.errorf(line, col, "unterminated string literal")
			default:
				return token.Token{}, l.errorf(l.line, l.column, "invalid escape character %q", l.ch)
			}
		default:
			out.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) readHexEscape(n int) (int64, bool) {
	var val int64
	for i := 0; i < n; i++ {
		l.readChar()
		var d int64
		if l.ch >= '0' && l.ch <= '9' {
			d = int64(l.ch - '0')
		} else if l.ch >= 'a' && l.ch <= 'f' {
			d = int64(l.ch - 'a' + 10)
		} else if l.ch >= 'A' && l.ch <= 'F' {
			d = int64(l.ch - 'A' + 10)
		} else {
			return 0, false
		}
		val = val*16 + d
	}
	return val, true
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) errorf(line, col int, format string, args ...interface{}) *diagnostics.Error {
	return &diagnostics.Error{
		Kind:    diagnostics.KindSyntaxError,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isDelimiter(ch rune) bool {
	switch ch {
	case ',', ':', '(', ')', '{', '}', '[', ']':
		return true
	}
	return false
}

// isReserved reports characters that terminate an identifier. The sigils
// '@', '$' and '#' are only special in leading position; '@' additionally
// may not appear inside an identifier.
func isReserved(ch rune) bool {
	if isDelimiter(ch) {
		return true
	}
	switch ch {
	case ';', '\'', '"', '/', '\\', '.', '@':
		return true
	}
	return false
}
