package parser

import (
	"strconv"

	"github.com/funvibe/sigil/internal/ast"
	"github.com/funvibe/sigil/internal/diagnostics"
	"github.com/funvibe/sigil/internal/token"
)

// Parser turns a token stream into an AST. The grammar is prefix
// notation: a program is a sequence of forms, a form is
// (head arg ...) where head is an identifier, and brackets make list
// literals. Commas and colons are separators and are skipped.
type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(expected token.TokenType) (token.Token, *diagnostics.Error) {
	tok := p.next()
	if tok.Type != expected {
		return tok, p.unexpected(tok)
	}
	return tok, nil
}

func (p *Parser) unexpected(tok token.Token) *diagnostics.Error {
	if tok.Type == token.EOF {
		return diagnostics.NewError(diagnostics.KindSyntaxError, tok, "unexpected end of file")
	}
	return diagnostics.NewError(diagnostics.KindSyntaxError, tok, "unexpected token %q", tok.Lexeme)
}

// ParseProgram parses the whole unit. Top level admits only forms;
// which heads are legal there is checked by the interpreter's
// registration pass.
func (p *Parser) ParseProgram() (*ast.Program, *diagnostics.Error) {
	program := &ast.Program{}

	for {
		p.skipSeparators()
		tok := p.peek()
		if tok.Type == token.EOF {
			return program, nil
		}
		if tok.Type != token.LPAREN {
			return nil, diagnostics.NewError(diagnostics.KindSyntaxError, tok,
				"expected a top-level form, got %q", tok.Lexeme)
		}
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		program.Nodes = append(program.Nodes, form)
	}
}

func (p *Parser) skipSeparators() {
	for p.peek().Type == token.COMMA || p.peek().Type == token.COLON {
		p.next()
	}
}

func (p *Parser) parseNode() (ast.Node, *diagnostics.Error) {
	p.skipSeparators()
	tok := p.peek()

	switch tok.Type {
	case token.INT:
		p.next()
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, diagnostics.NewError(diagnostics.KindSyntaxError, tok, "malformed integer literal %q", tok.Lexeme)
		}
		return &ast.IntegerLiteral{Token: tok, Value: value}, nil
	case token.FLOAT:
		p.next()
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, diagnostics.NewError(diagnostics.KindSyntaxError, tok, "malformed float literal %q", tok.Lexeme)
		}
		return &ast.FloatLiteral{Token: tok, Value: value}, nil
	case token.STRING:
		p.next()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
	case token.BOOL:
		p.next()
		return &ast.BooleanLiteral{Token: tok, Value: tok.Literal == "true"}, nil
	case token.IDENT:
		p.next()
		return p.identifier(tok)
	case token.LPAREN:
		return p.parseForm()
	case token.LBRACKET:
		return p.parseList()
	default:
		return nil, p.unexpected(tok)
	}
}

// identifier converts an IDENT token, turning $name and #name into
// first-class type references and attaching an instantiation suffix.
func (p *Parser) identifier(tok token.Token) (ast.Node, *diagnostics.Error) {
	if tok.Class == token.IdentType || tok.Class == token.IdentGeneric {
		ref, err := typeRefFromToken(tok)
		if err != nil {
			return nil, err
		}
		return ref, nil
	}

	args, err := typeRefsFromTokens(tok, tok.GenericArgs)
	if err != nil {
		return nil, err
	}
	return &ast.Identifier{Token: tok, Value: tok.Literal, Class: tok.Class, TypeArgs: args}, nil
}

func typeRefFromToken(tok token.Token) (*ast.TypeRef, *diagnostics.Error) {
	args, err := typeRefsFromTokens(tok, tok.GenericArgs)
	if err != nil {
		return nil, err
	}
	return &ast.TypeRef{Token: tok, Name: tok.Literal, Args: args}, nil
}

func typeRefsFromTokens(owner token.Token, toks []token.Token) ([]*ast.TypeRef, *diagnostics.Error) {
	if len(toks) == 0 {
		return nil, nil
	}
	refs := make([]*ast.TypeRef, 0, len(toks))
	for _, tok := range toks {
		if tok.Type == token.COMMA || tok.Type == token.COLON {
			continue
		}
		if tok.Type != token.IDENT {
			return nil, diagnostics.NewError(diagnostics.KindSyntaxError, tok,
				"expected a type argument in %s[...], got %q", owner.Literal, tok.Lexeme)
		}
		ref, err := typeRefFromToken(tok)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (p *Parser) parseForm() (*ast.Form, *diagnostics.Error) {
	lparen, err := p.expect(token.LPAREN)
	if err != nil {
		return nil, err
	}

	p.skipSeparators()
	headTok := p.peek()
	if headTok.Type != token.IDENT {
		return nil, diagnostics.NewError(diagnostics.KindSyntaxError, headTok,
			"expected an identifier as form head, got %q", headTok.Lexeme)
	}
	p.next()
	head, perr := p.identifier(headTok)
	if perr != nil {
		return nil, perr
	}

	form := &ast.Form{Token: lparen, Head: head}
	for {
		p.skipSeparators()
		tok := p.peek()
		if tok.Type == token.RPAREN {
			p.next()
			return form, nil
		}
		if tok.Type == token.EOF {
			return nil, p.unexpected(tok)
		}
		arg, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		form.Args = append(form.Args, arg)
	}
}

func (p *Parser) parseList() (*ast.ListLiteral, *diagnostics.Error) {
	lbracket, err := p.expect(token.LBRACKET)
	if err != nil {
		return nil, err
	}

	list := &ast.ListLiteral{Token: lbracket}
	for {
		p.skipSeparators()
		tok := p.peek()
		if tok.Type == token.RBRACKET {
			p.next()
			return list, nil
		}
		if tok.Type == token.EOF {
			return nil, p.unexpected(tok)
		}
		element, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, element)
	}
}
