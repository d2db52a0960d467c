package parser

import (
	"fmt"
	"os"

	"lif/interpreter-go/pkg/ast"
)

// ParseModule parses Lif source into a program. The program's Source records
// name and text so that runtime diagnostics can quote the offending line.
func ParseModule(name string, source []byte) (*ast.Program, error) {
	tokens, err := newLexer(source).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	program, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	program.Source = ast.NewSource(name, string(source))
	return program, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parser: read %s: %w", path, err)
	}
	return ParseModule(path, source)
}

type parser struct {
	tokens []token
	pos    int
	prev   token
}

func (p *parser) current() token {
	return p.tokens[p.pos]
}

func (p *parser) lookahead(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	p.prev = tok
	return tok
}

func (p *parser) atPunct(text string) bool {
	return p.current().is(tokenPunct, text)
}

func (p *parser) atKeyword(text string) bool {
	return p.current().is(tokenKeyword, text)
}

func (p *parser) acceptPunct(text string) bool {
	if p.atPunct(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) acceptKeyword(text string) bool {
	if p.atKeyword(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectPunct(text string) (token, error) {
	if !p.atPunct(text) {
		return token{}, unexpected(p.current(), fmt.Sprintf("%q", text))
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(text string) (token, error) {
	if !p.atKeyword(text) {
		return token{}, unexpected(p.current(), fmt.Sprintf("%q", text))
	}
	return p.advance(), nil
}

func (p *parser) expectIdentifier() (*ast.Identifier, error) {
	tok := p.current()
	if tok.kind != tokenIdent {
		return nil, unexpected(tok, "an identifier")
	}
	p.advance()
	id := ast.NewIdentifier(tok.text)
	ast.SetSpan(id, tok.span)
	return id, nil
}

// finish stamps node with the span from start to the end of the last consumed
// token.
func (p *parser) finish(node ast.Node, start ast.Position) {
	ast.SetSpan(node, ast.Span{Start: start, End: p.prev.span.End})
}

func (p *parser) parseProgram() (*ast.Program, error) {
	start := p.current().span.Start
	body := make([]ast.Statement, 0)
	for p.current().kind != tokenEOF {
		if p.acceptPunct(";") {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	program := ast.NewProgram(body)
	ast.SetSpan(program, ast.Span{Start: start, End: p.current().span.End})
	return program, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	var (
		stmt ast.Statement
		err  error
	)
	switch {
	case p.atKeyword("let"):
		stmt, err = p.parseLet()
	case p.startsBlockLike():
		// Block-like forms end the statement so that a following line starting
		// with "(" or "-" is not read as a call or a subtraction.
		stmt, err = p.parsePrimary()
	default:
		stmt, err = p.parseExpression()
	}
	if err != nil {
		return nil, err
	}
	p.acceptPunct(";")
	return stmt, nil
}

func (p *parser) startsBlockLike() bool {
	tok := p.current()
	if tok.kind == tokenPunct {
		return tok.text == "{"
	}
	if tok.kind != tokenKeyword {
		return false
	}
	switch tok.text {
	case "if", "loop", "while", "do", "for":
		return true
	case "function", "class", "generic":
		// Only the named declaration forms; anonymous ones are expressions.
		return p.lookahead(1).kind == tokenIdent
	}
	return false
}

func (p *parser) parseLet() (ast.Statement, error) {
	start := p.advance().span.Start
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	var typ, value ast.Expression
	if p.acceptPunct(":") {
		if typ, err = p.parseTypeExpression(); err != nil {
			return nil, err
		}
	}
	if p.acceptPunct("=") {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	decl := ast.NewLetDeclaration(name, typ, value)
	p.finish(decl, start)
	return decl, nil
}

func (p *parser) parseBlock() (*ast.BlockExpression, error) {
	open, err := p.expectPunct("{")
	if err != nil {
		return nil, err
	}
	body := make([]ast.Statement, 0)
	for !p.atPunct("}") {
		if p.current().kind == tokenEOF {
			return nil, unexpected(p.current(), `"}"`)
		}
		if p.acceptPunct(";") {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance()
	block := ast.NewBlockExpression(body)
	p.finish(block, open.span.Start)
	return block, nil
}
