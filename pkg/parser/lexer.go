package parser

import (
	"math/big"
	"strings"
	"unicode"

	"lif/interpreter-go/pkg/ast"
)

type lexer struct {
	input  []rune
	offset int
	line   int
	column int
}

func newLexer(source []byte) *lexer {
	return &lexer{input: []rune(string(source)), line: 1, column: 1}
}

// tokenize scans the whole input. The returned slice always ends with EOF.
func (l *lexer) tokenize() ([]token, error) {
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) position() ast.Position {
	return ast.Position{Line: l.line, Column: l.column}
}

func (l *lexer) peek(ahead int) rune {
	if l.offset+ahead >= len(l.input) {
		return 0
	}
	return l.input[l.offset+ahead]
}

func (l *lexer) atEnd() bool {
	return l.offset >= len(l.input)
}

func (l *lexer) advance() rune {
	r := l.input[l.offset]
	l.offset++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) skipTrivia() error {
	for !l.atEnd() {
		r := l.peek(0)
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peek(1) == '/':
			for !l.atEnd() && l.peek(0) != '\n' {
				l.advance()
			}
		case r == '/' && l.peek(1) == '*':
			start := l.position()
			l.advance()
			l.advance()
			for {
				if l.atEnd() {
					err := errorAt(ast.Span{Start: start, End: l.position()}, "Unterminated block comment.")
					err.Incomplete = true
					return err
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipTrivia(); err != nil {
		return token{}, err
	}
	start := l.position()
	if l.atEnd() {
		return token{kind: tokenEOF, span: ast.Span{Start: start, End: start}}, nil
	}

	r := l.peek(0)
	switch {
	case isIdentifierStart(r):
		return l.identifier(start), nil
	case unicode.IsDigit(r):
		return l.integer(start)
	case r == '"':
		return l.stringLiteral(start)
	}

	for _, p := range punctuation {
		if l.hasPrefix(p) {
			for range len(p) {
				l.advance()
			}
			return token{kind: tokenPunct, text: p, span: ast.Span{Start: start, End: l.position()}}, nil
		}
	}
	l.advance()
	return token{}, errorAt(ast.Span{Start: start, End: l.position()}, "Unexpected character %q.", r)
}

func (l *lexer) hasPrefix(p string) bool {
	for idx, r := range p {
		if l.peek(idx) != r {
			return false
		}
	}
	return true
}

func (l *lexer) identifier(start ast.Position) token {
	var b strings.Builder
	for !l.atEnd() && isIdentifierPart(l.peek(0)) {
		b.WriteRune(l.advance())
	}
	text := b.String()
	kind := tokenIdent
	if _, ok := keywords[text]; ok {
		kind = tokenKeyword
	}
	return token{kind: kind, text: text, span: ast.Span{Start: start, End: l.position()}}
}

func (l *lexer) integer(start ast.Position) (token, error) {
	var raw strings.Builder
	for !l.atEnd() && isIdentifierPart(l.peek(0)) {
		raw.WriteRune(l.advance())
	}
	span := ast.Span{Start: start, End: l.position()}
	text := raw.String()

	base := 10
	digits := strings.ToLower(text)
	switch {
	case strings.HasPrefix(digits, "0b"):
		base, digits = 2, digits[2:]
	case strings.HasPrefix(digits, "0o"):
		base, digits = 8, digits[2:]
	case strings.HasPrefix(digits, "0x"):
		base, digits = 16, digits[2:]
	}
	if strings.HasPrefix(digits, "_") || strings.HasSuffix(digits, "_") || strings.Contains(digits, "__") {
		return token{}, errorAt(span, "Invalid integer literal %q.", text)
	}
	digits = strings.ReplaceAll(digits, "_", "")
	value, ok := new(big.Int).SetString(digits, base)
	if digits == "" || !ok {
		return token{}, errorAt(span, "Invalid integer literal %q.", text)
	}
	if !value.IsInt64() {
		return token{}, errorAt(span, "Integer literal %q is out of range.", text)
	}
	return token{kind: tokenInt, text: text, value: value.Int64(), span: span}, nil
}

func (l *lexer) stringLiteral(start ast.Position) (token, error) {
	l.advance()
	var b strings.Builder
	for {
		if l.atEnd() {
			err := errorAt(ast.Span{Start: start, End: l.position()}, "Unterminated string literal.")
			err.Incomplete = true
			return token{}, err
		}
		r := l.advance()
		if r == '"' {
			break
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if l.atEnd() {
			continue
		}
		escapeStart := l.position()
		switch esc := l.advance(); esc {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		case '0':
			b.WriteRune(0)
		case '"', '\\':
			b.WriteRune(esc)
		default:
			escapeStart.Column--
			return token{}, errorAt(ast.Span{Start: escapeStart, End: l.position()}, "Unknown escape sequence \"\\%c\".", esc)
		}
	}
	return token{kind: tokenString, text: b.String(), span: ast.Span{Start: start, End: l.position()}}, nil
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}
