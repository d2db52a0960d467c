package parser

import (
	"fmt"

	"lif/interpreter-go/pkg/ast"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenKeyword
	tokenInt
	tokenString
	tokenPunct
)

type token struct {
	kind  tokenKind
	text  string // identifier, keyword or punctuation text; decoded string contents
	value int64
	span  ast.Span
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) String() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return fmt.Sprintf("string %q", t.text)
	case tokenInt:
		return fmt.Sprintf("integer %d", t.value)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

var keywords = map[string]struct{}{
	"let":      {},
	"function": {},
	"class":    {},
	"static":   {},
	"generic":  {},
	"if":       {},
	"else":     {},
	"loop":     {},
	"while":    {},
	"do":       {},
	"for":      {},
	"in":       {},
	"break":    {},
	"continue": {},
	"return":   {},
	"true":     {},
	"false":    {},
}

// Longest first so that the lexer can match greedily.
var punctuation = []string{
	"...",
	"<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!", "<", ">", "=",
	"(", ")", "[", "]", "{", "}", ",", ";", ":", ".",
}
