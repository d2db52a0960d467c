package parser

import (
	"errors"
	"fmt"

	"lif/interpreter-go/pkg/ast"
)

// SyntaxError reports malformed source. Incomplete is set when the input ended
// before the construct being parsed was closed.
type SyntaxError struct {
	Message    string
	Span       ast.Span
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return "SYNTAX ERROR: " + e.Message
}

// IsIncomplete reports whether err was caused by input ending too early. The
// REPL uses it to ask for continuation lines.
func IsIncomplete(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.Incomplete
}

func errorAt(span ast.Span, format string, args ...any) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Span: span}
}

func unexpected(tok token, expected string) *SyntaxError {
	err := errorAt(tok.span, "Expected %s but found %s.", expected, tok)
	err.Incomplete = tok.kind == tokenEOF
	return err
}
