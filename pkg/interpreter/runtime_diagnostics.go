package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

const maxCallNotes = 8

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Location is a resolved source position.
type Location struct {
	Path string
	Span ast.Span
	Line string
}

func (l Location) known() bool {
	return l.Span.Start.Line > 0
}

func (l Location) String() string {
	if !l.known() {
		return ""
	}
	path := l.Path
	if path == "" {
		path = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", path, l.Span.Start.Line, l.Span.Start.Column)
}

type RuntimeDiagnosticNote struct {
	Message  string
	Location Location
}

// RuntimeDiagnostic is the rendered form of a runtime error.
type RuntimeDiagnostic struct {
	Message  string
	Location Location
	Notes    []RuntimeDiagnosticNote
}

// attachRuntimeContext records node (and the active call sites) on a runtime
// error that has no location yet. Exit requests and foreign errors pass
// through untouched.
func (i *Interpreter) attachRuntimeContext(err error, node ast.Node) error {
	if err == nil || node == nil || node.Span().IsZero() {
		return err
	}
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) || rtErr.Node != nil {
		return err
	}
	rtErr.Node = node
	rtErr.Calls = append([]ast.Node(nil), i.calls...)
	return err
}

func (i *Interpreter) location(node ast.Node) Location {
	if node == nil || node.Span().IsZero() {
		return Location{}
	}
	loc := Location{Span: node.Span()}
	if src := i.origins[node]; src != nil {
		loc.Path = src.Name
		loc.Line = src.Line(loc.Span.Start.Line)
	}
	return loc
}

// BuildRuntimeDiagnostic resolves the location and call notes of err.
func (i *Interpreter) BuildRuntimeDiagnostic(err error) RuntimeDiagnostic {
	diag := RuntimeDiagnostic{Message: strings.TrimSpace(err.Error())}
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) {
		return diag
	}
	diag.Location = i.location(rtErr.Node)
	for idx := len(rtErr.Calls) - 1; idx >= 0 && len(diag.Notes) < maxCallNotes; idx-- {
		loc := i.location(rtErr.Calls[idx])
		if !loc.known() || loc.Span == diag.Location.Span {
			continue
		}
		diag.Notes = append(diag.Notes, RuntimeDiagnosticNote{Message: "called from here", Location: loc})
	}
	return diag
}

// DescribeRuntimeDiagnostic renders the message, the location, the source
// line with a caret underline and the call notes.
func DescribeRuntimeDiagnostic(diag RuntimeDiagnostic, color bool) string {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}
	var b strings.Builder
	b.WriteString(paint(ansiBold+ansiRed, diag.Message))
	if loc := diag.Location; loc.known() {
		fmt.Fprintf(&b, "\n  at %s", loc)
		if loc.Line != "" {
			fmt.Fprintf(&b, "\n%s\n%s", loc.Line, paint(ansiRed, underline(loc.Line, loc.Span)))
		}
	}
	for _, note := range diag.Notes {
		if loc := note.Location.String(); loc != "" {
			fmt.Fprintf(&b, "\nnote: %s %s", loc, note.Message)
		} else {
			fmt.Fprintf(&b, "\nnote: %s", note.Message)
		}
	}
	return b.String()
}

// underline places carets under the span's columns of line, clipped to the
// end of the line. Tabs in the prefix are kept so the carets line up.
func underline(line string, span ast.Span) string {
	runes := []rune(line)
	start := span.Start.Column - 1
	if start < 0 {
		start = 0
	}
	if start > len(runes) {
		start = len(runes)
	}
	end := len(runes)
	if span.End.Line == span.Start.Line && span.End.Column-1 > start {
		end = min(span.End.Column-1, len(runes))
	}
	width := max(end-start, 1)

	var b strings.Builder
	for _, r := range runes[:start] {
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
	}
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}

// DescribeError renders err as the interpreter would report it.
func (i *Interpreter) DescribeError(err error) string {
	return DescribeRuntimeDiagnostic(i.BuildRuntimeDiagnostic(err), i.color)
}
