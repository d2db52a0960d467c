package interpreter

import (
	"strings"
	"testing"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

func span(line, startCol, endCol int) ast.Span {
	return ast.Span{Start: ast.Position{Line: line, Column: startCol}, End: ast.Position{Line: line, Column: endCol}}
}

func TestDiagnosticUnderlinesOffendingNode(t *testing.T) {
	interp, _, stderr := newTestInterpreter()
	ghost := ast.ID("ghost")
	ast.SetSpan(ghost, span(2, 9, 14))
	decl := ast.Let("y", ghost)
	ast.SetSpan(decl, span(2, 1, 15))
	program := ast.Prog(decl)
	program.Source = ast.NewSource("main.lif", "let a = 1;\nlet y = ghost;\n")

	if _, err := interp.Run(program); err == nil {
		t.Fatalf("expected an error")
	}
	want := strings.Join([]string{
		`RUNTIME ERROR: Variable "ghost" is not declared.`,
		"  at main.lif:2:9",
		"let y = ghost;",
		"        ^^^^^",
		"",
	}, "\n")
	if got := stderr.String(); got != want {
		t.Fatalf("unexpected diagnostic:\n%s\nwant:\n%s", got, want)
	}
}

func TestDiagnosticFirstAttacherWins(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	inner := ast.ID("ghost")
	ast.SetSpan(inner, span(1, 5, 10))
	outer := ast.Bin("+", inner, ast.Int(1))
	ast.SetSpan(outer, span(1, 1, 14))

	_, err := interp.Run(ast.Prog(outer))
	rtErr, ok := err.(*runtime.Error)
	if !ok {
		t.Fatalf("expected *runtime.Error, got %T", err)
	}
	if rtErr.Node != inner {
		t.Fatalf("expected the innermost located node, got %#v", rtErr.Node)
	}
}

func TestDiagnosticSkipsNodesWithoutSpans(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	inner := ast.ID("ghost")
	stmt := ast.Let("x", inner)
	ast.SetSpan(stmt, span(1, 1, 16))

	_, err := interp.Run(ast.Prog(stmt))
	rtErr, ok := err.(*runtime.Error)
	if !ok {
		t.Fatalf("expected *runtime.Error, got %T", err)
	}
	if rtErr.Node != stmt {
		t.Fatalf("expected the let declaration to carry the location")
	}
}

func TestDiagnosticCallNotes(t *testing.T) {
	interp, _, stderr := newTestInterpreter()
	source := ast.NewSource("calls.lif", "function f() { ghost; }\nf();\n")
	ghost := ast.ID("ghost")
	ast.SetSpan(ghost, span(1, 16, 21))
	fn := ast.Fn("f", nil, ghost)
	ast.SetSpan(fn, span(1, 1, 24))
	call := ast.CallName("f")
	ast.SetSpan(call, span(2, 1, 4))
	program := ast.Prog(fn, call)
	program.Source = source

	if _, err := interp.Run(program); err == nil {
		t.Fatalf("expected an error")
	}
	out := stderr.String()
	if !strings.Contains(out, "  at calls.lif:1:16\nfunction f() { ghost; }\n               ^^^^^") {
		t.Fatalf("missing located excerpt:\n%s", out)
	}
	if !strings.Contains(out, "note: calls.lif:2:1 called from here") {
		t.Fatalf("missing call note:\n%s", out)
	}
}

func TestDescribeRuntimeDiagnosticColor(t *testing.T) {
	diag := RuntimeDiagnostic{
		Message:  "RUNTIME ERROR: Division by zero.",
		Location: Location{Path: "x.lif", Span: span(1, 3, 4), Line: "1 / 0"},
	}
	got := DescribeRuntimeDiagnostic(diag, true)
	if !strings.HasPrefix(got, ansiBold+ansiRed+"RUNTIME ERROR: Division by zero."+ansiReset) {
		t.Fatalf("message not coloured: %q", got)
	}
	if !strings.HasSuffix(got, ansiRed+"  ^"+ansiReset) {
		t.Fatalf("underline not coloured: %q", got)
	}
	plain := DescribeRuntimeDiagnostic(diag, false)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("plain output contains escapes: %q", plain)
	}
}

func TestUnderlineClipsToLine(t *testing.T) {
	cases := []struct {
		line string
		span ast.Span
		want string
	}{
		{"abc", span(1, 2, 3), " ^"},
		{"abc", span(1, 2, 40), " ^^"},
		{"\tx = y", span(1, 2, 3), "\t^"},
		{"abc", ast.Span{Start: ast.Position{Line: 1, Column: 1}, End: ast.Position{Line: 3, Column: 1}}, "^^^"},
	}
	for _, tc := range cases {
		if got := underline(tc.line, tc.span); got != tc.want {
			t.Fatalf("underline(%q, %+v) = %q, want %q", tc.line, tc.span, got, tc.want)
		}
	}
}
