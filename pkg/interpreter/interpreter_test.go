package interpreter

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"lif/interpreter-go/pkg/ast"
)

func TestEvaluateLiterals(t *testing.T) {
	cases := []struct {
		name string
		node ast.Expression
		want string
	}{
		{"integer", ast.Int(42), "42"},
		{"negative", ast.Un(ast.UnaryNegate, ast.Int(7)), "-7"},
		{"string", ast.Str("hello"), "hello"},
		{"boolean", ast.Bool(true), "true"},
		{"array", ast.Arr(ast.Int(1), ast.Str("a"), ast.Bool(false)), "[1, a, false]"},
		{"empty array", ast.Arr(), "[]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			interp, _, _ := newTestInterpreter()
			ref := mustRun(t, interp, tc.node)
			if got := render(t, interp, ref); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEvaluateArithmeticAndComparison(t *testing.T) {
	cases := []struct {
		name string
		node ast.Expression
		want string
	}{
		{"precedence", ast.Bin("+", ast.Int(1), ast.Bin("*", ast.Int(2), ast.Int(3))), "7"},
		{"division", ast.Bin("/", ast.Int(7), ast.Int(2)), "3"},
		{"remainder", ast.Bin("%", ast.Int(7), ast.Int(2)), "1"},
		{"bitwise", ast.Bin("|", ast.Bin("&", ast.Int(6), ast.Int(3)), ast.Int(8)), "10"},
		{"shift", ast.Bin("<<", ast.Int(1), ast.Int(4)), "16"},
		{"complement", ast.Un(ast.UnaryComplement, ast.Int(0)), "-1"},
		{"less", ast.Bin("<", ast.Int(1), ast.Int(2)), "true"},
		{"greater fallback", ast.Bin(">", ast.Int(1), ast.Int(2)), "false"},
		{"less equal fallback", ast.Bin("<=", ast.Int(2), ast.Int(2)), "true"},
		{"greater equal fallback", ast.Bin(">=", ast.Int(1), ast.Int(2)), "false"},
		{"not equal fallback", ast.Bin("!=", ast.Int(1), ast.Int(2)), "true"},
		{"string concat", ast.Bin("+", ast.Str("n="), ast.Int(3)), "n=3"},
		{"string less", ast.Bin("<", ast.Str("a"), ast.Str("b")), "true"},
		{"not", ast.Un(ast.UnaryNot, ast.Bool(true)), "false"},
		{"and short circuits", ast.Bin("&&", ast.Bool(false), ast.ID("missing")), "false"},
		{"or short circuits", ast.Bin("||", ast.Bool(true), ast.ID("missing")), "true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			interp, _, _ := newTestInterpreter()
			ref := mustRun(t, interp, tc.node)
			if got := render(t, interp, ref); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEvaluateBlockCreatesScope(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.Let("x", ast.Str("outer")),
		ast.Block(
			ast.Let("x", ast.Str("inner")),
			ast.ID("x"),
		),
	)
	if got := render(t, interp, ref); got != "inner" {
		t.Fatalf("unexpected block result %q", got)
	}
	outer, err := interp.Scope().Lookup("x")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if got := render(t, interp, outer); got != "outer" {
		t.Fatalf("inner declaration leaked: %q", got)
	}
}

func TestCompoundAssignment(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	mustRun(t, interp,
		ast.Let("x", ast.Int(5)),
		ast.AssignOp(ast.AssignmentAdd, ast.ID("x"), ast.Int(3)),
		ast.AssignOp(ast.AssignmentMul, ast.ID("x"), ast.Int(2)),
		ast.AssignOp(ast.AssignmentMod, ast.ID("x"), ast.Int(5)),
	)
	if got := lookupInteger(t, interp, "x"); got != 1 {
		t.Fatalf("expected x == 1, got %d", got)
	}
}

func TestTypedLetRejectsOtherClasses(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	err := runError(t, interp,
		ast.LetTyped("n", ast.ID("Integer"), ast.Int(1)),
		ast.Assign(ast.ID("n"), ast.Str("text")),
	)
	if err.Error() != "RUNTIME ERROR: Cannot cast a value of the type String to the type Integer." {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestPrintWritesToStdout(t *testing.T) {
	interp, stdout, _ := newTestInterpreter()
	mustRun(t, interp,
		ast.CallName("print", ast.Str("a"), ast.Int(1), ast.Arr(ast.Int(2))),
		ast.CallName("print", ast.Str("b")),
	)
	if got := stdout.String(); got != "a 1 [2]\nb\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMethodCallOnInstance(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.Class("C", nil, ast.Fn("f", nil, ast.Ret(ast.Int(3)))),
		ast.CallMember(ast.CallName("new", ast.ID("C")), "f"),
	)
	if got := render(t, interp, ref); got != "3" {
		t.Fatalf("expected 3, got %q", got)
	}
}

func TestMethodsSeeSelfAndInheritance(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.Class("Base", nil,
			ast.Fn("double", nil, ast.Ret(ast.Bin("*", ast.Member(ast.ID("self"), "n"), ast.Int(2)))),
		),
		ast.Class("Derived", ast.ID("Base"),
			ast.Fn("set", []*ast.FunctionParameter{ast.Param("v")},
				ast.Assign(ast.Member(ast.ID("self"), "n"), ast.ID("v")),
			),
		),
		ast.Let("d", ast.CallName("new", ast.ID("Derived"))),
		ast.CallMember(ast.ID("d"), "set", ast.Int(21)),
		ast.CallMember(ast.ID("d"), "double"),
	)
	if got := render(t, interp, ref); got != "42" {
		t.Fatalf("expected 42, got %q", got)
	}
	d, _ := interp.Scope().Lookup("d")
	if got := render(t, interp, d); got != "{n: 21}" {
		t.Fatalf("unexpected instance rendering %q", got)
	}
}

func TestStaticConstructor(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ctor := ast.Fn("__init__", []*ast.FunctionParameter{ast.Param("v")},
		ast.Let("o", ast.CallName("new", ast.ID("Point"))),
		ast.Assign(ast.Member(ast.ID("o"), "x"), ast.ID("v")),
		ast.Ret(ast.ID("o")),
	)
	class := ast.NewClassDefinition(ast.ID("Point"), nil, nil, []*ast.FunctionDefinition{ctor})
	ref := mustRun(t, interp,
		class,
		ast.Member(ast.CallName("Point", ast.Int(4)), "x"),
	)
	if got := render(t, interp, ref); got != "4" {
		t.Fatalf("expected 4, got %q", got)
	}
}

func TestClassWithoutConstructor(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	err := runError(t, interp,
		ast.Class("Empty", nil),
		ast.CallName("Empty"),
	)
	if err.Error() != "RUNTIME ERROR: Class Empty has no default constructor." {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestChainAutoVivifiesIdenticalReference(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	mustRun(t, interp,
		ast.Class("C", nil),
		ast.Let("o", ast.CallName("new", ast.ID("C"))),
	)
	first, err := interp.Execute(ast.Member(ast.ID("o"), "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := interp.Execute(ast.Member(ast.ID("o"), "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Ref != second.Ref {
		t.Fatalf("expected the same attribute reference on repeated access")
	}
	if first.Ref.Defined() {
		t.Fatalf("fresh attribute should be undefined")
	}
}

func TestClosuresCaptureDefiningScope(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.Fn("counter", nil,
			ast.Let("n", ast.Int(0)),
			ast.Ret(ast.Fn("", nil,
				ast.AssignOp(ast.AssignmentAdd, ast.ID("n"), ast.Int(1)),
				ast.Ret(ast.ID("n")),
			)),
		),
		ast.Let("next", ast.CallName("counter")),
		ast.CallName("next"),
		ast.CallName("collect"),
		ast.CallName("next"),
	)
	if got := render(t, interp, ref); got != "2" {
		t.Fatalf("expected 2, got %q", got)
	}
}

func TestRestParameterCollectsArguments(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.Fn("f", []*ast.FunctionParameter{ast.Param("first"), ast.RestParam("others")},
			ast.Ret(ast.Arr(ast.ID("first"), ast.ID("others"))),
		),
		ast.CallName("f", ast.Int(1), ast.Int(2), ast.Int(3)),
	)
	if got := render(t, interp, ref); got != "[1, [2, 3]]" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestArrayMethods(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.Let("a", ast.Arr(ast.Int(1), ast.Int(2))),
		ast.CallMember(ast.ID("a"), "append", ast.Int(3)),
		ast.CallMember(ast.ID("a"), "prepend", ast.Int(0)),
		ast.CallMember(ast.ID("a"), "insert", ast.Int(2), ast.Int(9)),
		ast.CallMember(ast.ID("a"), "remove", ast.Int(1)),
		ast.Assign(ast.Index(ast.ID("a"), ast.Int(0)), ast.Int(7)),
		ast.Let("b", ast.CallMember(ast.ID("a"), "copy")),
		ast.Assign(ast.Index(ast.ID("b"), ast.Int(0)), ast.Int(8)),
		ast.Arr(ast.ID("a"), ast.ID("b"), ast.CallMember(ast.ID("a"), "length")),
	)
	if got := render(t, interp, ref); got != "[[7, 9, 2, 3], [8, 9, 2, 3], 4]" {
		t.Fatalf("unexpected arrays %q", got)
	}
}

func TestArrayIndexOutOfBounds(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	err := runError(t, interp, ast.Index(ast.Arr(ast.Int(1)), ast.Int(3)))
	if err.Error() != "RUNTIME ERROR: Index 3 out of bounds for length 1." {
		t.Fatalf("unexpected error %q", err.Error())
	}
}

func TestDeterministicEvaluation(t *testing.T) {
	program := func() []ast.Statement {
		return []ast.Statement{
			ast.Class("P", nil),
			ast.Let("p", ast.CallName("new", ast.ID("P"))),
			ast.Assign(ast.Member(ast.ID("p"), "b"), ast.Int(2)),
			ast.Assign(ast.Member(ast.ID("p"), "a"), ast.Arr(ast.Int(1), ast.Str("x"))),
			ast.Let("i", ast.Int(0)),
			ast.Arr(ast.ID("p"), ast.While(ast.Bin("<", ast.ID("i"), ast.Int(3)),
				ast.AssignOp(ast.AssignmentAdd, ast.ID("i"), ast.Int(1)),
			)),
		}
	}
	first, _, _ := newTestInterpreter()
	second, _, _ := newTestInterpreter()
	a := render(t, first, mustRun(t, first, program()...))
	b := render(t, second, mustRun(t, second, program()...))
	if a != b {
		t.Fatalf("runs differ: %q vs %q", a, b)
	}
	if a != "[{a: [1, x], b: 2}, [1, 2, 3]]" {
		t.Fatalf("unexpected result %q", a)
	}
}

func TestFileReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.CallMember(ast.ID("File"), "write", ast.Str(path), ast.Arr(ast.Int(1), ast.Int(2))),
		ast.CallMember(ast.ID("File"), "read", ast.Str(path)),
	)
	if got := render(t, interp, ref); got != "[1, 2]" {
		t.Fatalf("unexpected file contents %q", got)
	}
}

func TestInputReadsLines(t *testing.T) {
	interp := New(Config{Stdout: io.Discard, Stderr: io.Discard, Stdin: strings.NewReader("first\nsecond")})
	ref := mustRun(t, interp, ast.Arr(ast.CallName("input"), ast.CallName("input")))
	if got := render(t, interp, ref); got != "[first, second]" {
		t.Fatalf("unexpected input %q", got)
	}
}
