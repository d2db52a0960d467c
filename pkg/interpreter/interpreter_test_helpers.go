package interpreter

import (
	"bytes"
	"testing"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

func newTestInterpreter() (*Interpreter, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	interp := New(Config{Stdout: &stdout, Stderr: &stderr, Stdin: &bytes.Buffer{}})
	return interp, &stdout, &stderr
}

func mustRun(t *testing.T, interp *Interpreter, statements ...ast.Statement) *runtime.Reference {
	t.Helper()
	ref, err := interp.Run(ast.Prog(statements...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ref
}

func runError(t *testing.T, interp *Interpreter, statements ...ast.Statement) error {
	t.Helper()
	_, err := interp.Run(ast.Prog(statements...))
	if err == nil {
		t.Fatalf("expected evaluation to fail")
	}
	return err
}

func render(t *testing.T, interp *Interpreter, ref *runtime.Reference) string {
	t.Helper()
	s, err := interp.Stringify(ref)
	if err != nil {
		t.Fatalf("stringify failed: %v", err)
	}
	return s
}

func lookupInteger(t *testing.T, interp *Interpreter, name string) int64 {
	t.Helper()
	ref, err := interp.Scope().Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	v, err := ref.Read()
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	n, ok := v.AsInteger()
	if !ok {
		t.Fatalf("%s is a %s, not an Integer", name, v.TypeName())
	}
	return n
}
