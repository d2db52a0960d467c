package interpreter

import (
	"bytes"
	"testing"

	"lif/interpreter-go/pkg/ast"
)

func TestCollectKeepsReachableArray(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	ref := mustRun(t, interp,
		ast.Let("a", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.CallName("collect"),
		ast.CallMember(ast.ID("a"), "append", ast.Int(4)),
		ast.ID("a"),
	)
	if got := render(t, interp, ref); got != "[1, 2, 3, 4]" {
		t.Fatalf("expected [1, 2, 3, 4], got %q", got)
	}
}

func TestCollectFreesUnreachableObjects(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	mustRun(t, interp,
		ast.Let("a", ast.Arr(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.Assign(ast.ID("a"), ast.Int(0)),
	)
	before := interp.Heap().Live()
	stats := interp.Collect()
	if stats.Total() == 0 {
		t.Fatalf("expected the discarded array to be reclaimed")
	}
	after := interp.Heap().Live()
	if after.Total() != before.Total()-stats.Total() {
		t.Fatalf("live counts inconsistent: before %+v, freed %+v, after %+v", before, stats, after)
	}
	// A second collection finds nothing new.
	if again := interp.Collect(); again.Total() != 0 {
		t.Fatalf("expected a stable heap, freed %+v", again)
	}
}

func TestLowThresholdCollectsDuringEvaluation(t *testing.T) {
	var stdout bytes.Buffer
	interp := New(Config{Stdout: &stdout, Stderr: &stdout, Stdin: &bytes.Buffer{}, GCThreshold: 16})
	ref := mustRun(t, interp,
		ast.Class("Node", nil),
		ast.Let("items", ast.Arr()),
		ast.Let("i", ast.Int(0)),
		ast.While(ast.Bin("<", ast.ID("i"), ast.Int(50)),
			ast.Let("n", ast.CallName("new", ast.ID("Node"))),
			ast.Assign(ast.Member(ast.ID("n"), "value"), ast.Bin("*", ast.ID("i"), ast.ID("i"))),
			ast.CallMember(ast.ID("items"), "append", ast.ID("n")),
			ast.AssignOp(ast.AssignmentAdd, ast.ID("i"), ast.Int(1)),
		),
		ast.Member(ast.Index(ast.ID("items"), ast.Int(49)), "value"),
	)
	if got := render(t, interp, ref); got != "2401" {
		t.Fatalf("expected 2401, got %q", got)
	}
	if interp.Heap().Collections() == 0 {
		t.Fatalf("expected collections with a threshold of 16")
	}
	items, err := interp.Scope().Lookup("items")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	array, _ := items.Value().AsArray()
	for idx, elem := range array.Elements {
		if !interp.Heap().ContainsReference(elem) || !interp.Heap().ContainsValue(elem.Value()) {
			t.Fatalf("element %d was reclaimed while reachable", idx)
		}
	}
}

func TestCollectReturnsFreedCount(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	mustRun(t, interp, ast.Arr(ast.Int(1), ast.Int(2)))
	ref := mustRun(t, interp, ast.CallName("collect"))
	v, err := ref.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := v.AsInteger(); !ok || n <= 0 {
		t.Fatalf("expected a positive freed count, got %v", v.Data)
	}
}

func TestForKeepsRemovedElementsAlive(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	mustRun(t, interp,
		ast.Let("a", ast.Arr(ast.Arr(ast.Int(10)), ast.Arr(ast.Int(20)))),
		ast.Let("held", ast.Int(0)),
		ast.For("x", ast.ID("a"),
			ast.CallMember(ast.ID("a"), "remove",
				ast.Bin("-", ast.CallMember(ast.ID("a"), "length"), ast.Int(1))),
			ast.CallName("collect"),
			ast.Assign(ast.ID("held"), ast.ID("x")),
		),
	)
	held, err := interp.Scope().Lookup("held")
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	if !interp.Heap().ContainsValue(held.Value()) {
		t.Fatalf("the element bound by the loop was reclaimed")
	}
	array, ok := held.Value().AsArray()
	if !ok || len(array.Elements) != 1 || !interp.Heap().ContainsReference(array.Elements[0]) {
		t.Fatalf("unexpected held value %v", held.Value().Data)
	}
	if got := render(t, interp, held); got != "[20]" {
		t.Fatalf("expected [20], got %q", got)
	}
}

func TestLoopConditionTemporariesAreReleased(t *testing.T) {
	interp, _, _ := newTestInterpreter()
	interp.pushRegistry()
	defer interp.popRegistry()
	top := interp.top()
	cond := ast.Bin("<", ast.Index(ast.Arr(ast.Int(1), ast.Int(2)), ast.Int(0)), ast.Int(3))
	ok, out, err := interp.condition(cond)
	if err != nil || out.Abrupt() || !ok {
		t.Fatalf("unexpected condition result %v %v %v", ok, out.Control, err)
	}
	if len(top.values) != 0 || len(top.references) != 0 || len(top.scopes) != 0 {
		t.Fatalf("condition left %d values and %d references registered", len(top.values), len(top.references))
	}
}

func TestWhileConditionGarbageIsCollectedDuringLoop(t *testing.T) {
	var stdout bytes.Buffer
	interp := New(Config{Stdout: &stdout, Stderr: &stdout, Stdin: &bytes.Buffer{}, GCThreshold: 1 << 20})
	padding := []ast.Expression{ast.ID("i")}
	for range 10 {
		padding = append(padding, ast.Int(0))
	}
	mustRun(t, interp,
		ast.Let("i", ast.Int(0)),
		ast.Let("freed", ast.Int(0)),
		ast.While(ast.Bin("<", ast.Index(ast.Arr(padding...), ast.Int(0)), ast.Int(20)),
			ast.AssignOp(ast.AssignmentAdd, ast.ID("i"), ast.Int(1)),
			ast.Assign(ast.ID("freed"), ast.CallName("collect")),
		),
	)
	// Each test builds an eleven element array that is unreachable by the
	// time the body collects.
	if got := lookupInteger(t, interp, "freed"); got < 20 {
		t.Fatalf("expected the previous condition's array to be freed, collect freed %d", got)
	}
}
