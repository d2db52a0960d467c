package runtime

import (
	"strings"
	"testing"
)

func TestReferenceReadUndefined(t *testing.T) {
	h := NewHeap(0)
	_, object := newTestClasses(h)
	for _, ref := range []*Reference{h.NewVariable(nil, object), h.NewConstant(nil)} {
		if _, err := ref.Read(); err == nil || err.Error() != "RUNTIME ERROR: Cannot read an undefined reference." {
			t.Fatalf("expected undefined error, got %v", err)
		}
	}
}

func TestConstantRejectsSecondWrite(t *testing.T) {
	h := NewHeap(0)
	_, object := newTestClasses(h)
	ref := h.NewConstant(nil)
	if err := ref.Write(h.NewValue(object, Integer(1))); err != nil {
		t.Fatalf("unexpected first write error: %v", err)
	}
	err := ref.Write(h.NewValue(object, Integer(2)))
	if err == nil || err.Error() != "RUNTIME ERROR: Cannot write data into a constant." {
		t.Fatalf("expected constant write error, got %v", err)
	}
	v, _ := ref.Read()
	if n, _ := v.AsInteger(); n != 1 {
		t.Fatalf("constant changed to %d", n)
	}
}

func TestSealedConstantRejectsFirstWrite(t *testing.T) {
	h := NewHeap(0)
	_, object := newTestClasses(h)
	ref := h.NewConstant(nil)
	ref.Seal()
	if err := ref.Write(h.NewValue(object, Integer(1))); err == nil {
		t.Fatalf("expected sealed constant to reject writes")
	}
}

func TestVariableWriteCastsAgainstDeclaredType(t *testing.T) {
	h := NewHeap(0)
	class, object := newTestClasses(h)
	integer := h.NewValue(class, NewClass("Integer", object))
	str := h.NewValue(class, NewClass("String", object))

	ref := h.NewVariable(nil, integer)
	if err := ref.Write(h.NewValue(integer, Integer(4))); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	err := ref.Write(h.NewValue(str, String("x")))
	if err == nil {
		t.Fatalf("expected cast error")
	}
	if !strings.Contains(err.Error(), "Cannot cast a value of the type String to the type Integer.") {
		t.Fatalf("unexpected cast message %q", err.Error())
	}

	loose := h.NewVariable(nil, object)
	if err := loose.Write(h.NewValue(str, String("ok"))); err != nil {
		t.Fatalf("Object-typed variable rejected a String: %v", err)
	}
}

func TestClassMethodLookupWalksParents(t *testing.T) {
	h := NewHeap(0)
	class, object := newTestClasses(h)
	base := h.NewValue(class, NewClass("Base", object))
	derived := h.NewValue(class, NewClass("Derived", base))
	fn := h.NewValue(object, &Function{Name: "greet"})
	base.Data.(*Class).SetMethod("greet", fn)

	got, ok := derived.Data.(*Class).Method("greet")
	if !ok || got != fn {
		t.Fatalf("expected inherited method")
	}
	if !derived.Is(object) || !derived.Is(base) || base.Is(derived) {
		t.Fatalf("unexpected class hierarchy answers")
	}
	instance := h.NewValue(derived, NewObject())
	if _, err := instance.Method("missing"); err == nil || err.Error() != `RUNTIME ERROR: Method "missing" is undefined in the type Derived.` {
		t.Fatalf("unexpected missing-method error %v", err)
	}
}

func TestScopeLookup(t *testing.T) {
	h := NewHeap(0)
	root := h.NewScope(nil)
	child := h.NewScope(root)
	outer := h.NewConstant(nil)
	inner := h.NewConstant(nil)
	root.AddVariable("x", outer)
	child.AddVariable("x", inner)

	if got, _ := child.Lookup("x"); got != inner {
		t.Fatalf("expected shadowing binding")
	}
	if got, _ := root.Lookup("x"); got != outer {
		t.Fatalf("expected outer binding")
	}
	if _, err := child.Lookup("y"); err == nil || err.Error() != `RUNTIME ERROR: Variable "y" is not declared.` {
		t.Fatalf("unexpected undeclared error %v", err)
	}
}
