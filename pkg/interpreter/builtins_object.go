package interpreter

import (
	"strings"

	"lif/interpreter-go/pkg/runtime"
)

func (i *Interpreter) installObject() {
	p := &i.primitives
	object := p.Object

	i.method(object, "==", func(args []*runtime.Value) (*runtime.Reference, error) {
		return i.constant(i.newBoolean(args[0] == args[1]))
	}, object, object)

	i.method(object, "!=", func(args []*runtime.Value) (*runtime.Reference, error) {
		eq, err := i.truth(i.callMethod(args[0], "==", args[1]))
		if err != nil {
			return nil, err
		}
		return i.constant(i.newBoolean(!eq))
	}, object, object)

	i.method(object, ">", func(args []*runtime.Value) (*runtime.Reference, error) {
		lt, eq, err := i.order(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return i.constant(i.newBoolean(!lt && !eq))
	}, object, object)

	i.method(object, "<=", func(args []*runtime.Value) (*runtime.Reference, error) {
		lt, eq, err := i.order(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return i.constant(i.newBoolean(lt || eq))
	}, object, object)

	i.method(object, ">=", func(args []*runtime.Value) (*runtime.Reference, error) {
		lt, err := i.truth(i.callMethod(args[0], "<", args[1]))
		if err != nil {
			return nil, err
		}
		return i.constant(i.newBoolean(!lt))
	}, object, object)

	i.method(object, "__cn__", func(args []*runtime.Value) (*runtime.Reference, error) {
		this := args[0]
		name, _ := args[1].AsString()
		if method, err := this.Method(name); err == nil {
			return i.constant(i.bind(method, this))
		}
		instance, ok := this.AsObject()
		if !ok {
			return nil, runtime.ErrMissingMethod()
		}
		if ref, ok := instance.Attribute(name); ok {
			return ref, nil
		}
		ref := i.newVariable(nil, p.Object)
		instance.SetAttribute(name, ref)
		return ref, nil
	}, object, p.String)

	i.method(object, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		s, err := i.describeObject(args[0])
		if err != nil {
			return nil, err
		}
		return i.constant(i.newString(s))
	}, object)

	i.method(object, "__sstr__", func(args []*runtime.Value) (*runtime.Reference, error) {
		return i.callMethod(args[0], "to_string")
	}, object)
}

// order dispatches < and == for the comparison fallbacks.
func (i *Interpreter) order(left, right *runtime.Value) (lt bool, eq bool, err error) {
	if lt, err = i.truth(i.callMethod(left, "<", right)); err != nil {
		return false, false, err
	}
	if eq, err = i.truth(i.callMethod(left, "==", right)); err != nil {
		return false, false, err
	}
	return lt, eq, nil
}

// describeObject renders instances as {name: value, ...} in attribute name
// order; any other value falls back to its type name.
func (i *Interpreter) describeObject(v *runtime.Value) (string, error) {
	instance, ok := v.AsObject()
	if !ok {
		return v.TypeName(), nil
	}
	if !i.enter(v) {
		return "{...}", nil
	}
	defer i.leave(v)
	var b strings.Builder
	b.WriteString("{")
	first := true
	for _, name := range instance.AttributeNames() {
		ref, _ := instance.Attribute(name)
		if !ref.Defined() {
			continue
		}
		s, err := i.stringify(ref.Value())
		if err != nil {
			return "", err
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(s)
	}
	b.WriteString("}")
	return b.String(), nil
}

func (i *Interpreter) installClass() {
	p := &i.primitives
	class := p.Class

	sstr := func(args []*runtime.Value) (*runtime.Reference, error) {
		return i.constant(i.newString(runtime.ClassName(args[0])))
	}
	i.method(class, "to_string", sstr, class)
	i.method(class, "__sstr__", sstr, class)

	i.method(class, "__cn__", func(args []*runtime.Value) (*runtime.Reference, error) {
		this := args[0]
		name, _ := args[1].AsString()
		if method, err := this.Method(name); err == nil {
			return i.constant(i.bind(method, this))
		}
		data, _ := this.AsClass()
		if ref, ok := data.Static(name); ok {
			return ref, nil
		}
		ref := i.newVariable(nil, p.Object)
		data.SetStatic(name, ref)
		return ref, nil
	}, class, p.String)

	i.method(class, "__cl__", func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsClass()
		ctor, ok := data.Static("__init__")
		if !ok {
			return nil, runtime.ErrNoConstructor(args[0])
		}
		fn, err := ctor.Read()
		if err != nil {
			return nil, err
		}
		values, err := i.elements(args[1])
		if err != nil {
			return nil, err
		}
		return i.call(fn, values)
	}, class, p.Array)
}
