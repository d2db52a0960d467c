package interpreter

import "lif/interpreter-go/pkg/runtime"

func (i *Interpreter) installFunction() {
	p := &i.primitives
	function := p.Function

	i.method(function, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		return i.constant(i.newString("FUNCTION"))
	}, function)

	i.method(function, "__cl__", func(args []*runtime.Value) (*runtime.Reference, error) {
		values, err := i.elements(args[1])
		if err != nil {
			return nil, err
		}
		return i.call(args[0], values)
	}, function, p.Array)
}

func (i *Interpreter) installMethod() {
	p := &i.primitives
	method := p.Method

	i.method(method, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		return i.constant(i.newString("METHOD"))
	}, method)

	i.method(method, "__cl__", func(args []*runtime.Value) (*runtime.Reference, error) {
		values, err := i.elements(args[1])
		if err != nil {
			return nil, err
		}
		return i.call(args[0], values)
	}, method, p.Array)
}

func (i *Interpreter) installGeneric() {
	p := &i.primitives
	generic := p.Generic

	i.method(generic, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		return i.constant(i.newString("GENERIC"))
	}, generic)

	i.method(generic, "__cn__", func(args []*runtime.Value) (*runtime.Reference, error) {
		name, _ := args[1].AsString()
		method, err := args[0].Method(name)
		if err != nil {
			return nil, err
		}
		return i.constant(i.bind(method, args[0]))
	}, generic, p.String)

	i.method(generic, "__gn__", func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsGeneric()
		values, err := i.elements(args[1])
		if err != nil {
			return nil, err
		}
		return i.instantiate(args[0], data, values)
	}, generic, p.Array)
}
