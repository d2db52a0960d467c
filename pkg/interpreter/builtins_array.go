package interpreter

import (
	"slices"
	"strings"

	"lif/interpreter-go/pkg/runtime"
)

func (i *Interpreter) installArray() {
	p := &i.primitives
	array := p.Array

	i.method(array, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		if !i.enter(args[0]) {
			return i.constant(i.newString("[...]"))
		}
		defer i.leave(args[0])
		data, _ := args[0].AsArray()
		parts := make([]string, 0, len(data.Elements))
		for _, ref := range slices.Clone(data.Elements) {
			v, err := ref.Read()
			if err != nil {
				return nil, err
			}
			s, err := i.stringify(v)
			if err != nil {
				return nil, err
			}
			parts = append(parts, s)
		}
		return i.constant(i.newString("[" + strings.Join(parts, ", ") + "]"))
	}, array)

	// copy is shallow: fresh slots holding the same values.
	i.method(array, "copy", func(args []*runtime.Value) (*runtime.Reference, error) {
		values, err := i.elements(args[0])
		if err != nil {
			return nil, err
		}
		return i.constant(i.newArray(values))
	}, array)

	i.method(array, "append", func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsArray()
		data.Elements = append(data.Elements, i.newVariable(args[1], p.Object))
		return i.undefined, nil
	}, array, nil)

	i.method(array, "prepend", func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsArray()
		data.Elements = slices.Insert(data.Elements, 0, i.newVariable(args[1], p.Object))
		return i.undefined, nil
	}, array, nil)

	i.method(array, "insert", func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsArray()
		index, _ := args[1].AsInteger()
		if index < 0 || index > int64(len(data.Elements)) {
			return nil, runtime.ErrIndex(index, len(data.Elements))
		}
		data.Elements = slices.Insert(data.Elements, int(index), i.newVariable(args[2], p.Object))
		return i.undefined, nil
	}, array, p.Integer, nil)

	i.method(array, "remove", func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsArray()
		index, _ := args[1].AsInteger()
		if index < 0 || index >= int64(len(data.Elements)) {
			return nil, runtime.ErrIndex(index, len(data.Elements))
		}
		data.Elements = slices.Delete(data.Elements, int(index), int(index)+1)
		return i.undefined, nil
	}, array, p.Integer)

	i.method(array, "length", func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsArray()
		return i.constant(i.newInteger(int64(len(data.Elements))))
	}, array)

	index := func(args []*runtime.Value) (*runtime.Reference, error) {
		data, _ := args[0].AsArray()
		keys, err := i.elements(args[1])
		if err != nil {
			return nil, err
		}
		if len(keys) != 1 {
			return nil, runtime.ErrArguments(1, len(keys))
		}
		if err := keys[0].Cast(p.Integer); err != nil {
			return nil, err
		}
		n, _ := keys[0].AsInteger()
		if n < 0 || n >= int64(len(data.Elements)) {
			return nil, runtime.ErrIndex(n, len(data.Elements))
		}
		return data.Elements[n], nil
	}
	i.method(array, "__id__", index, array, array)
	i.method(array, "__gn__", index, array, array)

	i.method(array, "__cn__", func(args []*runtime.Value) (*runtime.Reference, error) {
		name, _ := args[1].AsString()
		method, err := args[0].Method(name)
		if err != nil {
			return nil, err
		}
		return i.constant(i.bind(method, args[0]))
	}, array, p.String)
}
