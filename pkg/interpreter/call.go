package interpreter

import (
	"lif/interpreter-go/pkg/runtime"
)

// callMethod resolves name on the receiver's class and invokes it with the
// receiver bound.
func (i *Interpreter) callMethod(receiver *runtime.Value, name string, args ...*runtime.Value) (*runtime.Reference, error) {
	method, err := receiver.Method(name)
	if err != nil {
		return nil, err
	}
	return i.invoke(method, receiver, args)
}

// call invokes a callable value without a receiver. Bound methods supply
// their own; any other value is called through its __cl__ method.
func (i *Interpreter) call(callee *runtime.Value, args []*runtime.Value) (*runtime.Reference, error) {
	return i.invoke(callee, nil, args)
}

func (i *Interpreter) invoke(callee *runtime.Value, receiver *runtime.Value, args []*runtime.Value) (*runtime.Reference, error) {
	switch data := callee.Data.(type) {
	case *runtime.Function:
		return i.callFunction(callee, data, receiver, args)
	case *runtime.Method:
		return i.invoke(data.Function, data.Receiver, args)
	default:
		return i.callMethod(callee, "__cl__", i.newArray(args))
	}
}

func (i *Interpreter) callFunction(callee *runtime.Value, fn *runtime.Function, receiver *runtime.Value, args []*runtime.Value) (*runtime.Reference, error) {
	mark := i.pin(append([]*runtime.Value{callee, receiver}, args...)...)
	defer i.unpin(mark)

	if fn.Native != nil {
		if receiver != nil {
			args = append([]*runtime.Value{receiver}, args...)
		}
		if err := i.checkArguments(fn, args); err != nil {
			return nil, err
		}
		ref, err := fn.Native(args)
		if err != nil {
			return nil, err
		}
		if ref == nil {
			ref = i.undefined
		}
		return ref, nil
	}

	if err := i.checkArguments(fn, args); err != nil {
		return nil, err
	}
	i.pushFrame(fn.Scope)
	defer i.popFrame()
	if receiver != nil {
		i.scope.AddVariable("self", i.newConstant(receiver))
	}
	if err := i.bindParameters(fn, args); err != nil {
		return nil, err
	}

	out, err := i.Execute(fn.Body)
	if err != nil {
		return nil, err
	}
	switch out.Control {
	case Break, Continue:
		return nil, runtime.ErrLoopControl()
	case Normal:
		return i.undefined, nil
	}
	result := out.Ref
	if fn.ReturnType != nil && result.Defined() {
		if err := result.Value().Cast(fn.ReturnType); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// checkArguments enforces arity and declared parameter types. Extra
// arguments are accepted only by a trailing rest parameter.
func (i *Interpreter) checkArguments(fn *runtime.Function, args []*runtime.Value) error {
	arity := fn.Arity()
	if len(args) < arity || (!fn.Variadic() && len(args) != arity) {
		return runtime.ErrArguments(arity, len(args))
	}
	for idx, param := range fn.Params {
		if param.Rest {
			for _, arg := range args[idx:] {
				if err := arg.Cast(param.Type); err != nil {
					return err
				}
			}
			break
		}
		if err := args[idx].Cast(param.Type); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) bindParameters(fn *runtime.Function, args []*runtime.Value) error {
	for idx, param := range fn.Params {
		typ := param.Type
		if typ == nil {
			typ = i.primitives.Object
		}
		var v *runtime.Value
		if param.Rest {
			typ = i.primitives.Array
			v = i.newArray(args[idx:])
		} else {
			v = args[idx]
		}
		ref := i.newVariable(nil, typ)
		if err := ref.Write(v); err != nil {
			return err
		}
		i.scope.AddVariable(param.Name, ref)
	}
	return nil
}

// elements reads every element of an argument array.
func (i *Interpreter) elements(array *runtime.Value) ([]*runtime.Value, error) {
	data, ok := array.AsArray()
	if !ok {
		return nil, runtime.ErrCast(array, i.primitives.Array)
	}
	values := make([]*runtime.Value, len(data.Elements))
	for idx, ref := range data.Elements {
		v, err := ref.Read()
		if err != nil {
			return nil, err
		}
		values[idx] = v
	}
	return values, nil
}
