package interpreter

import (
	"fmt"
	"strings"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

// classValue evaluates a type annotation and checks it denotes a class.
func (i *Interpreter) classValue(expr ast.Expression) (*runtime.Value, Outcome, error) {
	v, out, err := i.evaluate(expr)
	if err != nil || out.Abrupt() {
		return nil, out, err
	}
	if err := v.Cast(i.primitives.Class); err != nil {
		return nil, Outcome{}, err
	}
	return v, out, nil
}

// makeFunction closes def over the current scope.
func (i *Interpreter) makeFunction(def *ast.FunctionDefinition) (*runtime.Value, Outcome, error) {
	fn := &runtime.Function{Body: def.Body, Scope: i.scope}
	if def.ID != nil {
		fn.Name = def.ID.Name
	}
	for idx, param := range def.Params {
		if param.Rest && idx != len(def.Params)-1 {
			return nil, Outcome{}, runtime.NewError("Rest parameter %q must be the last parameter.", param.Name.Name)
		}
		p := runtime.Parameter{Name: param.Name.Name, Rest: param.Rest}
		if param.Type != nil {
			cls, out, err := i.classValue(param.Type)
			if err != nil || out.Abrupt() {
				return nil, out, err
			}
			p.Type = cls
		}
		fn.Params = append(fn.Params, p)
	}
	if def.ReturnType != nil {
		cls, out, err := i.classValue(def.ReturnType)
		if err != nil || out.Abrupt() {
			return nil, out, err
		}
		fn.ReturnType = cls
	}
	return i.newValue(i.primitives.Function, fn), Outcome{}, nil
}

func (i *Interpreter) evaluateFunctionDefinition(def *ast.FunctionDefinition) (Outcome, error) {
	fn, out, err := i.makeFunction(def)
	if err != nil || out.Abrupt() {
		return out, err
	}
	ref := i.newConstant(fn)
	if def.ID != nil {
		i.scope.AddVariable(def.ID.Name, ref)
	}
	return normal(ref), nil
}

func (i *Interpreter) evaluateClassDefinition(def *ast.ClassDefinition) (Outcome, error) {
	parent := i.primitives.Object
	if def.Parent != nil {
		cls, out, err := i.classValue(def.Parent)
		if err != nil || out.Abrupt() {
			return out, err
		}
		parent = cls
	}
	name := ""
	if def.ID != nil {
		name = def.ID.Name
	}
	data := runtime.NewClass(name, parent)
	class := i.newValue(i.primitives.Class, data)
	for _, method := range def.Methods {
		fn, out, err := i.makeFunction(method)
		if err != nil || out.Abrupt() {
			return out, err
		}
		data.SetMethod(method.ID.Name, fn)
	}
	for _, static := range def.Statics {
		fn, out, err := i.makeFunction(static)
		if err != nil || out.Abrupt() {
			return out, err
		}
		data.SetStatic(static.ID.Name, i.newConstant(fn))
	}
	ref := i.newConstant(class)
	if def.ID != nil {
		i.scope.AddVariable(def.ID.Name, ref)
	}
	return normal(ref), nil
}

func (i *Interpreter) evaluateGenericDefinition(def *ast.GenericDefinition) (Outcome, error) {
	params := make([]string, len(def.Params))
	for idx, param := range def.Params {
		params[idx] = param.Name
	}
	generic := &runtime.Generic{Params: params, Node: def.Body, Scope: i.scope}
	if def.ID != nil {
		generic.Name = def.ID.Name
	}
	ref := i.newConstant(i.newValue(i.primitives.Generic, generic))
	if def.ID != nil {
		i.scope.AddVariable(def.ID.Name, ref)
	}
	return normal(ref), nil
}

// instantiate evaluates the generic's template in a child of its captured
// scope with each parameter bound to a constant of the argument. Results are
// memoised by argument identity.
func (i *Interpreter) instantiate(value *runtime.Value, generic *runtime.Generic, args []*runtime.Value) (*runtime.Reference, error) {
	if len(args) != len(generic.Params) {
		return nil, runtime.ErrArguments(len(generic.Params), len(args))
	}
	if cached, ok := generic.Lookup(args); ok {
		return i.newConstant(cached), nil
	}
	mark := i.pin(append([]*runtime.Value{value}, args...)...)
	defer i.unpin(mark)

	i.pushFrame(generic.Scope)
	defer i.popFrame()
	for idx, name := range generic.Params {
		i.scope.AddVariable(name, i.newConstant(args[idx]))
	}
	result, out, err := i.evaluate(generic.Node)
	if err != nil {
		return nil, err
	}
	if out.Abrupt() {
		return nil, runtime.ErrLoopControl()
	}
	if class, ok := result.AsClass(); ok && class.Name == "" {
		names := make([]string, len(args))
		for idx, arg := range args {
			names[idx] = i.displayName(arg)
		}
		class.Name = fmt.Sprintf("%s[%s]", generic.Name, strings.Join(names, ", "))
		class.Constructor = &runtime.GenericConstructor{Generic: value, Arguments: append([]*runtime.Value(nil), args...)}
	}
	generic.Instances = append(generic.Instances, &runtime.GenericInstance{
		Arguments: append([]*runtime.Value(nil), args...),
		Value:     result,
	})
	return i.newConstant(result), nil
}

// displayName names a generic argument: classes by name, other values by
// their type.
func (i *Interpreter) displayName(v *runtime.Value) string {
	if class, ok := v.AsClass(); ok {
		return class.Name
	}
	return v.TypeName()
}
