package interpreter

import (
	"errors"
	"io"
	"strings"

	"lif/interpreter-go/pkg/runtime"
)

// bootstrap creates the builtin classes, installs their methods and returns
// the global scope binding them together with the global functions.
func (i *Interpreter) bootstrap() *runtime.Scope {
	p := &i.primitives
	p.Class = i.newValue(nil, nil)
	p.Class.Class = p.Class
	p.Object = i.newValue(p.Class, runtime.NewClass("Object", nil))
	p.Class.Data = runtime.NewClass("Class", p.Object)
	p.Array = i.newClass("Array", p.Object)
	p.Boolean = i.newClass("Boolean", p.Object)
	p.File = i.newClass("File", p.Object)
	p.Function = i.newClass("Function", p.Object)
	p.Generic = i.newClass("Generic", p.Object)
	p.Integer = i.newClass("Integer", p.Object)
	p.Method = i.newClass("Method", p.Object)
	p.String = i.newClass("String", p.Object)

	i.installObject()
	i.installClass()
	i.installArray()
	i.installBoolean()
	i.installInteger()
	i.installString()
	i.installFunction()
	i.installMethod()
	i.installGeneric()
	i.installFile()

	global := i.newScope(nil)
	for _, cls := range p.all() {
		global.AddVariable(runtime.ClassName(cls), i.newConstant(cls))
	}
	i.installGlobals(global)
	return global
}

func (i *Interpreter) newClass(name string, parent *runtime.Value) *runtime.Value {
	return i.newValue(i.primitives.Class, runtime.NewClass(name, parent))
}

// native wraps impl in a Function value. Params of natives installed as
// methods include the receiver.
func (i *Interpreter) native(name string, params []runtime.Parameter, impl runtime.NativeFunc) *runtime.Value {
	return i.newValue(i.primitives.Function, &runtime.Function{Name: name, Params: params, Native: i.checked(params, impl)})
}

// checked makes impl fail with a cast error when an argument is an instance
// of a payload class without the payload, so natives can read it unchecked.
func (i *Interpreter) checked(params []runtime.Parameter, impl runtime.NativeFunc) runtime.NativeFunc {
	return func(args []*runtime.Value) (*runtime.Reference, error) {
		for idx, arg := range args {
			var typ *runtime.Value
			switch last := len(params) - 1; {
			case idx <= last && !params[idx].Rest:
				typ = params[idx].Type
			case last >= 0 && params[last].Rest:
				typ = params[last].Type
			}
			if typ != nil && !i.holdsPayload(typ, arg) {
				return nil, runtime.ErrCast(arg, typ)
			}
		}
		return impl(args)
	}
}

// payloadClasses lists the builtin classes whose methods read native data
// from their instances.
func (p *Primitives) payloadClasses() []*runtime.Value {
	return []*runtime.Value{p.Array, p.Boolean, p.Class, p.Function, p.Generic, p.Integer, p.Method, p.String}
}

// holdsPayload reports whether v carries the data the methods of cls read.
// Classes without a native payload accept any value.
func (i *Interpreter) holdsPayload(cls *runtime.Value, v *runtime.Value) bool {
	p := &i.primitives
	var ok bool
	switch cls {
	case p.Array:
		_, ok = v.AsArray()
	case p.Boolean:
		_, ok = v.AsBoolean()
	case p.Class:
		_, ok = v.AsClass()
	case p.Function:
		_, ok = v.AsFunction()
	case p.Generic:
		_, ok = v.AsGeneric()
	case p.Integer:
		_, ok = v.AsInteger()
	case p.Method:
		_, ok = v.AsMethod()
	case p.String:
		_, ok = v.AsString()
	default:
		return true
	}
	return ok
}

// instantiable fails when cls is or extends a payload class: new only
// builds plain objects.
func (i *Interpreter) instantiable(cls *runtime.Value) error {
	for _, builtin := range i.primitives.payloadClasses() {
		if cls.Is(builtin) {
			return runtime.ErrBuiltinInstance(cls, builtin)
		}
	}
	return nil
}

// typed builds positional parameters; a nil type accepts any value.
func typed(types ...*runtime.Value) []runtime.Parameter {
	params := make([]runtime.Parameter, len(types))
	for idx, typ := range types {
		params[idx] = runtime.Parameter{Name: "arg", Type: typ}
	}
	return params
}

func rest(params []runtime.Parameter, typ *runtime.Value) []runtime.Parameter {
	return append(params, runtime.Parameter{Name: "rest", Type: typ, Rest: true})
}

// method installs a native method on cls; types lists the receiver type
// first.
func (i *Interpreter) method(cls *runtime.Value, name string, impl runtime.NativeFunc, types ...*runtime.Value) {
	data, _ := cls.AsClass()
	data.SetMethod(name, i.native(name, typed(types...), impl))
}

func (i *Interpreter) static(cls *runtime.Value, name string, impl runtime.NativeFunc, types ...*runtime.Value) {
	data, _ := cls.AsClass()
	data.SetStatic(name, i.newConstant(i.native(name, typed(types...), impl)))
}

func (i *Interpreter) constant(v *runtime.Value) (*runtime.Reference, error) {
	return i.newConstant(v), nil
}

// truth reads a Boolean result of a dispatched method.
func (i *Interpreter) truth(ref *runtime.Reference, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	v, err := ref.Read()
	if err != nil {
		return false, err
	}
	if err := v.Cast(i.primitives.Boolean); err != nil {
		return false, err
	}
	b, _ := v.AsBoolean()
	return b, nil
}

func (i *Interpreter) bind(fn *runtime.Value, receiver *runtime.Value) *runtime.Value {
	return i.newValue(i.primitives.Method, &runtime.Method{Function: fn, Receiver: receiver})
}

func (i *Interpreter) installGlobals(global *runtime.Scope) {
	p := &i.primitives
	define := func(name string, params []runtime.Parameter, impl runtime.NativeFunc) {
		global.AddVariable(name, i.newConstant(i.native(name, params, impl)))
	}

	define("print", rest(nil, nil), func(args []*runtime.Value) (*runtime.Reference, error) {
		parts := make([]string, len(args))
		for idx, arg := range args {
			s, err := i.stringify(arg)
			if err != nil {
				return nil, err
			}
			parts[idx] = s
		}
		if _, err := io.WriteString(i.stdout, strings.Join(parts, " ")+"\n"); err != nil {
			return nil, runtime.NewError("Cannot write to the output: %v.", err)
		}
		return i.undefined, nil
	})

	define("assert", typed(p.Boolean), func(args []*runtime.Value) (*runtime.Reference, error) {
		if ok, _ := args[0].AsBoolean(); !ok {
			return nil, &runtime.Exit{Code: 2, Message: "assertion failed"}
		}
		return i.undefined, nil
	})

	define("error", typed(nil), func(args []*runtime.Value) (*runtime.Reference, error) {
		message, err := i.stringify(args[0])
		if err != nil {
			return nil, err
		}
		return nil, &runtime.Exit{Code: 1, Message: message}
	})

	define("exit", rest(nil, p.Integer), func(args []*runtime.Value) (*runtime.Reference, error) {
		code := int64(0)
		if len(args) > 1 {
			return nil, runtime.ErrArguments(1, len(args))
		}
		if len(args) == 1 {
			code, _ = args[0].AsInteger()
		}
		return nil, &runtime.Exit{Code: int(code)}
	})

	define("new", typed(p.Class), func(args []*runtime.Value) (*runtime.Reference, error) {
		if err := i.instantiable(args[0]); err != nil {
			return nil, err
		}
		return i.constant(i.newValue(args[0], runtime.NewObject()))
	})

	define("collect", nil, func([]*runtime.Value) (*runtime.Reference, error) {
		stats := i.Collect()
		return i.constant(i.newInteger(int64(stats.Total())))
	})

	define("input", nil, func([]*runtime.Value) (*runtime.Reference, error) {
		line, err := i.stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, runtime.NewError("Cannot read the input: %v.", err)
		}
		if err != nil && line == "" {
			return i.undefined, nil
		}
		line = strings.TrimRight(line, "\r\n")
		return i.constant(i.newString(line))
	})
}
