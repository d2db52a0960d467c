package interpreter

import (
	"strconv"
	"unicode/utf8"

	"lif/interpreter-go/pkg/runtime"
)

func (i *Interpreter) installBoolean() {
	boolean := i.primitives.Boolean

	i.method(boolean, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		b, _ := args[0].AsBoolean()
		return i.constant(i.newString(strconv.FormatBool(b)))
	}, boolean)

	i.method(boolean, "==", func(args []*runtime.Value) (*runtime.Reference, error) {
		left, _ := args[0].AsBoolean()
		right, _ := args[1].AsBoolean()
		return i.constant(i.newBoolean(left == right))
	}, boolean, boolean)

	i.method(boolean, "__not__", func(args []*runtime.Value) (*runtime.Reference, error) {
		b, _ := args[0].AsBoolean()
		return i.constant(i.newBoolean(!b))
	}, boolean)
}

func (i *Interpreter) installInteger() {
	integer := i.primitives.Integer

	binary := func(name string, op func(a, b int64) (*runtime.Value, error)) {
		i.method(integer, name, func(args []*runtime.Value) (*runtime.Reference, error) {
			a, _ := args[0].AsInteger()
			b, _ := args[1].AsInteger()
			v, err := op(a, b)
			if err != nil {
				return nil, err
			}
			return i.constant(v)
		}, integer, integer)
	}
	unary := func(name string, op func(a int64) int64) {
		i.method(integer, name, func(args []*runtime.Value) (*runtime.Reference, error) {
			a, _ := args[0].AsInteger()
			return i.constant(i.newInteger(op(a)))
		}, integer)
	}
	arith := func(name string, op func(a, b int64) int64) {
		binary(name, func(a, b int64) (*runtime.Value, error) {
			return i.newInteger(op(a, b)), nil
		})
	}

	i.method(integer, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		n, _ := args[0].AsInteger()
		return i.constant(i.newString(strconv.FormatInt(n, 10)))
	}, integer)

	binary("==", func(a, b int64) (*runtime.Value, error) { return i.newBoolean(a == b), nil })
	binary("<", func(a, b int64) (*runtime.Value, error) { return i.newBoolean(a < b), nil })
	arith("+", func(a, b int64) int64 { return a + b })
	arith("-", func(a, b int64) int64 { return a - b })
	arith("*", func(a, b int64) int64 { return a * b })
	binary("/", func(a, b int64) (*runtime.Value, error) {
		if b == 0 {
			return nil, runtime.ErrDivisionByZero()
		}
		return i.newInteger(a / b), nil
	})
	binary("%", func(a, b int64) (*runtime.Value, error) {
		if b == 0 {
			return nil, runtime.ErrDivisionByZero()
		}
		return i.newInteger(a % b), nil
	})
	arith("&", func(a, b int64) int64 { return a & b })
	arith("|", func(a, b int64) int64 { return a | b })
	arith("^", func(a, b int64) int64 { return a ^ b })
	binary("<<", func(a, b int64) (*runtime.Value, error) {
		if b < 0 {
			return nil, runtime.NewError("Negative shift count %d.", b)
		}
		return i.newInteger(a << uint64(b)), nil
	})
	binary(">>", func(a, b int64) (*runtime.Value, error) {
		if b < 0 {
			return nil, runtime.NewError("Negative shift count %d.", b)
		}
		return i.newInteger(a >> uint64(b)), nil
	})
	unary("__neg__", func(a int64) int64 { return -a })
	unary("__pos__", func(a int64) int64 { return a })
	unary("__bnot__", func(a int64) int64 { return ^a })
}

func (i *Interpreter) installString() {
	p := &i.primitives
	str := p.String

	i.method(str, "to_string", func(args []*runtime.Value) (*runtime.Reference, error) {
		return i.constant(args[0])
	}, str)

	i.method(str, "==", func(args []*runtime.Value) (*runtime.Reference, error) {
		left, _ := args[0].AsString()
		right, _ := args[1].AsString()
		return i.constant(i.newBoolean(left == right))
	}, str, str)

	i.method(str, "<", func(args []*runtime.Value) (*runtime.Reference, error) {
		left, _ := args[0].AsString()
		right, _ := args[1].AsString()
		return i.constant(i.newBoolean(left < right))
	}, str, str)

	i.method(str, "+", func(args []*runtime.Value) (*runtime.Reference, error) {
		left, _ := args[0].AsString()
		right, err := i.stringify(args[1])
		if err != nil {
			return nil, err
		}
		return i.constant(i.newString(left + right))
	}, str, nil)

	i.method(str, "length", func(args []*runtime.Value) (*runtime.Reference, error) {
		s, _ := args[0].AsString()
		return i.constant(i.newInteger(int64(utf8.RuneCountInString(s))))
	}, str)
}
