package runtime

import (
	"fmt"

	"lif/interpreter-go/pkg/ast"
)

const errorPrefix = "RUNTIME ERROR: "

// Error is a recoverable runtime error. Node is attached by the first
// evaluation frame on the unwind path that has location information; Calls
// holds the enclosing call sites at that moment, innermost last.
type Error struct {
	Message string
	Node    ast.Node
	Calls   []ast.Node
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a runtime error with the standard prefix.
func NewError(format string, args ...any) *Error {
	return &Error{Message: errorPrefix + fmt.Sprintf(format, args...)}
}

func ErrUndefined() *Error {
	return NewError("Cannot read an undefined reference.")
}

func ErrConstantWrite() *Error {
	return NewError("Cannot write data into a constant.")
}

func ErrUndeclaredVariable(name string) *Error {
	return NewError("Variable %q is not declared.", name)
}

func ErrUndefinedMethod(name string, cls *Value) *Error {
	return NewError("Method %q is undefined in the type %s.", name, ClassName(cls))
}

func ErrCast(v *Value, cls *Value) *Error {
	return NewError("Cannot cast a value of the type %s to the type %s.", v.TypeName(), ClassName(cls))
}

func ErrArguments(parameters, arguments int) *Error {
	return NewError("Provided %d arguments while the function expects %d parameters.", arguments, parameters)
}

func ErrLoopControl() *Error {
	return NewError("Cannot loop control out of a function.")
}

func ErrMissingMethod() *Error {
	return NewError("Method does not exist.")
}

func ErrNoConstructor(cls *Value) *Error {
	return NewError("Class %s has no default constructor.", ClassName(cls))
}

func ErrBuiltinInstance(cls *Value, builtin *Value) *Error {
	if cls == builtin {
		return NewError("Cannot create an instance of the builtin class %s with new.", ClassName(cls))
	}
	return NewError("Cannot create an instance of the class %s with new: it extends the builtin class %s.", ClassName(cls), ClassName(builtin))
}

func ErrDivisionByZero() *Error {
	return NewError("Division by zero.")
}

func ErrIndex(index int64, length int) *Error {
	return NewError("Index %d out of bounds for length %d.", index, length)
}

// Exit aborts evaluation. It is raised by the assert, error and exit
// primitives and is never decorated with source context.
type Exit struct {
	Code    int
	Message string
}

func (e *Exit) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit status %d", e.Code)
}
