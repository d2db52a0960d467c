package runtime

import (
	"fmt"

	"lif/interpreter-go/pkg/ast"
)

// Value is a heap-resident datum with a class pointer.
type Value struct {
	Header
	Class *Value
	Data  Data
}

// Data is the closed set of payloads a Value can carry.
type Data interface {
	isData()
}

type Array struct {
	Elements []*Reference
}

type Boolean bool

type Integer int64

type String string

// Object is the payload of instances of user classes.
type Object struct {
	Attributes map[string]*Reference
}

// Parameter is a declared function parameter. A nil Type accepts any value.
type Parameter struct {
	Name string
	Type *Value
	Rest bool
}

// NativeFunc implements a builtin callable. Methods receive the receiver as
// args[0].
type NativeFunc func(args []*Value) (*Reference, error)

// Function is either code (Body + closure Scope) or a native implementation.
type Function struct {
	Name       string
	Params     []Parameter
	ReturnType *Value
	Body       *ast.BlockExpression
	Scope      *Scope
	Native     NativeFunc
}

// Method binds a function to its receiver.
type Method struct {
	Function *Value
	Receiver *Value
}

// Generic is a deferred template: evaluating Node in a scope binding Params
// produces the instantiated value.
type Generic struct {
	Name      string
	Params    []string
	Node      ast.Expression
	Scope     *Scope
	Instances []*GenericInstance
}

// GenericInstance memoises one instantiation.
type GenericInstance struct {
	Arguments []*Value
	Value     *Value
}

func (*Array) isData()    {}
func (Boolean) isData()   {}
func (Integer) isData()   {}
func (String) isData()    {}
func (*Class) isData()    {}
func (*Object) isData()   {}
func (*Function) isData() {}
func (*Method) isData()   {}
func (*Generic) isData()  {}

// Arity counts the fixed (non-rest) parameters.
func (f *Function) Arity() int {
	n := 0
	for _, p := range f.Params {
		if !p.Rest {
			n++
		}
	}
	return n
}

// Variadic reports whether the last parameter collects extra arguments.
func (f *Function) Variadic() bool {
	return len(f.Params) > 0 && f.Params[len(f.Params)-1].Rest
}

// Lookup returns the memoised instance for args, compared by identity.
func (g *Generic) Lookup(args []*Value) (*Value, bool) {
	for _, inst := range g.Instances {
		if len(inst.Arguments) != len(args) {
			continue
		}
		same := true
		for i := range args {
			if inst.Arguments[i] != args[i] {
				same = false
				break
			}
		}
		if same {
			return inst.Value, true
		}
	}
	return nil, false
}

// Is reports whether v, which must be a class, is cls or inherits from it.
func (v *Value) Is(cls *Value) bool {
	for cur := v; cur != nil; {
		if cur == cls {
			return true
		}
		c, ok := cur.Data.(*Class)
		if !ok {
			return false
		}
		cur = c.Parent
	}
	return false
}

// Isa reports whether the value's class is cls or a subclass of it.
func (v *Value) Isa(cls *Value) bool {
	return v.Class.Is(cls)
}

// Cast fails with a cast error when v is not an instance of cls.
func (v *Value) Cast(cls *Value) error {
	if cls == nil || v.Isa(cls) {
		return nil
	}
	return ErrCast(v, cls)
}

// ClassData returns the class payload of v's class.
func (v *Value) ClassData() *Class {
	if v == nil || v.Class == nil {
		return nil
	}
	c, _ := v.Class.Data.(*Class)
	return c
}

// TypeName is the display name of v's class.
func (v *Value) TypeName() string {
	return ClassName(v.Class)
}

// ClassName returns the display name of a class value.
func ClassName(cls *Value) string {
	if cls == nil {
		return "<unknown>"
	}
	if c, ok := cls.Data.(*Class); ok {
		if c.Name == "" {
			return "<anonymous>"
		}
		return c.Name
	}
	return fmt.Sprintf("<%T>", cls.Data)
}

// Method resolves name on v's class chain.
func (v *Value) Method(name string) (*Value, error) {
	if c := v.ClassData(); c != nil {
		if m, ok := c.Method(name); ok {
			return m, nil
		}
	}
	return nil, ErrUndefinedMethod(name, v.Class)
}

func (v *Value) AsArray() (*Array, bool) {
	a, ok := v.Data.(*Array)
	return a, ok
}

func (v *Value) AsInteger() (int64, bool) {
	i, ok := v.Data.(Integer)
	return int64(i), ok
}

func (v *Value) AsBoolean() (bool, bool) {
	b, ok := v.Data.(Boolean)
	return bool(b), ok
}

func (v *Value) AsString() (string, bool) {
	s, ok := v.Data.(String)
	return string(s), ok
}

func (v *Value) AsClass() (*Class, bool) {
	c, ok := v.Data.(*Class)
	return c, ok
}

func (v *Value) AsObject() (*Object, bool) {
	o, ok := v.Data.(*Object)
	return o, ok
}

func (v *Value) AsFunction() (*Function, bool) {
	f, ok := v.Data.(*Function)
	return f, ok
}

func (v *Value) AsMethod() (*Method, bool) {
	m, ok := v.Data.(*Method)
	return m, ok
}

func (v *Value) AsGeneric() (*Generic, bool) {
	g, ok := v.Data.(*Generic)
	return g, ok
}
