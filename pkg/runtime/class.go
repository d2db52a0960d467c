package runtime

import "sort"

// Class carries single-inheritance dispatch tables.
type Class struct {
	Name        string
	Parent      *Value
	Methods     map[string]*Value
	Statics     map[string]*Reference
	Constructor *GenericConstructor
}

// GenericConstructor records the generic and arguments a class was
// instantiated from.
type GenericConstructor struct {
	Generic   *Value
	Arguments []*Value
}

func NewClass(name string, parent *Value) *Class {
	return &Class{
		Name:    name,
		Parent:  parent,
		Methods: make(map[string]*Value),
		Statics: make(map[string]*Reference),
	}
}

// Method walks the parent chain looking for name.
func (c *Class) Method(name string) (*Value, bool) {
	for cur := c; cur != nil; {
		if m, ok := cur.Methods[name]; ok {
			return m, true
		}
		if cur.Parent == nil {
			break
		}
		parent, ok := cur.Parent.Data.(*Class)
		if !ok {
			break
		}
		cur = parent
	}
	return nil, false
}

// SetMethod installs (or replaces) a method on this class only.
func (c *Class) SetMethod(name string, fn *Value) {
	c.Methods[name] = fn
}

// Static returns the static slot for name on this class only.
func (c *Class) Static(name string) (*Reference, bool) {
	ref, ok := c.Statics[name]
	return ref, ok
}

func (c *Class) SetStatic(name string, ref *Reference) {
	c.Statics[name] = ref
}

// MethodNames lists this class's own method names in sorted order.
func (c *Class) MethodNames() []string {
	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NewObject() *Object {
	return &Object{Attributes: make(map[string]*Reference)}
}

// Attribute returns the attribute slot for name, if present.
func (o *Object) Attribute(name string) (*Reference, bool) {
	ref, ok := o.Attributes[name]
	return ref, ok
}

func (o *Object) SetAttribute(name string, ref *Reference) {
	o.Attributes[name] = ref
}

// AttributeNames lists attribute names in sorted order for deterministic output.
func (o *Object) AttributeNames() []string {
	names := make([]string, 0, len(o.Attributes))
	for name := range o.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
