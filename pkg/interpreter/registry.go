package interpreter

import "lif/interpreter-go/pkg/runtime"

// registry pins the temporaries created while one node executes so a
// collection triggered by a nested node cannot free them.
type registry struct {
	values     []*runtime.Value
	references []*runtime.Reference
	scopes     []*runtime.Scope
}

func (r *registry) reset() {
	r.values = r.values[:0]
	r.references = r.references[:0]
	r.scopes = r.scopes[:0]
}

func (i *Interpreter) top() *registry {
	return i.registries[len(i.registries)-1]
}

func (i *Interpreter) pushRegistry() {
	i.registries = append(i.registries, &registry{})
}

func (i *Interpreter) popRegistry() {
	i.registries = i.registries[:len(i.registries)-1]
}

func (i *Interpreter) register(ref *runtime.Reference) {
	if ref != nil && ref != i.undefined {
		top := i.top()
		top.references = append(top.references, ref)
	}
}

func (i *Interpreter) newValue(class *runtime.Value, data runtime.Data) *runtime.Value {
	v := i.heap.NewValue(class, data)
	top := i.top()
	top.values = append(top.values, v)
	return v
}

func (i *Interpreter) newVariable(v *runtime.Value, typ *runtime.Value) *runtime.Reference {
	ref := i.heap.NewVariable(v, typ)
	i.register(ref)
	return ref
}

func (i *Interpreter) newConstant(v *runtime.Value) *runtime.Reference {
	ref := i.heap.NewConstant(v)
	i.register(ref)
	return ref
}

func (i *Interpreter) newScope(parent *runtime.Scope) *runtime.Scope {
	s := i.heap.NewScope(parent)
	top := i.top()
	top.scopes = append(top.scopes, s)
	return s
}

func (i *Interpreter) newInteger(n int64) *runtime.Value {
	return i.newValue(i.primitives.Integer, runtime.Integer(n))
}

func (i *Interpreter) newBoolean(b bool) *runtime.Value {
	return i.newValue(i.primitives.Boolean, runtime.Boolean(b))
}

func (i *Interpreter) newString(s string) *runtime.Value {
	return i.newValue(i.primitives.String, runtime.String(s))
}

// newArray wraps each value in a fresh Object-typed variable.
func (i *Interpreter) newArray(values []*runtime.Value) *runtime.Value {
	elements := make([]*runtime.Reference, len(values))
	for idx, v := range values {
		elements[idx] = i.newVariable(v, i.primitives.Object)
	}
	return i.newValue(i.primitives.Array, &runtime.Array{Elements: elements})
}

// pin keeps values alive while Go code holds them outside any scope.
// The returned length is handed back to unpin.
func (i *Interpreter) pin(values ...*runtime.Value) int {
	mark := len(i.pinned)
	i.pinned = append(i.pinned, values...)
	return mark
}

func (i *Interpreter) unpin(mark int) {
	clear(i.pinned[mark:])
	i.pinned = i.pinned[:mark]
}

func (i *Interpreter) roots() runtime.Roots {
	roots := runtime.Roots{
		Values:     append(i.primitives.all(), i.pinned...),
		References: []*runtime.Reference{i.undefined},
		Scopes:     []*runtime.Scope{i.global, i.scope},
	}
	roots.Scopes = append(roots.Scopes, i.frames...)
	for _, reg := range i.registries {
		roots.Values = append(roots.Values, reg.values...)
		roots.References = append(roots.References, reg.references...)
		roots.Scopes = append(roots.Scopes, reg.scopes...)
	}
	return roots
}

// Collect runs a full collection and reports what was freed.
func (i *Interpreter) Collect() runtime.CollectStats {
	return i.heap.Collect(i.roots())
}
