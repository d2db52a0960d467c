package runtime

// marker traces the object graph with an explicit worklist so deep structures
// do not grow the Go stack.
type marker struct {
	values     []*Value
	references []*Reference
	scopes     []*Scope
}

func (m *marker) value(v *Value) {
	if v == nil || v.marked {
		return
	}
	v.marked = true
	m.values = append(m.values, v)
}

func (m *marker) reference(r *Reference) {
	if r == nil || r.marked {
		return
	}
	r.marked = true
	m.references = append(m.references, r)
}

func (m *marker) scope(s *Scope) {
	if s == nil || s.marked {
		return
	}
	s.marked = true
	m.scopes = append(m.scopes, s)
}

func (m *marker) drain() {
	for len(m.values) > 0 || len(m.references) > 0 || len(m.scopes) > 0 {
		if n := len(m.scopes); n > 0 {
			s := m.scopes[n-1]
			m.scopes = m.scopes[:n-1]
			m.scope(s.parent)
			for _, ref := range s.variables {
				m.reference(ref)
			}
			continue
		}
		if n := len(m.references); n > 0 {
			r := m.references[n-1]
			m.references = m.references[:n-1]
			m.value(r.value)
			m.value(r.typ)
			continue
		}
		n := len(m.values)
		v := m.values[n-1]
		m.values = m.values[:n-1]
		m.value(v.Class)
		m.data(v.Data)
	}
}

func (m *marker) data(d Data) {
	switch d := d.(type) {
	case *Array:
		for _, ref := range d.Elements {
			m.reference(ref)
		}
	case *Class:
		m.value(d.Parent)
		for _, fn := range d.Methods {
			m.value(fn)
		}
		for _, ref := range d.Statics {
			m.reference(ref)
		}
		if d.Constructor != nil {
			m.value(d.Constructor.Generic)
			for _, arg := range d.Constructor.Arguments {
				m.value(arg)
			}
		}
	case *Object:
		for _, ref := range d.Attributes {
			m.reference(ref)
		}
	case *Function:
		m.scope(d.Scope)
		m.value(d.ReturnType)
		for _, p := range d.Params {
			m.value(p.Type)
		}
	case *Method:
		m.value(d.Function)
		m.value(d.Receiver)
	case *Generic:
		m.scope(d.Scope)
		for _, inst := range d.Instances {
			m.value(inst.Value)
			for _, arg := range inst.Arguments {
				m.value(arg)
			}
		}
	}
}
