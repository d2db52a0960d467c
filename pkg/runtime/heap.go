package runtime

// GCThreshold is the default number of allocations between collections.
const GCThreshold = 1024

// Heap owns every Value, Reference and Scope and reclaims them by
// mark-and-sweep.
type Heap struct {
	Threshold int

	values      Arena[*Value]
	references  Arena[*Reference]
	scopes      Arena[*Scope]
	allocations int
	collections int
}

// Roots enumerates the root set for a collection.
type Roots struct {
	Values     []*Value
	References []*Reference
	Scopes     []*Scope
}

// CollectStats summarises one collection.
type CollectStats struct {
	Values     int
	References int
	Scopes     int
}

// Total is the number of objects freed.
func (s CollectStats) Total() int {
	return s.Values + s.References + s.Scopes
}

func NewHeap(threshold int) *Heap {
	if threshold <= 0 {
		threshold = GCThreshold
	}
	return &Heap{Threshold: threshold}
}

func (h *Heap) NewValue(class *Value, data Data) *Value {
	h.allocations++
	return h.values.Alloc(&Value{Class: class, Data: data})
}

// NewVariable allocates a typed slot. A nil typ accepts any value.
func (h *Heap) NewVariable(v *Value, typ *Value) *Reference {
	h.allocations++
	return h.references.Alloc(&Reference{value: v, kind: Variable, typ: typ})
}

func (h *Heap) NewConstant(v *Value) *Reference {
	h.allocations++
	return h.references.Alloc(&Reference{value: v, kind: Constant})
}

func (h *Heap) NewScope(parent *Scope) *Scope {
	h.allocations++
	return h.scopes.Alloc(&Scope{variables: make(map[string]*Reference), parent: parent})
}

// ShouldCollect reports whether enough allocations happened since the last
// collection.
func (h *Heap) ShouldCollect() bool {
	return h.allocations > h.Threshold
}

// Allocations is the number of allocations since the last collection.
func (h *Heap) Allocations() int {
	return h.allocations
}

// Collections is the number of completed collections.
func (h *Heap) Collections() int {
	return h.collections
}

// Live reports the number of live values, references and scopes.
func (h *Heap) Live() CollectStats {
	return CollectStats{
		Values:     h.values.Live(),
		References: h.references.Live(),
		Scopes:     h.scopes.Live(),
	}
}

// ContainsValue reports whether v has not been reclaimed.
func (h *Heap) ContainsValue(v *Value) bool {
	return h.values.Contains(v)
}

// ContainsReference reports whether r has not been reclaimed.
func (h *Heap) ContainsReference(r *Reference) bool {
	return h.references.Contains(r)
}

// ContainsScope reports whether s has not been reclaimed.
func (h *Heap) ContainsScope(s *Scope) bool {
	return h.scopes.Contains(s)
}

// Collect marks everything reachable from roots, then sweeps all arenas.
func (h *Heap) Collect(roots Roots) CollectStats {
	m := &marker{}
	for _, v := range roots.Values {
		m.value(v)
	}
	for _, r := range roots.References {
		m.reference(r)
	}
	for _, s := range roots.Scopes {
		m.scope(s)
	}
	m.drain()

	stats := CollectStats{
		Values:     h.values.Sweep(),
		References: h.references.Sweep(),
		Scopes:     h.scopes.Sweep(),
	}
	h.allocations = 0
	h.collections++
	return stats
}
