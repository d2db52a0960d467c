package runtime

import "sort"

// Scope provides lexical scoping for Lif runtime references.
type Scope struct {
	Header
	variables map[string]*Reference
	parent    *Scope
}

// Parent exposes the lexical parent (nil when global).
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Snapshot returns a copy of the current bindings.
func (s *Scope) Snapshot() map[string]*Reference {
	out := make(map[string]*Reference, len(s.variables))
	for k, v := range s.variables {
		out[k] = v
	}
	return out
}

// AddVariable inserts or shadows a binding in this scope.
func (s *Scope) AddVariable(name string, ref *Reference) {
	s.variables[name] = ref
}

// Local retrieves a binding from this scope only.
func (s *Scope) Local(name string) (*Reference, bool) {
	ref, ok := s.variables[name]
	return ref, ok
}

// Lookup retrieves a binding, searching outward through the scope chain.
func (s *Scope) Lookup(name string) (*Reference, error) {
	for cur := s; cur != nil; cur = cur.parent {
		if ref, ok := cur.variables[name]; ok {
			return ref, nil
		}
	}
	return nil, ErrUndeclaredVariable(name)
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (s *Scope) Keys() []string {
	keys := make([]string, 0, len(s.variables))
	for k := range s.variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
