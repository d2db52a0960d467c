package runtime

// ReferenceKind distinguishes typed variable slots from write-once constants.
type ReferenceKind int

const (
	Variable ReferenceKind = iota
	Constant
)

func (k ReferenceKind) String() string {
	if k == Constant {
		return "constant"
	}
	return "variable"
}

// Reference is the unit of assignable storage: variables, parameters, array
// elements, attributes and statics are all References.
type Reference struct {
	Header
	value  *Value
	kind   ReferenceKind
	typ    *Value
	sealed bool
}

// Kind reports whether the reference is a variable or a constant.
func (r *Reference) Kind() ReferenceKind { return r.kind }

// Type is the declared type of a variable (nil for constants).
func (r *Reference) Type() *Value { return r.typ }

// Defined reports whether the slot holds a value.
func (r *Reference) Defined() bool { return r.value != nil }

// Value returns the held value without the undefined check.
func (r *Reference) Value() *Value { return r.value }

// Read fails when the slot is empty.
func (r *Reference) Read() (*Value, error) {
	if r.value == nil {
		return nil, ErrUndefined()
	}
	return r.value, nil
}

// Write stores v. Variables cast v against their declared type; constants
// accept exactly one write.
func (r *Reference) Write(v *Value) error {
	switch r.kind {
	case Variable:
		if err := v.Cast(r.typ); err != nil {
			return err
		}
	case Constant:
		if r.value != nil || r.sealed {
			return ErrConstantWrite()
		}
	}
	r.value = v
	return nil
}

// Seal forbids any further write, even while the slot is empty.
func (r *Reference) Seal() {
	r.sealed = true
}
