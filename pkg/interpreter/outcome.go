package interpreter

import "lif/interpreter-go/pkg/runtime"

// Control tells the caller of Execute how evaluation ended.
type Control int

const (
	Normal Control = iota
	Break
	Continue
	Return
)

func (c Control) String() string {
	switch c {
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	default:
		return "normal"
	}
}

// Outcome is the result of executing a node. For Normal it carries the
// produced reference; for the other controls it carries the payload.
type Outcome struct {
	Control Control
	Ref     *runtime.Reference
}

func normal(ref *runtime.Reference) Outcome {
	return Outcome{Control: Normal, Ref: ref}
}

// Abrupt reports whether the outcome must be propagated by enclosing nodes.
func (o Outcome) Abrupt() bool {
	return o.Control != Normal
}
