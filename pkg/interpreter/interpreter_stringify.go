package interpreter

import "lif/interpreter-go/pkg/runtime"

// stringify dispatches to_string and checks the result is a String.
func (i *Interpreter) stringify(v *runtime.Value) (string, error) {
	ref, err := i.callMethod(v, "to_string")
	if err != nil {
		return "", err
	}
	result, err := ref.Read()
	if err != nil {
		return "", err
	}
	s, ok := result.AsString()
	if !ok {
		return "", runtime.ErrCast(result, i.primitives.String)
	}
	return s, nil
}

// Stringify renders v the way print does.
func (i *Interpreter) Stringify(ref *runtime.Reference) (string, error) {
	v, err := ref.Read()
	if err != nil {
		return "", err
	}
	return i.stringify(v)
}

// enter marks v as being rendered; it reports false on re-entry so cyclic
// structures print an ellipsis instead of recursing forever.
func (i *Interpreter) enter(v *runtime.Value) bool {
	if i.rendering == nil {
		i.rendering = make(map[*runtime.Value]struct{})
	}
	if _, busy := i.rendering[v]; busy {
		return false
	}
	i.rendering[v] = struct{}{}
	return true
}

func (i *Interpreter) leave(v *runtime.Value) {
	delete(i.rendering, v)
}
