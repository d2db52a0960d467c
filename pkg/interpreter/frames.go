package interpreter

import "lif/interpreter-go/pkg/runtime"

func (i *Interpreter) pushScope() {
	i.scope = i.newScope(i.scope)
}

func (i *Interpreter) popScope() {
	i.scope = i.scope.Parent()
}

// pushFrame saves the current scope and continues in a child of closure.
func (i *Interpreter) pushFrame(closure *runtime.Scope) {
	i.frames = append(i.frames, i.scope)
	i.scope = i.newScope(closure)
}

func (i *Interpreter) popFrame() {
	n := len(i.frames) - 1
	i.scope = i.frames[n]
	i.frames[n] = nil
	i.frames = i.frames[:n]
}
