package interpreter

import (
	"fmt"

	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

// Execute evaluates node in the current scope. Every temporary allocated
// while node runs is pinned in a registry that is released when Execute
// returns; the produced reference is then handed to the caller's registry.
func (i *Interpreter) Execute(node ast.Node) (Outcome, error) {
	i.pushRegistry()
	out, err := i.dispatch(node)
	i.popRegistry()
	if err != nil {
		return Outcome{}, i.attachRuntimeContext(err, node)
	}
	if out.Ref == nil {
		out.Ref = i.undefined
	}
	i.register(out.Ref)
	if i.heap.ShouldCollect() {
		i.Collect()
	}
	return out, nil
}

func (i *Interpreter) dispatch(node ast.Node) (Outcome, error) {
	switch n := node.(type) {
	case *ast.Program:
		return i.evaluateProgram(n)
	case *ast.BlockExpression:
		return i.evaluateBlock(n)
	case *ast.LetDeclaration:
		return i.evaluateLet(n)
	case *ast.IfExpression:
		return i.evaluateIf(n)
	case *ast.LoopExpression:
		return i.evaluateLoop(n)
	case *ast.WhileLoop:
		return i.evaluateWhile(n)
	case *ast.DoWhileLoop:
		return i.evaluateDoWhile(n)
	case *ast.ForLoop:
		return i.evaluateFor(n)
	case *ast.BreakExpression:
		return i.evaluateControl(Break, n.Value)
	case *ast.ContinueExpression:
		return i.evaluateControl(Continue, n.Value)
	case *ast.ReturnExpression:
		return i.evaluateControl(Return, n.Value)
	case *ast.FunctionDefinition:
		return i.evaluateFunctionDefinition(n)
	case *ast.ClassDefinition:
		return i.evaluateClassDefinition(n)
	case *ast.GenericDefinition:
		return i.evaluateGenericDefinition(n)
	case *ast.IntegerLiteral:
		return normal(i.newConstant(i.newInteger(n.Value))), nil
	case *ast.StringLiteral:
		return normal(i.newConstant(i.newString(n.Value))), nil
	case *ast.BooleanLiteral:
		return normal(i.newConstant(i.newBoolean(n.Value))), nil
	case *ast.ArrayLiteral:
		return i.evaluateArrayLiteral(n)
	case *ast.Identifier:
		ref, err := i.scope.Lookup(n.Name)
		return normal(ref), err
	case *ast.AssignmentExpression:
		return i.evaluateAssignment(n)
	case *ast.UnaryExpression:
		return i.evaluateUnary(n)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n)
	case *ast.FunctionCall:
		return i.evaluateCall(n)
	case *ast.IndexExpression:
		return i.evaluateIndex(n)
	case *ast.MemberAccessExpression:
		return i.evaluateMember(n)
	case nil:
		return normal(i.undefined), nil
	default:
		return Outcome{}, fmt.Errorf("unsupported node %T", node)
	}
}

// evaluate executes node and reads the produced value. An abrupt outcome is
// returned untouched for the caller to propagate.
func (i *Interpreter) evaluate(node ast.Node) (*runtime.Value, Outcome, error) {
	out, err := i.Execute(node)
	if err != nil || out.Abrupt() {
		return nil, out, err
	}
	v, err := out.Ref.Read()
	return v, out, err
}

// evaluateProgram runs top-level statements in the current scope so that
// successive programs (REPL lines, loaded modules) share declarations.
func (i *Interpreter) evaluateProgram(program *ast.Program) (Outcome, error) {
	last := i.undefined
	for _, stmt := range program.Body {
		out, err := i.Execute(stmt)
		if err != nil {
			return Outcome{}, err
		}
		switch out.Control {
		case Return:
			return normal(out.Ref), nil
		case Break, Continue:
			return Outcome{}, i.attachRuntimeContext(runtime.ErrLoopControl(), stmt)
		}
		last = out.Ref
	}
	return normal(last), nil
}

func (i *Interpreter) evaluateStatements(body []ast.Statement) (Outcome, error) {
	last := i.undefined
	for _, stmt := range body {
		out, err := i.Execute(stmt)
		if err != nil || out.Abrupt() {
			return out, err
		}
		last = out.Ref
	}
	return normal(last), nil
}

func (i *Interpreter) evaluateBlock(block *ast.BlockExpression) (Outcome, error) {
	saved := i.scope
	i.pushScope()
	defer func() { i.scope = saved }()
	return i.evaluateStatements(block.Body)
}

func (i *Interpreter) evaluateLet(decl *ast.LetDeclaration) (Outcome, error) {
	typ := i.primitives.Object
	if decl.Type != nil {
		cls, out, err := i.evaluate(decl.Type)
		if err != nil || out.Abrupt() {
			return out, err
		}
		if err := cls.Cast(i.primitives.Class); err != nil {
			return Outcome{}, err
		}
		typ = cls
	}
	ref := i.newVariable(nil, typ)
	if decl.Value != nil {
		v, out, err := i.evaluate(decl.Value)
		if err != nil || out.Abrupt() {
			return out, err
		}
		if err := ref.Write(v); err != nil {
			return Outcome{}, err
		}
	}
	i.scope.AddVariable(decl.Name.Name, ref)
	return normal(ref), nil
}

// condition evaluates node in its own registry, so the temporaries of a
// loop test are released once the Boolean is read.
func (i *Interpreter) condition(node ast.Expression) (bool, Outcome, error) {
	i.pushRegistry()
	v, out, err := i.evaluate(node)
	i.popRegistry()
	if err != nil {
		return false, out, err
	}
	if out.Abrupt() {
		i.register(out.Ref)
		return false, out, nil
	}
	if err := v.Cast(i.primitives.Boolean); err != nil {
		return false, Outcome{}, err
	}
	b, _ := v.AsBoolean()
	return b, out, nil
}

func (i *Interpreter) evaluateIf(expr *ast.IfExpression) (Outcome, error) {
	ok, out, err := i.condition(expr.Condition)
	if err != nil || out.Abrupt() {
		return out, err
	}
	if ok {
		return i.Execute(expr.Then)
	}
	if expr.Else != nil {
		return i.Execute(expr.Else)
	}
	return normal(i.undefined), nil
}

// iteration folds one body outcome into the loop's collected references.
// It reports whether the loop must stop and, for a Return, the outcome to
// propagate.
func (i *Interpreter) iteration(out Outcome, results *[]*runtime.Reference) (bool, Outcome) {
	switch out.Control {
	case Break:
		*results = append(*results, out.Ref)
		return true, Outcome{}
	case Return:
		return true, out
	default:
		*results = append(*results, out.Ref)
		return false, Outcome{}
	}
}

func (i *Interpreter) loopResult(results []*runtime.Reference) Outcome {
	array := i.newValue(i.primitives.Array, &runtime.Array{Elements: results})
	return normal(i.newConstant(array))
}

func (i *Interpreter) evaluateLoop(loop *ast.LoopExpression) (Outcome, error) {
	var results []*runtime.Reference
	for {
		out, err := i.Execute(loop.Body)
		if err != nil {
			return Outcome{}, err
		}
		if stop, ret := i.iteration(out, &results); stop {
			if ret.Control == Return {
				return ret, nil
			}
			return i.loopResult(results), nil
		}
	}
}

func (i *Interpreter) evaluateWhile(loop *ast.WhileLoop) (Outcome, error) {
	var results []*runtime.Reference
	for {
		ok, out, err := i.condition(loop.Condition)
		if err != nil || out.Abrupt() {
			return out, err
		}
		if !ok {
			return i.loopResult(results), nil
		}
		out, err = i.Execute(loop.Body)
		if err != nil {
			return Outcome{}, err
		}
		if stop, ret := i.iteration(out, &results); stop {
			if ret.Control == Return {
				return ret, nil
			}
			return i.loopResult(results), nil
		}
	}
}

func (i *Interpreter) evaluateDoWhile(loop *ast.DoWhileLoop) (Outcome, error) {
	var results []*runtime.Reference
	for {
		out, err := i.Execute(loop.Body)
		if err != nil {
			return Outcome{}, err
		}
		if stop, ret := i.iteration(out, &results); stop {
			if ret.Control == Return {
				return ret, nil
			}
			return i.loopResult(results), nil
		}
		ok, out, err := i.condition(loop.Condition)
		if err != nil || out.Abrupt() {
			return out, err
		}
		if !ok {
			return i.loopResult(results), nil
		}
	}
}

// evaluateFor binds each element's own reference to the loop variable, so
// writing the variable writes the array slot.
func (i *Interpreter) evaluateFor(loop *ast.ForLoop) (Outcome, error) {
	iterable, out, err := i.evaluate(loop.Iterable)
	if err != nil || out.Abrupt() {
		return out, err
	}
	if err := iterable.Cast(i.primitives.Array); err != nil {
		return Outcome{}, err
	}
	mark := i.pin(iterable)
	defer i.unpin(mark)
	array, _ := iterable.AsArray()
	elements := append([]*runtime.Reference(nil), array.Elements...)
	// The body may remove elements from the array; the snapshot keeps them
	// alive until the loop ends.
	for _, element := range elements {
		i.register(element)
	}

	saved := i.scope
	defer func() { i.scope = saved }()
	var results []*runtime.Reference
	for _, element := range elements {
		i.scope = i.newScope(saved)
		i.scope.AddVariable(loop.Variable.Name, element)
		out, err := i.Execute(loop.Body)
		if err != nil {
			return Outcome{}, err
		}
		if stop, ret := i.iteration(out, &results); stop {
			if ret.Control == Return {
				return ret, nil
			}
			return i.loopResult(results), nil
		}
	}
	return i.loopResult(results), nil
}

// evaluateControl builds a break, continue or return outcome. The payload is
// a fresh constant holding the value, or the undefined reference.
func (i *Interpreter) evaluateControl(control Control, value ast.Expression) (Outcome, error) {
	if value == nil {
		return Outcome{Control: control, Ref: i.undefined}, nil
	}
	v, out, err := i.evaluate(value)
	if err != nil || out.Abrupt() {
		return out, err
	}
	return Outcome{Control: control, Ref: i.newConstant(v)}, nil
}
