package interpreter

import (
	"lif/interpreter-go/pkg/ast"
	"lif/interpreter-go/pkg/runtime"
)

var unaryMethods = map[ast.UnaryOperator]string{
	ast.UnaryNegate:     "__neg__",
	ast.UnaryPlus:       "__pos__",
	ast.UnaryNot:        "__not__",
	ast.UnaryComplement: "__bnot__",
}

// evaluateValues evaluates each expression left to right.
func (i *Interpreter) evaluateValues(exprs []ast.Expression) ([]*runtime.Value, Outcome, error) {
	values := make([]*runtime.Value, 0, len(exprs))
	for _, expr := range exprs {
		v, out, err := i.evaluate(expr)
		if err != nil || out.Abrupt() {
			return nil, out, err
		}
		values = append(values, v)
	}
	return values, Outcome{}, nil
}

func (i *Interpreter) evaluateArrayLiteral(lit *ast.ArrayLiteral) (Outcome, error) {
	values, out, err := i.evaluateValues(lit.Elements)
	if err != nil || out.Abrupt() {
		return out, err
	}
	return normal(i.newConstant(i.newArray(values))), nil
}

// evaluateAssignment resolves the target reference first, then the right
// side. Compound operators read the target, dispatch the operator method and
// write the result back. The assignment yields a constant holding the value
// written.
func (i *Interpreter) evaluateAssignment(assign *ast.AssignmentExpression) (Outcome, error) {
	target, err := i.Execute(assign.Left)
	if err != nil || target.Abrupt() {
		return target, err
	}
	v, out, err := i.evaluate(assign.Right)
	if err != nil || out.Abrupt() {
		return out, err
	}
	if op, ok := assign.Operator.Compound(); ok {
		current, err := target.Ref.Read()
		if err != nil {
			return Outcome{}, err
		}
		ref, err := i.callMethod(current, op, v)
		if err != nil {
			return Outcome{}, err
		}
		if v, err = ref.Read(); err != nil {
			return Outcome{}, err
		}
	}
	if err := target.Ref.Write(v); err != nil {
		return Outcome{}, err
	}
	return normal(i.newConstant(v)), nil
}

func (i *Interpreter) evaluateUnary(expr *ast.UnaryExpression) (Outcome, error) {
	v, out, err := i.evaluate(expr.Operand)
	if err != nil || out.Abrupt() {
		return out, err
	}
	name, ok := unaryMethods[expr.Operator]
	if !ok {
		name = string(expr.Operator)
	}
	ref, err := i.callMethod(v, name)
	return normal(ref), err
}

func (i *Interpreter) evaluateBinary(expr *ast.BinaryExpression) (Outcome, error) {
	switch expr.Operator {
	case "&&", "||":
		return i.evaluateLogical(expr)
	}
	left, out, err := i.evaluate(expr.Left)
	if err != nil || out.Abrupt() {
		return out, err
	}
	right, out, err := i.evaluate(expr.Right)
	if err != nil || out.Abrupt() {
		return out, err
	}
	ref, err := i.callMethod(left, expr.Operator, right)
	return normal(ref), err
}

// evaluateLogical short-circuits on Boolean operands.
func (i *Interpreter) evaluateLogical(expr *ast.BinaryExpression) (Outcome, error) {
	left, out, err := i.condition(expr.Left)
	if err != nil || out.Abrupt() {
		return out, err
	}
	if (expr.Operator == "&&" && !left) || (expr.Operator == "||" && left) {
		return normal(i.newConstant(i.newBoolean(left))), nil
	}
	right, out, err := i.condition(expr.Right)
	if err != nil || out.Abrupt() {
		return out, err
	}
	return normal(i.newConstant(i.newBoolean(right))), nil
}

func (i *Interpreter) evaluateCall(call *ast.FunctionCall) (Outcome, error) {
	callee, out, err := i.evaluate(call.Callee)
	if err != nil || out.Abrupt() {
		return out, err
	}
	args, out, err := i.evaluateValues(call.Arguments)
	if err != nil || out.Abrupt() {
		return out, err
	}
	i.calls = append(i.calls, call)
	defer func() { i.calls = i.calls[:len(i.calls)-1] }()
	ref, err := i.callMethod(callee, "__cl__", i.newArray(args))
	return normal(ref), err
}

func (i *Interpreter) evaluateIndex(expr *ast.IndexExpression) (Outcome, error) {
	object, out, err := i.evaluate(expr.Object)
	if err != nil || out.Abrupt() {
		return out, err
	}
	args, out, err := i.evaluateValues(expr.Arguments)
	if err != nil || out.Abrupt() {
		return out, err
	}
	ref, err := i.callMethod(object, "__gn__", i.newArray(args))
	return normal(ref), err
}

func (i *Interpreter) evaluateMember(expr *ast.MemberAccessExpression) (Outcome, error) {
	object, out, err := i.evaluate(expr.Object)
	if err != nil || out.Abrupt() {
		return out, err
	}
	ref, err := i.callMethod(object, "__cn__", i.newString(expr.Member.Name))
	return normal(ref), err
}
