package ast

// Helpers for building trees by hand, mostly in tests.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func Block(statements ...Statement) *BlockExpression {
	return NewBlockExpression(statements)
}

func Prog(statements ...Statement) *Program {
	return NewProgram(statements)
}

func Let(name string, value Expression) *LetDeclaration {
	return NewLetDeclaration(ID(name), nil, value)
}

func LetTyped(name string, typ Expression, value Expression) *LetDeclaration {
	return NewLetDeclaration(ID(name), typ, value)
}

func Assign(target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(AssignmentAssign, target, value)
}

func AssignOp(op AssignmentOperator, target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(op, target, value)
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Un(op UnaryOperator, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Call(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func CallName(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

func Index(object Expression, args ...Expression) *IndexExpression {
	return NewIndexExpression(object, args)
}

func Member(object Expression, member string) *MemberAccessExpression {
	return NewMemberAccessExpression(object, ID(member))
}

// CallMember builds `object.member(args...)`.
func CallMember(object Expression, member string, args ...Expression) *FunctionCall {
	return NewFunctionCall(Member(object, member), args)
}

func If(condition Expression, then *BlockExpression, elseBranch Expression) *IfExpression {
	return NewIfExpression(condition, then, elseBranch)
}

func Loop(body ...Statement) *LoopExpression {
	return NewLoopExpression(Block(body...))
}

func While(condition Expression, body ...Statement) *WhileLoop {
	return NewWhileLoop(condition, Block(body...))
}

func DoWhile(condition Expression, body ...Statement) *DoWhileLoop {
	return NewDoWhileLoop(Block(body...), condition)
}

func For(variable string, iterable Expression, body ...Statement) *ForLoop {
	return NewForLoop(ID(variable), iterable, Block(body...))
}

func Brk(value Expression) *BreakExpression {
	return NewBreakExpression(value)
}

func Cont(value Expression) *ContinueExpression {
	return NewContinueExpression(value)
}

func Ret(value Expression) *ReturnExpression {
	return NewReturnExpression(value)
}

func Param(name string) *FunctionParameter {
	return NewFunctionParameter(ID(name), nil, false)
}

func ParamTyped(name string, typ Expression) *FunctionParameter {
	return NewFunctionParameter(ID(name), typ, false)
}

func RestParam(name string) *FunctionParameter {
	return NewFunctionParameter(ID(name), nil, true)
}

// Fn builds a named function definition; pass "" for an anonymous function.
func Fn(name string, params []*FunctionParameter, body ...Statement) *FunctionDefinition {
	var id *Identifier
	if name != "" {
		id = ID(name)
	}
	return NewFunctionDefinition(id, params, nil, Block(body...))
}

func Class(name string, parent Expression, methods ...*FunctionDefinition) *ClassDefinition {
	var id *Identifier
	if name != "" {
		id = ID(name)
	}
	return NewClassDefinition(id, parent, methods, nil)
}

func Generic(name string, params []string, body Expression) *GenericDefinition {
	ids := make([]*Identifier, 0, len(params))
	for _, p := range params {
		ids = append(ids, ID(p))
	}
	var id *Identifier
	if name != "" {
		id = ID(name)
	}
	return NewGenericDefinition(id, ids, body)
}
