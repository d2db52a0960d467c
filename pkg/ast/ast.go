package ast

type NodeType string

const (
	NodeIdentifier             NodeType = "Identifier"
	NodeStringLiteral          NodeType = "StringLiteral"
	NodeIntegerLiteral         NodeType = "IntegerLiteral"
	NodeBooleanLiteral         NodeType = "BooleanLiteral"
	NodeArrayLiteral           NodeType = "ArrayLiteral"
	NodeUnaryExpression        NodeType = "UnaryExpression"
	NodeBinaryExpression       NodeType = "BinaryExpression"
	NodeFunctionCall           NodeType = "FunctionCall"
	NodeIndexExpression        NodeType = "IndexExpression"
	NodeMemberAccessExpression NodeType = "MemberAccessExpression"
	NodeBlockExpression        NodeType = "BlockExpression"
	NodeAssignmentExpression   NodeType = "AssignmentExpression"
	NodeLetDeclaration         NodeType = "LetDeclaration"
	NodeIfExpression           NodeType = "IfExpression"
	NodeLoopExpression         NodeType = "LoopExpression"
	NodeWhileLoop              NodeType = "WhileLoop"
	NodeDoWhileLoop            NodeType = "DoWhileLoop"
	NodeForLoop                NodeType = "ForLoop"
	NodeBreakExpression        NodeType = "BreakExpression"
	NodeContinueExpression     NodeType = "ContinueExpression"
	NodeReturnExpression       NodeType = "ReturnExpression"
	NodeFunctionParameter      NodeType = "FunctionParameter"
	NodeFunctionDefinition     NodeType = "FunctionDefinition"
	NodeClassDefinition        NodeType = "ClassDefinition"
	NodeGenericDefinition      NodeType = "GenericDefinition"
	NodeProgram                NodeType = "Program"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

// Position is a 1-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span covers [Start, End) in the source text.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}

func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// AssignmentTarget is any expression that yields a writable reference.
type AssignmentTarget interface {
	Expression
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// Operators

type UnaryOperator string

const (
	UnaryNegate     UnaryOperator = "-"
	UnaryPlus       UnaryOperator = "+"
	UnaryNot        UnaryOperator = "!"
	UnaryComplement UnaryOperator = "~"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

// FunctionCall dispatches to the callee's `__cl__` method.
type FunctionCall struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee Expression, arguments []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: arguments}
}

// IndexExpression dispatches to the target's `__gn__` method: generic
// application for generics, element access for arrays.
type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object    Expression   `json:"object"`
	Arguments []Expression `json:"arguments"`
}

func NewIndexExpression(object Expression, arguments []Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Arguments: arguments}
}

// MemberAccessExpression dispatches to the object's `__cn__` method.
type MemberAccessExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object Expression  `json:"object"`
	Member *Identifier `json:"member"`
}

func NewMemberAccessExpression(object Expression, member *Identifier) *MemberAccessExpression {
	return &MemberAccessExpression{nodeImpl: newNodeImpl(NodeMemberAccessExpression), Object: object, Member: member}
}

type BlockExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlockExpression(body []Statement) *BlockExpression {
	return &BlockExpression{nodeImpl: newNodeImpl(NodeBlockExpression), Body: body}
}

type AssignmentOperator string

const (
	AssignmentAssign AssignmentOperator = "="
	AssignmentAdd    AssignmentOperator = "+="
	AssignmentSub    AssignmentOperator = "-="
	AssignmentMul    AssignmentOperator = "*="
	AssignmentDiv    AssignmentOperator = "/="
	AssignmentMod    AssignmentOperator = "%="
)

// Compound returns the binary method name for compound operators and false for
// plain assignment.
func (op AssignmentOperator) Compound() (string, bool) {
	if op == AssignmentAssign || len(op) < 2 {
		return "", false
	}
	return string(op[:len(op)-1]), true
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator AssignmentOperator `json:"operator"`
	Left     AssignmentTarget   `json:"left"`
	Right    Expression         `json:"right"`
}

func NewAssignmentExpression(operator AssignmentOperator, left AssignmentTarget, right Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Operator: operator, Left: left, Right: right}
}

type LetDeclaration struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name  *Identifier `json:"name"`
	Type  Expression  `json:"annotation,omitempty"`
	Value Expression  `json:"value,omitempty"`
}

func NewLetDeclaration(name *Identifier, typ Expression, value Expression) *LetDeclaration {
	return &LetDeclaration{nodeImpl: newNodeImpl(NodeLetDeclaration), Name: name, Type: typ, Value: value}
}

// Control flow

type IfExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Condition Expression       `json:"condition"`
	Then      *BlockExpression `json:"then"`
	Else      Expression       `json:"else,omitempty"`
}

func NewIfExpression(condition Expression, then *BlockExpression, elseBranch Expression) *IfExpression {
	return &IfExpression{nodeImpl: newNodeImpl(NodeIfExpression), Condition: condition, Then: then, Else: elseBranch}
}

type LoopExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body *BlockExpression `json:"body"`
}

func NewLoopExpression(body *BlockExpression) *LoopExpression {
	return &LoopExpression{nodeImpl: newNodeImpl(NodeLoopExpression), Body: body}
}

type WhileLoop struct {
	nodeImpl
	expressionMarker
	statementMarker

	Condition Expression       `json:"condition"`
	Body      *BlockExpression `json:"body"`
}

func NewWhileLoop(condition Expression, body *BlockExpression) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: condition, Body: body}
}

type DoWhileLoop struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body      *BlockExpression `json:"body"`
	Condition Expression       `json:"condition"`
}

func NewDoWhileLoop(body *BlockExpression, condition Expression) *DoWhileLoop {
	return &DoWhileLoop{nodeImpl: newNodeImpl(NodeDoWhileLoop), Body: body, Condition: condition}
}

type ForLoop struct {
	nodeImpl
	expressionMarker
	statementMarker

	Variable *Identifier      `json:"variable"`
	Iterable Expression       `json:"iterable"`
	Body     *BlockExpression `json:"body"`
}

func NewForLoop(variable *Identifier, iterable Expression, body *BlockExpression) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeForLoop), Variable: variable, Iterable: iterable, Body: body}
}

type BreakExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewBreakExpression(value Expression) *BreakExpression {
	return &BreakExpression{nodeImpl: newNodeImpl(NodeBreakExpression), Value: value}
}

type ContinueExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewContinueExpression(value Expression) *ContinueExpression {
	return &ContinueExpression{nodeImpl: newNodeImpl(NodeContinueExpression), Value: value}
}

type ReturnExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Value Expression `json:"value,omitempty"`
}

func NewReturnExpression(value Expression) *ReturnExpression {
	return &ReturnExpression{nodeImpl: newNodeImpl(NodeReturnExpression), Value: value}
}
