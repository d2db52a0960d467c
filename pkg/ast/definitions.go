package ast

// Definitions

type FunctionParameter struct {
	nodeImpl

	Name *Identifier `json:"name"`
	Type Expression  `json:"annotation,omitempty"`
	Rest bool        `json:"rest,omitempty"`
}

func NewFunctionParameter(name *Identifier, typ Expression, rest bool) *FunctionParameter {
	return &FunctionParameter{nodeImpl: newNodeImpl(NodeFunctionParameter), Name: name, Type: typ, Rest: rest}
}

// FunctionDefinition is both the named declaration form and the anonymous
// function expression; ID is nil for the latter.
type FunctionDefinition struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID         *Identifier          `json:"id,omitempty"`
	Params     []*FunctionParameter `json:"params"`
	ReturnType Expression           `json:"returnType,omitempty"`
	Body       *BlockExpression     `json:"body"`
}

func NewFunctionDefinition(id *Identifier, params []*FunctionParameter, returnType Expression, body *BlockExpression) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), ID: id, Params: params, ReturnType: returnType, Body: body}
}

// ClassDefinition declares a class. Methods land in the method table; statics
// are stored as constants in the class's static table.
type ClassDefinition struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID      *Identifier           `json:"id,omitempty"`
	Parent  Expression            `json:"parent,omitempty"`
	Methods []*FunctionDefinition `json:"methods"`
	Statics []*FunctionDefinition `json:"statics,omitempty"`
}

func NewClassDefinition(id *Identifier, parent Expression, methods []*FunctionDefinition, statics []*FunctionDefinition) *ClassDefinition {
	return &ClassDefinition{nodeImpl: newNodeImpl(NodeClassDefinition), ID: id, Parent: parent, Methods: methods, Statics: statics}
}

// GenericDefinition binds a template that is re-evaluated per instantiation.
type GenericDefinition struct {
	nodeImpl
	expressionMarker
	statementMarker

	ID     *Identifier   `json:"id,omitempty"`
	Params []*Identifier `json:"params"`
	Body   Expression    `json:"body"`
}

func NewGenericDefinition(id *Identifier, params []*Identifier, body Expression) *GenericDefinition {
	return &GenericDefinition{nodeImpl: newNodeImpl(NodeGenericDefinition), ID: id, Params: params, Body: body}
}

// Program is the root of a parsed source file.
type Program struct {
	nodeImpl

	Body   []Statement `json:"body"`
	Source *Source     `json:"-"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}
