package ast

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeTree reads a syntax tree serialised as YAML or JSON (YAML is a JSON
// superset, so one decoder covers both). The root may be a Program or any
// single statement, which is then wrapped in a Program.
func DecodeTree(data []byte) (*Program, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("tree: parse: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("tree: empty document")
	}
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	if program, ok := node.(*Program); ok {
		return program, nil
	}
	stmt, ok := node.(Statement)
	if !ok {
		return nil, fmt.Errorf("tree: root %s is not a statement", node.NodeType())
	}
	program := NewProgram([]Statement{stmt})
	SetSpan(program, stmt.Span())
	return program, nil
}

func decodeNode(raw map[string]any) (Node, error) {
	node, err := decodeNodeKind(raw)
	if err != nil {
		return nil, err
	}
	if spanRaw, ok := raw["span"].(map[string]any); ok {
		SetSpan(node, decodeSpan(spanRaw))
	}
	return node, nil
}

func decodeNodeKind(raw map[string]any) (Node, error) {
	typ, _ := raw["type"].(string)
	switch NodeType(typ) {
	case NodeProgram:
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		return NewProgram(body), nil
	case NodeIdentifier:
		name, _ := raw["name"].(string)
		return NewIdentifier(name), nil
	case NodeStringLiteral:
		val, _ := raw["value"].(string)
		return NewStringLiteral(val), nil
	case NodeIntegerLiteral:
		val, err := decodeInteger(raw["value"])
		if err != nil {
			return nil, err
		}
		return NewIntegerLiteral(val), nil
	case NodeBooleanLiteral:
		val, _ := raw["value"].(bool)
		return NewBooleanLiteral(val), nil
	case NodeArrayLiteral:
		elements, err := decodeExpressions(raw["elements"])
		if err != nil {
			return nil, err
		}
		return NewArrayLiteral(elements), nil
	case NodeUnaryExpression:
		operand, err := decodeExpressionField(raw, "operand")
		if err != nil {
			return nil, err
		}
		op, _ := raw["operator"].(string)
		return NewUnaryExpression(UnaryOperator(op), operand), nil
	case NodeBinaryExpression:
		left, err := decodeExpressionField(raw, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpressionField(raw, "right")
		if err != nil {
			return nil, err
		}
		op, _ := raw["operator"].(string)
		return NewBinaryExpression(op, left, right), nil
	case NodeFunctionCall:
		callee, err := decodeExpressionField(raw, "callee")
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(raw["arguments"])
		if err != nil {
			return nil, err
		}
		return NewFunctionCall(callee, args), nil
	case NodeIndexExpression:
		object, err := decodeExpressionField(raw, "object")
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(raw["arguments"])
		if err != nil {
			return nil, err
		}
		return NewIndexExpression(object, args), nil
	case NodeMemberAccessExpression:
		object, err := decodeExpressionField(raw, "object")
		if err != nil {
			return nil, err
		}
		member, err := decodeIdentifierField(raw, "member")
		if err != nil {
			return nil, err
		}
		return NewMemberAccessExpression(object, member), nil
	case NodeBlockExpression:
		return decodeBlock(raw)
	case NodeAssignmentExpression:
		left, err := decodeExpressionField(raw, "left")
		if err != nil {
			return nil, err
		}
		target, ok := left.(AssignmentTarget)
		if !ok {
			return nil, fmt.Errorf("tree: %s is not assignable", left.NodeType())
		}
		right, err := decodeExpressionField(raw, "right")
		if err != nil {
			return nil, err
		}
		op, _ := raw["operator"].(string)
		if op == "" {
			op = string(AssignmentAssign)
		}
		return NewAssignmentExpression(AssignmentOperator(op), target, right), nil
	case NodeLetDeclaration:
		name, err := decodeIdentifierField(raw, "name")
		if err != nil {
			return nil, err
		}
		typ, err := decodeOptionalExpression(raw, "annotation")
		if err != nil {
			return nil, err
		}
		value, err := decodeOptionalExpression(raw, "value")
		if err != nil {
			return nil, err
		}
		return NewLetDeclaration(name, typ, value), nil
	case NodeIfExpression:
		condition, err := decodeExpressionField(raw, "condition")
		if err != nil {
			return nil, err
		}
		then, err := decodeBlockField(raw, "then")
		if err != nil {
			return nil, err
		}
		elseBranch, err := decodeOptionalExpression(raw, "else")
		if err != nil {
			return nil, err
		}
		return NewIfExpression(condition, then, elseBranch), nil
	case NodeLoopExpression:
		body, err := decodeBlockField(raw, "body")
		if err != nil {
			return nil, err
		}
		return NewLoopExpression(body), nil
	case NodeWhileLoop:
		condition, err := decodeExpressionField(raw, "condition")
		if err != nil {
			return nil, err
		}
		body, err := decodeBlockField(raw, "body")
		if err != nil {
			return nil, err
		}
		return NewWhileLoop(condition, body), nil
	case NodeDoWhileLoop:
		body, err := decodeBlockField(raw, "body")
		if err != nil {
			return nil, err
		}
		condition, err := decodeExpressionField(raw, "condition")
		if err != nil {
			return nil, err
		}
		return NewDoWhileLoop(body, condition), nil
	case NodeForLoop:
		variable, err := decodeIdentifierField(raw, "variable")
		if err != nil {
			return nil, err
		}
		iterable, err := decodeExpressionField(raw, "iterable")
		if err != nil {
			return nil, err
		}
		body, err := decodeBlockField(raw, "body")
		if err != nil {
			return nil, err
		}
		return NewForLoop(variable, iterable, body), nil
	case NodeBreakExpression:
		value, err := decodeOptionalExpression(raw, "value")
		if err != nil {
			return nil, err
		}
		return NewBreakExpression(value), nil
	case NodeContinueExpression:
		value, err := decodeOptionalExpression(raw, "value")
		if err != nil {
			return nil, err
		}
		return NewContinueExpression(value), nil
	case NodeReturnExpression:
		value, err := decodeOptionalExpression(raw, "value")
		if err != nil {
			return nil, err
		}
		return NewReturnExpression(value), nil
	case NodeFunctionDefinition:
		return decodeFunction(raw)
	case NodeClassDefinition:
		id, err := decodeOptionalIdentifier(raw, "id")
		if err != nil {
			return nil, err
		}
		parent, err := decodeOptionalExpression(raw, "parent")
		if err != nil {
			return nil, err
		}
		methods, err := decodeFunctions(raw["methods"])
		if err != nil {
			return nil, err
		}
		statics, err := decodeFunctions(raw["statics"])
		if err != nil {
			return nil, err
		}
		return NewClassDefinition(id, parent, methods, statics), nil
	case NodeGenericDefinition:
		id, err := decodeOptionalIdentifier(raw, "id")
		if err != nil {
			return nil, err
		}
		paramsRaw, _ := raw["params"].([]any)
		params := make([]*Identifier, 0, len(paramsRaw))
		for _, p := range paramsRaw {
			child, ok := p.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("tree: invalid generic parameter %T", p)
			}
			ident, err := decodeIdentifier(child)
			if err != nil {
				return nil, err
			}
			params = append(params, ident)
		}
		body, err := decodeExpressionField(raw, "body")
		if err != nil {
			return nil, err
		}
		return NewGenericDefinition(id, params, body), nil
	default:
		return nil, fmt.Errorf("tree: unsupported node type %q", typ)
	}
}

func decodeFunction(raw map[string]any) (*FunctionDefinition, error) {
	id, err := decodeOptionalIdentifier(raw, "id")
	if err != nil {
		return nil, err
	}
	paramsRaw, _ := raw["params"].([]any)
	params := make([]*FunctionParameter, 0, len(paramsRaw))
	for _, p := range paramsRaw {
		child, ok := p.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tree: invalid parameter %T", p)
		}
		name, err := decodeIdentifierField(child, "name")
		if err != nil {
			return nil, err
		}
		typ, err := decodeOptionalExpression(child, "annotation")
		if err != nil {
			return nil, err
		}
		rest, _ := child["rest"].(bool)
		param := NewFunctionParameter(name, typ, rest)
		if spanRaw, ok := child["span"].(map[string]any); ok {
			SetSpan(param, decodeSpan(spanRaw))
		}
		params = append(params, param)
	}
	returnType, err := decodeOptionalExpression(raw, "returnType")
	if err != nil {
		return nil, err
	}
	body, err := decodeBlockField(raw, "body")
	if err != nil {
		return nil, err
	}
	return NewFunctionDefinition(id, params, returnType, body), nil
}

func decodeFunctions(value any) ([]*FunctionDefinition, error) {
	list, _ := value.([]any)
	out := make([]*FunctionDefinition, 0, len(list))
	for _, item := range list {
		child, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tree: invalid function entry %T", item)
		}
		node, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		fn, ok := node.(*FunctionDefinition)
		if !ok {
			return nil, fmt.Errorf("tree: expected FunctionDefinition, got %s", node.NodeType())
		}
		out = append(out, fn)
	}
	return out, nil
}

func decodeBlock(raw map[string]any) (*BlockExpression, error) {
	body, err := decodeStatements(raw["body"])
	if err != nil {
		return nil, err
	}
	return NewBlockExpression(body), nil
}

func decodeBlockField(raw map[string]any, field string) (*BlockExpression, error) {
	child, ok := raw[field].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tree: %s missing %q", raw["type"], field)
	}
	node, err := decodeNode(child)
	if err != nil {
		return nil, err
	}
	block, ok := node.(*BlockExpression)
	if !ok {
		return nil, fmt.Errorf("tree: %q must be a BlockExpression, got %s", field, node.NodeType())
	}
	return block, nil
}

func decodeStatements(value any) ([]Statement, error) {
	list, _ := value.([]any)
	out := make([]Statement, 0, len(list))
	for _, item := range list {
		child, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tree: invalid statement %T", item)
		}
		node, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		stmt, ok := node.(Statement)
		if !ok {
			return nil, fmt.Errorf("tree: %s is not a statement", node.NodeType())
		}
		out = append(out, stmt)
	}
	return out, nil
}

func decodeExpressions(value any) ([]Expression, error) {
	list, _ := value.([]any)
	out := make([]Expression, 0, len(list))
	for _, item := range list {
		child, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("tree: invalid expression %T", item)
		}
		expr, err := decodeExpression(child)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func decodeExpression(raw map[string]any) (Expression, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(Expression)
	if !ok {
		return nil, fmt.Errorf("tree: %s is not an expression", node.NodeType())
	}
	return expr, nil
}

func decodeExpressionField(raw map[string]any, field string) (Expression, error) {
	child, ok := raw[field].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tree: %s missing %q", raw["type"], field)
	}
	return decodeExpression(child)
}

func decodeOptionalExpression(raw map[string]any, field string) (Expression, error) {
	child, ok := raw[field].(map[string]any)
	if !ok {
		return nil, nil
	}
	return decodeExpression(child)
}

func decodeIdentifier(raw map[string]any) (*Identifier, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	ident, ok := node.(*Identifier)
	if !ok {
		return nil, fmt.Errorf("tree: expected Identifier, got %s", node.NodeType())
	}
	return ident, nil
}

func decodeIdentifierField(raw map[string]any, field string) (*Identifier, error) {
	switch v := raw[field].(type) {
	case string:
		return NewIdentifier(v), nil
	case map[string]any:
		return decodeIdentifier(v)
	default:
		return nil, fmt.Errorf("tree: %s missing %q", raw["type"], field)
	}
}

func decodeOptionalIdentifier(raw map[string]any, field string) (*Identifier, error) {
	if _, ok := raw[field]; !ok {
		return nil, nil
	}
	return decodeIdentifierField(raw, field)
}

func decodeInteger(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("tree: invalid integer literal %v", value)
	}
}

func decodeSpan(raw map[string]any) Span {
	return Span{
		Start: decodePosition(raw["start"]),
		End:   decodePosition(raw["end"]),
	}
}

func decodePosition(value any) Position {
	raw, ok := value.(map[string]any)
	if !ok {
		return Position{}
	}
	line, _ := decodeInteger(raw["line"])
	column, _ := decodeInteger(raw["column"])
	return Position{Line: int(line), Column: int(column)}
}
