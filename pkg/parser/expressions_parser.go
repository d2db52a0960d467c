package parser

import (
	"lif/interpreter-go/pkg/ast"
)

// Binary precedence, loosest first.
const (
	_ int = iota
	precedenceOr
	precedenceAnd
	precedenceEquality
	precedenceCompare
	precedenceBitwise
	precedenceShift
	precedenceAdditive
	precedenceMultiplicative
)

var binaryPrecedence = map[string]int{
	"||": precedenceOr,
	"&&": precedenceAnd,
	"==": precedenceEquality,
	"!=": precedenceEquality,
	"<":  precedenceCompare,
	">":  precedenceCompare,
	"<=": precedenceCompare,
	">=": precedenceCompare,
	"&":  precedenceBitwise,
	"|":  precedenceBitwise,
	"^":  precedenceBitwise,
	"<<": precedenceShift,
	">>": precedenceShift,
	"+":  precedenceAdditive,
	"-":  precedenceAdditive,
	"*":  precedenceMultiplicative,
	"/":  precedenceMultiplicative,
	"%":  precedenceMultiplicative,
}

var assignmentOperators = map[string]ast.AssignmentOperator{
	"=":  ast.AssignmentAssign,
	"+=": ast.AssignmentAdd,
	"-=": ast.AssignmentSub,
	"*=": ast.AssignmentMul,
	"/=": ast.AssignmentDiv,
	"%=": ast.AssignmentMod,
}

var unaryOperators = map[string]ast.UnaryOperator{
	"-": ast.UnaryNegate,
	"+": ast.UnaryPlus,
	"!": ast.UnaryNot,
	"~": ast.UnaryComplement,
}

func (p *parser) parseExpression() (ast.Expression, error) {
	tok := p.current()
	if tok.kind == tokenKeyword {
		switch tok.text {
		case "break", "continue", "return":
			return p.parseControl()
		}
	}
	return p.parseAssignment()
}

// parseControl parses break, continue and return. The payload is optional and
// must start on the same line as the keyword.
func (p *parser) parseControl() (ast.Expression, error) {
	keyword := p.advance()
	var value ast.Expression
	if p.startsPayload(keyword) {
		var err error
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	var node ast.Expression
	switch keyword.text {
	case "break":
		node = ast.NewBreakExpression(value)
	case "continue":
		node = ast.NewContinueExpression(value)
	default:
		node = ast.NewReturnExpression(value)
	}
	p.finish(node, keyword.span.Start)
	return node, nil
}

func (p *parser) startsPayload(keyword token) bool {
	next := p.current()
	if next.kind == tokenEOF || next.span.Start.Line != keyword.span.End.Line {
		return false
	}
	if next.kind == tokenPunct {
		switch next.text {
		case ";", "}", ")", "]", ",":
			return false
		}
	}
	return true
}

func (p *parser) parseAssignment() (ast.Expression, error) {
	start := p.current().span.Start
	left, err := p.parseBinary(precedenceOr)
	if err != nil {
		return nil, err
	}
	tok := p.current()
	op, ok := assignmentOperators[tok.text]
	if tok.kind != tokenPunct || !ok {
		return left, nil
	}
	target, ok := left.(ast.AssignmentTarget)
	if !ok {
		return nil, errorAt(left.Span(), "Invalid assignment target.")
	}
	p.advance()
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	node := ast.NewAssignmentExpression(op, target, right)
	p.finish(node, start)
	return node, nil
}

// parseBinary climbs precedence levels; every binary operator is left
// associative.
func (p *parser) parseBinary(minPrecedence int) (ast.Expression, error) {
	start := p.current().span.Start
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.current()
		precedence, ok := binaryPrecedence[tok.text]
		if tok.kind != tokenPunct || !ok || precedence < minPrecedence {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(precedence + 1)
		if err != nil {
			return nil, err
		}
		node := ast.NewBinaryExpression(tok.text, left, right)
		p.finish(node, start)
		left = node
	}
}

func (p *parser) parseUnary() (ast.Expression, error) {
	tok := p.current()
	op, ok := unaryOperators[tok.text]
	if tok.kind != tokenPunct || !ok {
		return p.parsePostfix()
	}
	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	node := ast.NewUnaryExpression(op, operand)
	p.finish(node, tok.span.Start)
	return node, nil
}

func (p *parser) parsePostfix() (ast.Expression, error) {
	start := p.current().span.Start
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atPunct("."):
			p.advance()
			member, err := p.expectMemberName()
			if err != nil {
				return nil, err
			}
			node := ast.NewMemberAccessExpression(expr, member)
			p.finish(node, start)
			expr = node
		case p.atPunct("("):
			p.advance()
			args, err := p.parseArguments(")")
			if err != nil {
				return nil, err
			}
			node := ast.NewFunctionCall(expr, args)
			p.finish(node, start)
			expr = node
		case p.atPunct("["):
			p.advance()
			args, err := p.parseArguments("]")
			if err != nil {
				return nil, err
			}
			node := ast.NewIndexExpression(expr, args)
			p.finish(node, start)
			expr = node
		default:
			return expr, nil
		}
	}
}

// expectMemberName accepts keywords too, so `x.in` names a member.
func (p *parser) expectMemberName() (*ast.Identifier, error) {
	tok := p.current()
	if tok.kind != tokenIdent && tok.kind != tokenKeyword {
		return nil, unexpected(tok, "a member name")
	}
	p.advance()
	id := ast.NewIdentifier(tok.text)
	ast.SetSpan(id, tok.span)
	return id, nil
}

// parseArguments reads a comma separated list up to and including closer. A
// trailing comma is allowed.
func (p *parser) parseArguments(closer string) ([]ast.Expression, error) {
	args := make([]ast.Expression, 0)
	for !p.acceptPunct(closer) {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.acceptPunct(",") {
			continue
		}
		if _, err := p.expectPunct(closer); err != nil {
			return nil, err
		}
		break
	}
	return args, nil
}

// parseTypeExpression parses the annotation after ":". Assignment is excluded
// so that `let x: Integer = 1` keeps its initializer.
func (p *parser) parseTypeExpression() (ast.Expression, error) {
	return p.parseBinary(precedenceOr)
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.current()
	switch tok.kind {
	case tokenInt:
		p.advance()
		lit := ast.NewIntegerLiteral(tok.value)
		ast.SetSpan(lit, tok.span)
		return lit, nil
	case tokenString:
		p.advance()
		lit := ast.NewStringLiteral(tok.text)
		ast.SetSpan(lit, tok.span)
		return lit, nil
	case tokenIdent:
		p.advance()
		id := ast.NewIdentifier(tok.text)
		ast.SetSpan(id, tok.span)
		return id, nil
	case tokenKeyword:
		return p.parseKeywordExpression(tok)
	case tokenPunct:
		switch tok.text {
		case "(":
			p.advance()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "[":
			p.advance()
			elements, err := p.parseArguments("]")
			if err != nil {
				return nil, err
			}
			lit := ast.NewArrayLiteral(elements)
			p.finish(lit, tok.span.Start)
			return lit, nil
		case "{":
			return p.parseBlock()
		}
	}
	return nil, unexpected(tok, "an expression")
}

func (p *parser) parseKeywordExpression(tok token) (ast.Expression, error) {
	switch tok.text {
	case "true", "false":
		p.advance()
		lit := ast.NewBooleanLiteral(tok.text == "true")
		ast.SetSpan(lit, tok.span)
		return lit, nil
	case "if":
		return p.parseIf()
	case "loop":
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node := ast.NewLoopExpression(body)
		p.finish(node, tok.span.Start)
		return node, nil
	case "while":
		p.advance()
		condition, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		node := ast.NewWhileLoop(condition, body)
		p.finish(node, tok.span.Start)
		return node, nil
	case "do":
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("while"); err != nil {
			return nil, err
		}
		condition, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		node := ast.NewDoWhileLoop(body, condition)
		p.finish(node, tok.span.Start)
		return node, nil
	case "for":
		return p.parseFor()
	case "function":
		return p.parseFunction()
	case "class":
		return p.parseClass()
	case "generic":
		return p.parseGeneric()
	case "break", "continue", "return":
		return p.parseControl()
	}
	return nil, unexpected(tok, "an expression")
}

func (p *parser) parseIf() (ast.Expression, error) {
	start := p.advance().span.Start
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBranch ast.Expression
	if p.acceptKeyword("else") {
		if p.atKeyword("if") {
			elseBranch, err = p.parseIf()
		} else {
			elseBranch, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	node := ast.NewIfExpression(condition, then, elseBranch)
	p.finish(node, start)
	return node, nil
}

func (p *parser) parseFor() (ast.Expression, error) {
	start := p.advance().span.Start
	variable, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := ast.NewForLoop(variable, iterable, body)
	p.finish(node, start)
	return node, nil
}
