package parser

import (
	"lif/interpreter-go/pkg/ast"
)

// parseFunction handles both `function name(...)` declarations and anonymous
// function expressions.
func (p *parser) parseFunction() (ast.Expression, error) {
	start := p.advance().span.Start
	var id *ast.Identifier
	if p.current().kind == tokenIdent {
		var err error
		if id, err = p.expectIdentifier(); err != nil {
			return nil, err
		}
	}
	fn, err := p.parseFunctionCore(id, start)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// parseFunctionCore parses `(params) (: type)? block` after the name.
func (p *parser) parseFunctionCore(id *ast.Identifier, start ast.Position) (*ast.FunctionDefinition, error) {
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	var returnType ast.Expression
	if p.acceptPunct(":") {
		if returnType, err = p.parseTypeExpression(); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn := ast.NewFunctionDefinition(id, params, returnType, body)
	p.finish(fn, start)
	return fn, nil
}

func (p *parser) parseParameterList() ([]*ast.FunctionParameter, error) {
	params := make([]*ast.FunctionParameter, 0)
	for !p.acceptPunct(")") {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		if n := len(params); n > 0 && params[n-1].Rest {
			return nil, errorAt(param.Span(), "A rest parameter must be the last parameter.")
		}
		params = append(params, param)
		if p.acceptPunct(",") {
			continue
		}
		if _, err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		break
	}
	return params, nil
}

func (p *parser) parseParameter() (*ast.FunctionParameter, error) {
	start := p.current().span.Start
	rest := p.acceptPunct("...")
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	var typ ast.Expression
	if p.acceptPunct(":") {
		if typ, err = p.parseTypeExpression(); err != nil {
			return nil, err
		}
	}
	param := ast.NewFunctionParameter(name, typ, rest)
	p.finish(param, start)
	return param, nil
}

func (p *parser) parseClass() (ast.Expression, error) {
	start := p.advance().span.Start
	var id *ast.Identifier
	if p.current().kind == tokenIdent {
		var err error
		if id, err = p.expectIdentifier(); err != nil {
			return nil, err
		}
	}
	var parent ast.Expression
	if p.acceptPunct(":") {
		var err error
		if parent, err = p.parsePostfix(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	methods := make([]*ast.FunctionDefinition, 0)
	var statics []*ast.FunctionDefinition
	for !p.acceptPunct("}") {
		if p.acceptPunct(";") {
			continue
		}
		memberStart := p.current().span.Start
		static := p.acceptKeyword("static")
		p.acceptKeyword("function")
		name, err := p.expectMemberName()
		if err != nil {
			return nil, err
		}
		fn, err := p.parseFunctionCore(name, memberStart)
		if err != nil {
			return nil, err
		}
		if static {
			statics = append(statics, fn)
		} else {
			methods = append(methods, fn)
		}
	}
	class := ast.NewClassDefinition(id, parent, methods, statics)
	p.finish(class, start)
	return class, nil
}

// parseGeneric parses `generic Name[T, U] body`; the name is optional.
func (p *parser) parseGeneric() (ast.Expression, error) {
	start := p.advance().span.Start
	var id *ast.Identifier
	if p.current().kind == tokenIdent {
		var err error
		if id, err = p.expectIdentifier(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectPunct("["); err != nil {
		return nil, err
	}
	params := make([]*ast.Identifier, 0)
	for !p.acceptPunct("]") {
		param, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.acceptPunct(",") {
			continue
		}
		if _, err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		break
	}
	if len(params) == 0 {
		return nil, errorAt(p.prev.span, "A generic needs at least one parameter.")
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	generic := ast.NewGenericDefinition(id, params, body)
	p.finish(generic, start)
	return generic, nil
}
