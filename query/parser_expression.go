package query

import (
	"strconv"
	"strings"
)

// parseSelectList parses the SELECT list. star is true for a lone "*".
func (p *Parser) parseSelectList() (bool, []SelectItem, error) {
	if p.current().Type == TokenStar {
		p.advance()
		if p.current().Type == TokenComma {
			return false, nil, p.errorf(p.current(), "* cannot be combined with other select items")
		}
		return true, nil, nil
	}

	var items []SelectItem
	for {
		if p.current().Type == TokenStar {
			return false, nil, p.errorf(p.current(), "* cannot be combined with other select items")
		}

		item, err := p.parseSelectItem()
		if err != nil {
			return false, nil, err
		}
		items = append(items, item)

		// Check for comma (more items)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	return false, items, nil
}

// parseSelectItem parses a single SELECT item with its optional alias
func (p *Parser) parseSelectItem() (SelectItem, error) {
	item := SelectItem{pos: p.current().Pos}

	expr, err := p.parseSelectExpression()
	if err != nil {
		return item, err
	}
	item.Expr = expr

	// Check for AS alias
	if p.current().Type == TokenAs {
		p.advance()
		tok := p.current()
		if tok.Type != TokenIdent && tok.Type != TokenString {
			return item, p.errorf(tok, "expected alias name after AS, got %s", describe(tok))
		}
		item.Alias = tok.Value
		item.Explicit = true
		p.advance()
	} else if p.current().Type == TokenIdent && !isKeyword(p.current().Value) {
		// Implicit alias (name without AS)
		item.Alias = p.current().Value
		item.Explicit = true
		p.advance()
	}

	return item, nil
}

// parseSelectExpression parses one select expression:
//
//	field
//	SUM(field) | SUM(field * field) | COUNT(*) | COUNT(expr) | AVG(field)
//	[scale *] [SUM(] [scale *] CASE WHEN cond THEN 1 ELSE 0 END [)] [/ COUNT(*)]
func (p *Parser) parseSelectExpression() (Expression, error) {
	scaleTok := p.current()
	scale, scaled, err := p.parseScale()
	if err != nil {
		return nil, err
	}

	var expr Expression
	tok := p.current()
	switch {
	case tok.Type == TokenCase:
		cond, err := p.parseCaseCount()
		if err != nil {
			return nil, err
		}
		expr = &ConditionalCountExpr{Condition: cond, Scale: 1}
	case tok.Type == TokenIdent && p.peek().Type == TokenLeftParen:
		expr, err = p.parseAggregateFunction()
		if err != nil {
			return nil, err
		}
	case tok.Type == TokenIdent:
		p.advance()
		if p.current().Type == TokenStar {
			return nil, p.errorf(p.current(), "products are only supported inside SUM or AVG")
		}
		expr = &FieldRef{Name: tok.Value}
	default:
		return nil, p.errorf(tok, "expected select expression, got %s", describe(tok))
	}

	if scaled {
		cc, ok := expr.(*ConditionalCountExpr)
		if !ok {
			return nil, p.errorf(scaleTok, "a scale factor is only supported before a conditional count")
		}
		if cc.Scaled {
			return nil, p.errorf(scaleTok, "conditional count is scaled twice")
		}
		cc.Scale = scale
		cc.Scaled = true
	}

	if p.current().Type == TokenSlash {
		cc, ok := expr.(*ConditionalCountExpr)
		if !ok {
			return nil, p.errorf(p.current(), "division is only supported as <conditional count> / COUNT(*)")
		}
		if err := p.parseDivideByCount(); err != nil {
			return nil, err
		}
		cc.Divided = true
	}

	return expr, nil
}

// parseScale consumes an optional "<number> *" prefix
func (p *Parser) parseScale() (float64, bool, error) {
	tok := p.current()
	if tok.Type != TokenNumber || p.peek().Type != TokenStar {
		return 0, false, nil
	}

	scale, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return 0, false, p.errorf(tok, "invalid number %q", tok.Value)
	}
	p.advance() // number
	p.advance() // *
	return scale, true, nil
}

// parseDivideByCount consumes "/ COUNT(*)"
func (p *Parser) parseDivideByCount() error {
	p.advance() // /

	tok := p.current()
	if tok.Type != TokenIdent || !strings.EqualFold(tok.Value, "COUNT") {
		return p.errorf(tok, "expected COUNT(*) after '/', got %s", describe(tok))
	}
	p.advance()
	for _, want := range []TokenType{TokenLeftParen, TokenStar, TokenRightParen} {
		if _, err := p.expect(want); err != nil {
			return err
		}
	}
	return nil
}

// parseAggregateFunction parses SUM(...), COUNT(...) and AVG(...)
func (p *Parser) parseAggregateFunction() (Expression, error) {
	nameTok := p.current()
	funcName := strings.ToUpper(nameTok.Value)
	switch funcName {
	case "SUM", "COUNT", "AVG":
	default:
		return nil, p.errorf(nameTok, "unsupported function %s", nameTok.Value)
	}
	p.advance() // skip function name

	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	var expr Expression
	switch funcName {
	case "COUNT":
		if p.current().Type == TokenStar && p.peek().Type == TokenRightParen {
			p.advance()
			expr = &AggregateExpr{Kind: AggCount}
			break
		}
		// COUNT(expr) counts rows just like COUNT(*); the argument is kept
		// as written and never evaluated.
		text, err := p.skipArgument()
		if err != nil {
			return nil, err
		}
		expr = &AggregateExpr{Kind: AggCount, Text: text}
	case "SUM":
		scaleTok := p.current()
		scale, scaled, err := p.parseScale()
		if err != nil {
			return nil, err
		}
		if p.current().Type == TokenCase {
			cond, err := p.parseCaseCount()
			if err != nil {
				return nil, err
			}
			cc := &ConditionalCountExpr{Condition: cond, Scale: 1}
			if scaled {
				cc.Scale = scale
				cc.Scaled = true
			}
			expr = cc
			break
		}
		if scaled {
			return nil, p.errorf(scaleTok, "a scale factor is only supported before a conditional count")
		}
		arg, err := p.parseAggregateArgument()
		if err != nil {
			return nil, err
		}
		expr = &AggregateExpr{Kind: AggSum, Arg: arg}
	case "AVG":
		arg, err := p.parseAggregateArgument()
		if err != nil {
			return nil, err
		}
		expr = &AggregateExpr{Kind: AggAvg, Arg: arg}
	}

	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	return expr, nil
}

// skipArgument consumes a balanced token run up to, not including, the
// closing parenthesis of a function call and returns its source text
func (p *Parser) skipArgument() (string, error) {
	start := p.current()
	depth := 0
	for {
		tok := p.current()
		switch tok.Type {
		case TokenEOF:
			return "", p.errorf(tok, "expected ')', got %s", describe(tok))
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			if depth == 0 {
				if tok.Pos == start.Pos {
					return "", p.errorf(tok, "expected argument or * in COUNT()")
				}
				return strings.TrimSpace(p.input[start.Pos:tok.Pos]), nil
			}
			depth--
		}
		p.advance()
	}
}

// parseAggregateArgument parses "field" or "field * field"
func (p *Parser) parseAggregateArgument() (Operand, error) {
	left, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenStar {
		return &FieldRef{Name: left.Value}, nil
	}
	p.advance() // *

	right, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	return &Product{Left: left.Value, Right: right.Value}, nil
}

// parseCaseCount parses CASE WHEN cond THEN 1 ELSE 0 END
func (p *Parser) parseCaseCount() (Predicate, error) {
	p.advance() // CASE

	if _, err := p.expect(TokenWhen); err != nil {
		return nil, err
	}

	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenThen); err != nil {
		return nil, err
	}
	if err := p.expectNumber(1); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenElse); err != nil {
		return nil, err
	}
	if err := p.expectNumber(0); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEnd); err != nil {
		return nil, err
	}

	return cond, nil
}

// expectNumber consumes a numeric literal equal to want
func (p *Parser) expectNumber(want float64) error {
	tok := p.current()
	if tok.Type == TokenNumber {
		if f, err := strconv.ParseFloat(tok.Value, 64); err == nil && f == want {
			p.advance()
			return nil
		}
	}
	return p.errorf(tok, "conditional count must be CASE WHEN <condition> THEN 1 ELSE 0 END, got %s", describe(tok))
}

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Predicate, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, &ParseError{Pos: p.current().Pos, Msg: "condition", Err: err}
	}
	defer p.depthCounter.Exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrPredicate{Left: left, Right: right}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &AndPredicate{Left: left, Right: right}
	}

	return left, nil
}

// parseUnary parses NOT and parenthesised conditions
func (p *Parser) parseUnary() (Predicate, error) {
	switch p.current().Type {
	case TokenNot:
		if err := p.depthCounter.Enter(); err != nil {
			return nil, &ParseError{Pos: p.current().Pos, Msg: "condition", Err: err}
		}
		defer p.depthCounter.Exit()

		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotPredicate{Inner: inner}, nil
	case TokenLeftParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return p.parseComparison()
}

// parseComparison parses "field = literal" or a bare flag field
func (p *Parser) parseComparison() (Predicate, error) {
	field, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	if p.current().Type != TokenEqual {
		return &FlagPredicate{Field: field.Value}, nil
	}
	p.advance() // =

	lit := p.current()
	var value interface{}
	switch lit.Type {
	case TokenString:
		value = lit.Value
	case TokenNumber:
		f, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return nil, p.errorf(lit, "invalid number %q", lit.Value)
		}
		value = f
	case TokenBool:
		value = strings.EqualFold(lit.Value, "true")
	default:
		return nil, p.errorf(lit, "expected literal after '=', got %s", describe(lit))
	}
	p.advance()

	return &EqualsPredicate{Field: field.Value, Value: value}, nil
}
