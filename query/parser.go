package query

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Parser parses query tokens into a Plan
type Parser struct {
	input        string
	tokens       []Token
	pos          int
	depthCounter *ExpressionDepthCounter
}

// NewParser creates a new parser over tokens lexed from input
func NewParser(input string, tokens []Token) *Parser {
	return &Parser{
		input:        input,
		tokens:       tokens,
		pos:          0,
		depthCounter: NewExpressionDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: "", Pos: len(p.input)}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF, Value: "", Pos: len(p.input)}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// errorf builds a ParseError located at tok
func (p *Parser) errorf(tok Token, format string, args ...interface{}) error {
	return &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

// expect checks if current token matches expected type and advances
func (p *Parser) expect(tokType TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != tokType {
		return tok, p.errorf(tok, "expected %v, got %s", tokType, describe(tok))
	}
	p.advance()
	return tok, nil
}

// describe renders a token for error messages
func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of query"
	case TokenIdent, TokenString, TokenNumber, TokenBool:
		return fmt.Sprintf("%v %q", tok.Type, tok.Value)
	default:
		return tok.Type.String()
	}
}

// Parse parses a query string into a Plan. Every failure is a *ParseError.
func Parse(query string) (*Plan, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	tokens := Tokenize(query)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}

	// The lexer stops at the first bad character, so it is always last
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		if last.Value == "unterminated string" {
			return nil, &ParseError{Pos: last.Pos, Msg: "unterminated string literal"}
		}
		return nil, &ParseError{Pos: last.Pos, Msg: fmt.Sprintf("invalid character %q", last.Value)}
	}

	parser := NewParser(query, tokens)
	plan, err := parser.parseQuery()
	if err != nil {
		return nil, err
	}

	if tok := parser.current(); tok.Type != TokenEOF {
		return nil, parser.errorf(tok, "unexpected %s after query", describe(tok))
	}

	return plan, nil
}

// parseQuery parses: SELECT list FROM name [WHERE cond] [GROUP BY list]
// [ORDER BY field [ASC|DESC]] [LIMIT n]
func (p *Parser) parseQuery() (*Plan, error) {
	if _, err := p.expect(TokenSelect); err != nil {
		return nil, err
	}

	star, selectList, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenFrom); err != nil {
		return nil, err
	}

	source := p.current()
	if source.Type != TokenIdent && source.Type != TokenString {
		return nil, p.errorf(source, "expected source name after FROM, got %s", describe(source))
	}
	p.advance()

	plan := &Plan{
		Source:     source.Value,
		Star:       star,
		SelectList: selectList,
	}

	// Parse WHERE clause (optional)
	if p.current().Type == TokenWhere {
		filter, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		plan.Filter = filter
	}

	// Parse GROUP BY clause (optional)
	if p.current().Type == TokenGroup {
		groupBy, err := p.parseGroupBy()
		if err != nil {
			return nil, err
		}
		plan.GroupBy = groupBy
	}

	// Parse ORDER BY clause (optional)
	var orderTok Token
	if p.current().Type == TokenOrder {
		orderTok = p.current()
		orderBy, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		plan.OrderBy = orderBy
	}

	// Parse LIMIT clause (optional)
	if p.current().Type == TokenLimit {
		limit, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		plan.Limit = limit
	}

	if err := resolveAliases(plan.SelectList); err != nil {
		return nil, err
	}

	if plan.OrderBy != nil && plan.isGrouped() && !plan.hasOutputColumn(plan.OrderBy.Column) {
		return nil, p.errorf(orderTok, "ORDER BY %s must name an output column of a grouped query", plan.OrderBy.Column)
	}

	return plan, nil
}

// isClauseBoundary reports whether tokType ends the WHERE clause
func isClauseBoundary(tokType TokenType) bool {
	switch tokType {
	case TokenGroup, TokenOrder, TokenLimit, TokenEOF, TokenError:
		return true
	}
	return false
}

// parseWhere parses the WHERE clause. Conditions the predicate grammar does
// not cover (inequalities, column-to-column comparisons, ...) become a
// MatchAllPredicate so that the query still runs over every row.
func (p *Parser) parseWhere() (Predicate, error) {
	whereTok := p.current()
	p.advance()

	start := p.pos
	for !isClauseBoundary(p.current().Type) {
		p.advance()
	}
	if start == p.pos {
		return nil, p.errorf(p.current(), "expected condition after WHERE, got %s", describe(p.current()))
	}

	boundary := p.current()
	clause := make([]Token, 0, p.pos-start+1)
	clause = append(clause, p.tokens[start:p.pos]...)
	clause = append(clause, Token{Type: TokenEOF, Pos: boundary.Pos})

	sub := NewParser(p.input, clause)
	filter, err := sub.parseOr()
	if err == nil && sub.current().Type == TokenEOF {
		return filter, nil
	}
	if errors.Is(err, ErrExpressionTooDeep) {
		return nil, &ParseError{Pos: whereTok.Pos, Msg: "WHERE clause", Err: err}
	}

	text := strings.TrimSpace(p.input[p.tokens[start].Pos:boundary.Pos])
	slog.Default().Warn("unsupported WHERE clause, matching all rows", "where", text)
	return &MatchAllPredicate{Text: text}, nil
}

// parseGroupBy parses GROUP BY col1, col2, ...
func (p *Parser) parseGroupBy() ([]string, error) {
	p.advance() // GROUP
	if _, err := p.expect(TokenBy); err != nil {
		return nil, err
	}

	var columns []string
	for {
		tok, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		columns = append(columns, tok.Value)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	return columns, nil
}

// parseOrderBy parses ORDER BY col [ASC|DESC]
func (p *Parser) parseOrderBy() (*OrderByItem, error) {
	p.advance() // ORDER
	if _, err := p.expect(TokenBy); err != nil {
		return nil, err
	}

	tok := p.current()
	if tok.Type != TokenIdent && tok.Type != TokenString {
		return nil, p.errorf(tok, "expected column name after ORDER BY, got %s", describe(tok))
	}
	p.advance()

	item := &OrderByItem{Column: tok.Value}
	switch p.current().Type {
	case TokenAsc:
		p.advance()
	case TokenDesc:
		item.Desc = true
		p.advance()
	}

	if p.current().Type == TokenComma {
		return nil, p.errorf(p.current(), "ORDER BY supports a single column")
	}

	return item, nil
}

// parseLimit parses LIMIT n
func (p *Parser) parseLimit() (*int64, error) {
	p.advance() // LIMIT

	tok := p.current()
	if tok.Type != TokenNumber {
		return nil, p.errorf(tok, "LIMIT must be a non-negative integer, got %s", describe(tok))
	}

	limit, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil || limit < 0 {
		return nil, p.errorf(tok, "LIMIT must be a non-negative integer, got %q", tok.Value)
	}
	p.advance()

	return &limit, nil
}

// resolveAliases names every select item. Explicit aliases are kept
// (lower-cased) and must be unique; the rest get their default name, with
// _2, _3, ... appended when that name is already taken.
func resolveAliases(items []SelectItem) error {
	taken := make(map[string]bool, len(items))
	for i := range items {
		if !items[i].Explicit {
			continue
		}
		alias := strings.ToLower(items[i].Alias)
		if taken[alias] {
			return &ParseError{Pos: items[i].pos, Msg: fmt.Sprintf("duplicate column alias %q", alias)}
		}
		taken[alias] = true
		items[i].Alias = alias
	}

	for i := range items {
		if items[i].Explicit {
			continue
		}
		base := items[i].Expr.DefaultAlias()
		alias := base
		for n := 2; taken[alias]; n++ {
			alias = fmt.Sprintf("%s_%d", base, n)
		}
		taken[alias] = true
		items[i].Alias = alias
	}

	return nil
}
