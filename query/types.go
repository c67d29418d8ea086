package query

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenNot
	TokenAs
	TokenGroup
	TokenBy
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenCase
	TokenWhen
	TokenThen
	TokenElse
	TokenEnd

	// Operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenStar         // *
	TokenSlash        // /

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenSelect:       "SELECT",
	TokenFrom:         "FROM",
	TokenWhere:        "WHERE",
	TokenAnd:          "AND",
	TokenOr:           "OR",
	TokenNot:          "NOT",
	TokenAs:           "AS",
	TokenGroup:        "GROUP",
	TokenBy:           "BY",
	TokenOrder:        "ORDER",
	TokenAsc:          "ASC",
	TokenDesc:         "DESC",
	TokenLimit:        "LIMIT",
	TokenCase:         "CASE",
	TokenWhen:         "WHEN",
	TokenThen:         "THEN",
	TokenElse:         "ELSE",
	TokenEnd:          "END",
	TokenEqual:        "'='",
	TokenNotEqual:     "'!='",
	TokenLess:         "'<'",
	TokenGreater:      "'>'",
	TokenLessEqual:    "'<='",
	TokenGreaterEqual: "'>='",
	TokenStar:         "'*'",
	TokenSlash:        "'/'",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenComma:        "','",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenEOF:          "end of query",
	TokenError:        "invalid input",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset of the token in the query
}

// Plan is the parsed, structured form of a query. A Plan is built fresh for
// every execution and holds no state once results are produced.
type Plan struct {
	Source     string       // FROM name; required by the grammar, ignored by execution
	Star       bool         // SELECT *
	SelectList []SelectItem // resolved select list, empty when Star is set
	Filter     Predicate    // nil when there is no WHERE clause
	GroupBy    []string     // GROUP BY field names
	OrderBy    *OrderByItem // nil when there is no ORDER BY clause
	Limit      *int64       // nil when there is no LIMIT clause
}

// Columns returns the output column names in select-list order. For SELECT *
// it returns nil; the input table decides the columns.
func (p *Plan) Columns() []string {
	if p.Star {
		return nil
	}
	columns := make([]string, len(p.SelectList))
	for i, item := range p.SelectList {
		columns[i] = item.Alias
	}
	return columns
}

// HasAggregate reports whether any select item is an aggregate.
func (p *Plan) HasAggregate() bool {
	for _, item := range p.SelectList {
		if item.Expr.IsAggregate() {
			return true
		}
	}
	return false
}

// isGrouped reports whether the select list is evaluated once per group
func (p *Plan) isGrouped() bool {
	return !p.Star && (len(p.GroupBy) > 0 || p.HasAggregate())
}

// hasOutputColumn reports whether name matches a select alias, ignoring case
func (p *Plan) hasOutputColumn(name string) bool {
	for _, item := range p.SelectList {
		if strings.EqualFold(item.Alias, name) {
			return true
		}
	}
	return false
}

// OrderByItem represents the column to sort by
type OrderByItem struct {
	Column string // Column name or alias
	Desc   bool   // DESC vs ASC (default)
}

// SelectItem is one entry of the SELECT list. Alias is always set once the
// plan is resolved.
type SelectItem struct {
	Expr  Expression
	Alias string
	// Explicit is true when the alias came from the query text.
	Explicit bool

	pos int // offset of the item in the query
}

// AggregateKind enumerates the aggregate functions the engine understands.
type AggregateKind int

const (
	AggSum AggregateKind = iota
	AggCount
	AggAvg
	AggConditionalCount
)

func (k AggregateKind) String() string {
	switch k {
	case AggSum:
		return "SUM"
	case AggCount:
		return "COUNT"
	case AggAvg:
		return "AVG"
	case AggConditionalCount:
		return "CONDITIONAL_COUNT"
	default:
		return fmt.Sprintf("AggregateKind(%d)", int(k))
	}
}

// defaultAlias is the column name used when an aggregate has no AS clause.
func (k AggregateKind) defaultAlias() string {
	switch k {
	case AggSum:
		return "sum_result"
	case AggCount:
		return "count_result"
	case AggAvg:
		return "avg_result"
	default:
		return "rate_result"
	}
}

// Expression is a select-list expression evaluated over a group of rows.
// Projection evaluates it over a group of exactly one row.
type Expression interface {
	// Evaluate computes the expression for a group. It never fails:
	// non-numeric operands coerce to 0 and empty groups produce 0.
	Evaluate(group []map[string]interface{}) interface{}
	// IsAggregate reports whether the expression folds a whole group.
	IsAggregate() bool
	// DefaultAlias is the output column name used without AS.
	DefaultAlias() string
	String() string
}

// FieldRef references a single field of the row.
type FieldRef struct {
	Name string
}

// Operand is the argument of SUM or AVG: a field or a product of two fields.
type Operand interface {
	// Number returns the operand's value in row, non-numeric values
	// coercing to 0; integral reports whether it is an integer.
	Number(row map[string]interface{}) (value float64, integral bool)
	String() string
}

// Product multiplies two fields; it only appears as a SUM or AVG argument.
type Product struct {
	Left  string
	Right string
}

// AggregateExpr is SUM, COUNT or AVG over a group.
type AggregateExpr struct {
	Kind AggregateKind
	Arg  Operand // SUM and AVG only
	// Text is the COUNT argument as written, empty for COUNT(*). It is
	// never evaluated.
	Text string
}

// ConditionalCountExpr counts the rows of a group matching a condition,
// i.e. SUM(CASE WHEN cond THEN 1 ELSE 0 END). With a scale literal it is
// a rate over the group size instead, times the scale; "/ COUNT(*)" alone
// leaves the raw count.
type ConditionalCountExpr struct {
	Condition Predicate
	Scale     float64 // multiplier; 1 when no scale literal was given
	Scaled    bool
	Divided   bool // "/ COUNT(*)" was present
}

func (f *FieldRef) IsAggregate() bool             { return false }
func (a *AggregateExpr) IsAggregate() bool        { return true }
func (c *ConditionalCountExpr) IsAggregate() bool { return true }

func (f *FieldRef) DefaultAlias() string             { return strings.ToLower(f.Name) }
func (a *AggregateExpr) DefaultAlias() string        { return a.Kind.defaultAlias() }
func (c *ConditionalCountExpr) DefaultAlias() string { return AggConditionalCount.defaultAlias() }

func (f *FieldRef) String() string { return f.Name }
func (p *Product) String() string  { return p.Left + " * " + p.Right }

func (a *AggregateExpr) String() string {
	switch {
	case a.Arg != nil:
		return a.Kind.String() + "(" + a.Arg.String() + ")"
	case a.Text != "":
		return a.Kind.String() + "(" + a.Text + ")"
	default:
		return a.Kind.String() + "(*)"
	}
}

func (c *ConditionalCountExpr) String() string {
	s := "SUM(CASE WHEN " + c.Condition.String() + " THEN 1 ELSE 0 END)"
	if c.Scaled {
		s = formatNumber(c.Scale) + " * " + s
	}
	if c.Divided {
		s += " / COUNT(*)"
	}
	return s
}
