package query

import (
	"github.com/vegasq/retailq/table"
)

// Predicate is a boolean test applied to one row during filtering.
type Predicate interface {
	Match(row map[string]interface{}) bool
	String() string
}

// EqualsPredicate is <field> = <literal>. A string literal is compared
// case-sensitively with the stringified field value. A numeric literal
// compares numerically after coercion, so return_status = 1 accepts 1, "1"
// and true. A boolean literal uses the flag encodings.
type EqualsPredicate struct {
	Field string
	Value interface{} // string, float64 or bool
}

// FlagPredicate is a bare field used as a condition.
type FlagPredicate struct {
	Field string
}

// AndPredicate matches when both sides match.
type AndPredicate struct {
	Left, Right Predicate
}

// OrPredicate matches when either side matches.
type OrPredicate struct {
	Left, Right Predicate
}

// NotPredicate negates its operand.
type NotPredicate struct {
	Inner Predicate
}

// MatchAllPredicate stands in for a WHERE clause whose shape is not
// supported. It matches every row.
type MatchAllPredicate struct {
	Text string // the WHERE text that was not understood
}

func (e *EqualsPredicate) Match(row map[string]interface{}) bool {
	value, exists := table.Lookup(row, e.Field)
	switch lit := e.Value.(type) {
	case string:
		return exists && value != nil && stringify(value) == lit
	case float64:
		f, _, ok := toNumber(value)
		return ok && numbersEqual(f, lit)
	case bool:
		if lit {
			return isTrue(value)
		}
		return isFalse(value)
	default:
		return false
	}
}

func (f *FlagPredicate) Match(row map[string]interface{}) bool {
	value, _ := table.Lookup(row, f.Field)
	return isTrue(value)
}

func (a *AndPredicate) Match(row map[string]interface{}) bool {
	return a.Left.Match(row) && a.Right.Match(row)
}

func (o *OrPredicate) Match(row map[string]interface{}) bool {
	return o.Left.Match(row) || o.Right.Match(row)
}

func (n *NotPredicate) Match(row map[string]interface{}) bool {
	return !n.Inner.Match(row)
}

func (m *MatchAllPredicate) Match(row map[string]interface{}) bool {
	return true
}

func (e *EqualsPredicate) String() string {
	switch lit := e.Value.(type) {
	case string:
		return e.Field + " = '" + lit + "'"
	default:
		return e.Field + " = " + stringify(lit)
	}
}

func (a *AndPredicate) String() string {
	return "(" + a.Left.String() + " AND " + a.Right.String() + ")"
}

func (o *OrPredicate) String() string {
	return "(" + o.Left.String() + " OR " + o.Right.String() + ")"
}

func (f *FlagPredicate) String() string     { return f.Field }
func (n *NotPredicate) String() string      { return "NOT " + n.Inner.String() }
func (m *MatchAllPredicate) String() string { return "TRUE /* unsupported: " + m.Text + " */" }

// IsMatchAll reports whether p is the unsupported-shape fallback.
func IsMatchAll(p Predicate) bool {
	_, ok := p.(*MatchAllPredicate)
	return ok
}

// ApplyFilter returns the rows matching filter, in their original order. The
// input slice is not modified; a nil filter keeps every row.
func ApplyFilter(rows []map[string]interface{}, filter Predicate) []map[string]interface{} {
	if filter == nil {
		out := make([]map[string]interface{}, len(rows))
		copy(out, rows)
		return out
	}

	filtered := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if filter.Match(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
