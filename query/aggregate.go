package query

import (
	"strings"

	"github.com/vegasq/retailq/table"
)

// Group represents a group of rows for aggregation
type Group struct {
	Key  []string                 // lower-cased GROUP BY values; missing fields are ""
	Rows []map[string]interface{} // member rows in input order
}

// GroupRows partitions rows by the lower-cased values of the GROUP BY
// fields. Groups are returned in the order their first member appears.
func GroupRows(rows []map[string]interface{}, groupBy []string) []*Group {
	index := make(map[string]*Group)
	var groups []*Group

	for _, row := range rows {
		key := computeGroupKey(row, groupBy)
		hash := strings.Join(key, "\x00")

		if group, exists := index[hash]; exists {
			group.Rows = append(group.Rows, row)
			continue
		}
		group := &Group{Key: key, Rows: []map[string]interface{}{row}}
		index[hash] = group
		groups = append(groups, group)
	}

	return groups
}

// computeGroupKey returns the key tuple of row for the GROUP BY fields
func computeGroupKey(row map[string]interface{}, groupBy []string) []string {
	key := make([]string, len(groupBy))
	for i, col := range groupBy {
		value, _ := table.Lookup(row, col)
		key[i] = strings.ToLower(stringify(value))
	}
	return key
}

// ApplyGroupByAndAggregate groups rows and evaluates the select list once
// per group. Without GROUP BY fields the whole input is a single group, so
// an aggregate query over an empty table still yields one row.
func ApplyGroupByAndAggregate(rows []map[string]interface{}, groupBy []string, selectList []SelectItem) []map[string]interface{} {
	var groups []*Group
	if len(groupBy) == 0 {
		groups = []*Group{{Rows: rows}}
	} else {
		groups = GroupRows(rows, groupBy)
	}

	result := make([]map[string]interface{}, 0, len(groups))
	for _, group := range groups {
		result = append(result, computeAggregates(group, selectList))
	}
	return result
}

// computeAggregates computes the output row for one group
func computeAggregates(group *Group, selectList []SelectItem) map[string]interface{} {
	out := make(map[string]interface{}, len(selectList))
	for _, item := range selectList {
		out[item.Alias] = item.Expr.Evaluate(group.Rows)
	}
	return out
}

// representatives returns the first member row of each group
func representatives(groups []*Group) []map[string]interface{} {
	out := make([]map[string]interface{}, len(groups))
	for i, group := range groups {
		out[i] = group.Rows[0]
	}
	return out
}

// Evaluate returns the field value of the group's first member. Under
// GROUP BY this is the representative-row policy for fields outside the
// GROUP BY list; for grouped fields every member agrees up to case.
func (f *FieldRef) Evaluate(group []map[string]interface{}) interface{} {
	if len(group) == 0 {
		return nil
	}
	value, _ := table.Lookup(group[0], f.Name)
	return value
}

// Number reads the field with aggregate coercion
func (f *FieldRef) Number(row map[string]interface{}) (float64, bool) {
	value, _ := table.Lookup(row, f.Name)
	return numberOrZero(value)
}

// Number computes left * right for one row with aggregate coercion
func (p *Product) Number(row map[string]interface{}) (float64, bool) {
	lv, _ := table.Lookup(row, p.Left)
	rv, _ := table.Lookup(row, p.Right)
	l, lInt := numberOrZero(lv)
	r, rInt := numberOrZero(rv)
	return l * r, lInt && rInt
}

// Evaluate computes SUM, COUNT or AVG over the group
func (a *AggregateExpr) Evaluate(group []map[string]interface{}) interface{} {
	switch a.Kind {
	case AggCount:
		return int64(len(group))
	case AggSum:
		sum, integral := a.sum(group)
		return numberValue(sum, integral)
	case AggAvg:
		if len(group) == 0 {
			return float64(0)
		}
		sum, _ := a.sum(group)
		return sum / float64(len(group))
	default:
		return nil
	}
}

// sum adds up the numeric-coerced argument over the group. integral is true
// when every operand was an integer.
func (a *AggregateExpr) sum(group []map[string]interface{}) (float64, bool) {
	sum := 0.0
	integral := true
	if a.Arg == nil {
		return sum, integral
	}

	for _, row := range group {
		f, isInt := a.Arg.Number(row)
		sum += f
		integral = integral && isInt
	}

	return sum, integral
}

// Evaluate counts the matching rows. Without a scale factor the raw count is
// returned, "/ COUNT(*)" or not; with one the result is
// scale * matching / group size.
func (c *ConditionalCountExpr) Evaluate(group []map[string]interface{}) interface{} {
	matching := 0
	for _, row := range group {
		if c.Condition.Match(row) {
			matching++
		}
	}

	if !c.Scaled {
		return int64(matching)
	}
	if len(group) == 0 {
		return float64(0)
	}
	return c.Scale * float64(matching) / float64(len(group))
}

// numberValue returns an int64 for integral results that fit, else a float64
func numberValue(f float64, integral bool) interface{} {
	if integral && f >= -(1<<53) && f <= 1<<53 {
		return int64(f)
	}
	return f
}
