package query

import (
	"maps"
)

// ApplySelectList evaluates the select list against each row on its own,
// as a group of one. Fields missing from a row come out as nil.
func ApplySelectList(rows []map[string]interface{}, selectList []SelectItem) []map[string]interface{} {
	projected := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		group := []map[string]interface{}{row}
		newRow := make(map[string]interface{}, len(selectList))
		for _, item := range selectList {
			newRow[item.Alias] = item.Expr.Evaluate(group)
		}
		projected = append(projected, newRow)
	}
	return projected
}

// passThrough returns shallow copies of rows so callers cannot reach the
// input table through the result
func passThrough(rows []map[string]interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		out[i] = maps.Clone(row)
	}
	return out
}
