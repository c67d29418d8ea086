package query

import (
	"cmp"
	"slices"

	"github.com/vegasq/retailq/table"
)

// ApplyOrderBy sorts a copy of rows on one column. The sort is stable: rows
// with equal keys keep their relative order in both directions.
func ApplyOrderBy(rows []map[string]interface{}, orderBy *OrderByItem) []map[string]interface{} {
	sorted := make([]map[string]interface{}, len(rows))
	copy(sorted, rows)
	if orderBy == nil || len(sorted) < 2 {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b map[string]interface{}) int {
		va, _ := table.Lookup(a, orderBy.Column)
		vb, _ := table.Lookup(b, orderBy.Column)
		c := compareValues(va, vb)
		if orderBy.Desc {
			return -c
		}
		return c
	})

	return sorted
}

// compareValues compares numerically when both sides parse as numbers and
// falls back to case-sensitive string comparison otherwise. Missing values
// compare as the empty string.
func compareValues(a, b interface{}) int {
	aNum, _, aOK := toNumber(a)
	bNum, _, bOK := toNumber(b)
	if aOK && bOK {
		return cmp.Compare(aNum, bNum)
	}
	return cmp.Compare(stringify(a), stringify(b))
}

// ApplyLimit keeps at most limit rows from the start. A nil limit keeps
// everything and LIMIT 0 yields no rows.
func ApplyLimit(rows []map[string]interface{}, limit *int64) []map[string]interface{} {
	if limit == nil || *limit >= int64(len(rows)) {
		return rows
	}
	if *limit <= 0 {
		return []map[string]interface{}{}
	}
	return rows[:*limit]
}
