// Package table holds the in-memory record model the query engine reads.
//
// A Table is an ordered sequence of rows with a nominal schema: rows may lack
// fields, which readers treat as absent. Field names are matched
// case-insensitively; stored values keep their original casing.
package table

import (
	"sort"
	"strings"
)

// Row maps a field name to a scalar value (string, number, bool or nil).
type Row = map[string]interface{}

// Table is an ordered sequence of rows plus the column order reported for
// SELECT * queries.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable builds a table from rows, deriving the column list as the sorted
// union of every row's keys.
func NewTable(rows []Row) *Table {
	return &Table{Columns: ColumnsOf(rows), Rows: rows}
}

// Len returns the number of rows. A nil table is empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnsOf returns the sorted union of column names across rows.
func ColumnsOf(rows []Row) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

// Lookup returns the value stored under name, matching the field name
// case-insensitively. The exact key wins, then the lower-case key; among
// other case-folded matches the smallest key in byte order is used.
func Lookup(row Row, name string) (interface{}, bool) {
	if v, ok := row[name]; ok {
		return v, true
	}
	if v, ok := row[strings.ToLower(name)]; ok {
		return v, true
	}

	match, found := "", false
	for key := range row {
		if strings.EqualFold(key, name) && (!found || key < match) {
			match, found = key, true
		}
	}
	if !found {
		return nil, false
	}
	return row[match], true
}

// CanonicalName folds a raw column header into the canonical form used by
// the engine: trimmed, lower-case, with spaces and dashes turned into
// underscores.
func CanonicalName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, name)
}

// Canonical returns a copy of t whose field names are canonical. The input
// table is left untouched. When two raw names fold to the same canonical
// name, the first column wins.
func Canonical(t *Table) *Table {
	if t == nil {
		return &Table{}
	}

	columns := make([]string, 0, len(t.Columns))
	seen := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		c := CanonicalName(col)
		if seen[c] {
			continue
		}
		seen[c] = true
		columns = append(columns, c)
	}

	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out := make(Row, len(row))
		for _, key := range orderedKeys(row, t.Columns) {
			c := CanonicalName(key)
			if _, exists := out[c]; exists {
				continue
			}
			out[c] = row[key]
		}
		rows[i] = out
	}

	return &Table{Columns: columns, Rows: rows}
}

// orderedKeys lists the keys of row in column order, followed by any keys
// the column list does not mention, sorted.
func orderedKeys(row Row, columns []string) []string {
	keys := make([]string, 0, len(row))
	listed := make(map[string]bool, len(columns))
	for _, col := range columns {
		listed[col] = true
		if _, ok := row[col]; ok {
			keys = append(keys, col)
		}
	}

	var extra []string
	for key := range row {
		if !listed[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
