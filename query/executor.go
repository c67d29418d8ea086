package query

import (
	"errors"
	"fmt"

	"github.com/vegasq/retailq/table"
)

// ErrorColumn is the single column of a failed query's result.
const ErrorColumn = "error"

// Result is a derived table: rows keyed by output column name plus the
// column order.
type Result struct {
	Columns []string
	Rows    []map[string]interface{}

	// Err is the typed error behind an error result, nil on success.
	Err error
}

// Failed reports whether the result is an error result.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// errorResult converts err into the one-row, one-column error table.
func errorResult(err error) *Result {
	return &Result{
		Columns: []string{ErrorColumn},
		Rows:    []map[string]interface{}{{ErrorColumn: err.Error()}},
		Err:     err,
	}
}

// Execute parses and runs query against t. It never panics and never
// returns a Go error: any failure becomes a result with a single "error"
// column and one row holding the message. A nil table is treated as empty.
func Execute(query string, t *table.Table) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res = errorResult(&ExecutionError{Stage: "execute", Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	plan, err := Parse(query)
	if err != nil {
		return errorResult(err)
	}

	res, err = Run(plan, t)
	if err != nil {
		return errorResult(err)
	}
	return res
}

// Run executes a parsed plan: filter, then aggregate or project, then sort,
// then limit. The input table is never modified.
func Run(plan *Plan, t *table.Table) (*Result, error) {
	if plan == nil {
		return nil, &ExecutionError{Stage: "plan", Err: ErrNilPlan}
	}
	if plan.Limit != nil && *plan.Limit < 0 {
		return nil, &ExecutionError{Stage: "limit", Err: fmt.Errorf("negative limit %d", *plan.Limit)}
	}
	if !plan.Star && len(plan.SelectList) == 0 {
		return nil, &ExecutionError{Stage: "project", Err: errors.New("empty select list")}
	}

	var input []map[string]interface{}
	if t != nil {
		input = t.Rows
	}

	// A projection may sort by a column it does not select; the input rows
	// are sorted before projecting in that case.
	sortInput := plan.OrderBy != nil && !plan.Star && !plan.hasOutputColumn(plan.OrderBy.Column)
	if sortInput && plan.isGrouped() {
		return nil, &ExecutionError{Stage: "order", Err: fmt.Errorf("ORDER BY %s is not an output column", plan.OrderBy.Column)}
	}

	rows := ApplyFilter(input, plan.Filter)
	if sortInput {
		rows = ApplyOrderBy(rows, plan.OrderBy)
	}

	switch {
	case plan.Star && len(plan.GroupBy) > 0:
		rows = passThrough(representatives(GroupRows(rows, plan.GroupBy)))
	case plan.Star:
		rows = passThrough(rows)
	case plan.isGrouped():
		rows = ApplyGroupByAndAggregate(rows, plan.GroupBy, plan.SelectList)
	default:
		rows = ApplySelectList(rows, plan.SelectList)
	}

	if !sortInput {
		rows = ApplyOrderBy(rows, plan.OrderBy)
	}
	rows = ApplyLimit(rows, plan.Limit)

	return &Result{Columns: resultColumns(plan, t, rows), Rows: rows}, nil
}

// resultColumns fixes the output column order. Select lists name their own
// columns, so an empty result keeps its schema; SELECT * reports the input
// table's columns.
func resultColumns(plan *Plan, t *table.Table, rows []map[string]interface{}) []string {
	if !plan.Star {
		return plan.Columns()
	}
	if t != nil && len(t.Columns) > 0 {
		return append([]string(nil), t.Columns...)
	}
	return table.ColumnsOf(rows)
}
