// Package query parses and executes a small SQL dialect over an in-memory
// table of retail transactions.
//
// The supported grammar (keywords are case-insensitive):
//
//	SELECT <select-list | *> FROM <source>
//	  [WHERE <condition>]
//	  [GROUP BY <field>, ...]
//	  [ORDER BY <field> [ASC|DESC]]
//	  [LIMIT <non-negative integer>]
//
// Select-list entries:
//   - field, field AS alias
//   - SUM(field), SUM(field * field), COUNT(*), COUNT(expr), AVG(field)
//   - [100.0 *] [SUM(] CASE WHEN <condition> THEN 1 ELSE 0 END [)] [/ COUNT(*)]
//     (a plain count, or a rate over the group when scaled)
//
// COUNT counts rows whatever its argument; the argument is not evaluated.
//
// Conditions are field = 'text', field = number, field = true|false, a bare
// flag field (true for 1, "1" and true), combined with AND, OR, NOT and
// parentheses. A WHERE clause outside that grammar, such as price > 100,
// matches every row; IsMatchAll reports the fallback.
//
// # Basic Usage
//
//	res := query.Execute(
//	    "SELECT product_name, SUM(quantity) AS total_sold FROM data "+
//	        "GROUP BY product_name ORDER BY total_sold DESC LIMIT 1",
//	    tbl,
//	)
//	if res.Failed() {
//	    log.Println(res.Rows[0]["error"])
//	}
//
// Execute never panics and never returns a Go error. Callers that want typed
// errors use Parse and Run, which return *ParseError and *ExecutionError.
//
// # Aggregation
//
// With GROUP BY, rows are grouped by the lower-cased values of the GROUP BY
// fields (missing fields group as ""). SUM and AVG coerce non-numeric values
// to 0 and never divide by zero. A bare field outside the GROUP BY list takes
// the value of the group's first row. An aggregate select list without
// GROUP BY folds the whole filtered table into one row.
//
// Unaliased aggregates are named sum_result, count_result, avg_result and
// rate_result; repeats get _2, _3, ... suffixes.
//
// # Ordering
//
// ORDER BY compares numerically when both values parse as numbers and as
// case-sensitive strings otherwise. The sort is stable. A projection may
// order by a field it does not select; a grouped query must order by one of
// its output columns.
//
// # Concurrency
//
// Execution is synchronous and keeps all state local to the call, so
// concurrent calls are safe as long as nobody mutates the input table while
// they run.
package query
