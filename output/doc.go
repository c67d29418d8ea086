// Package output writes query results in presentation formats.
//
// Every formatter takes the result's column list alongside its rows and
// writes fields in that order, so output is stable across runs and an empty
// result still shows its header where the format has one.
//
// # Supported Formats
//
//   - table: an aligned ASCII table (the CLI default on terminals)
//   - jsonl: one JSON object per line, keys in column order
//   - csv: comma-separated values with a header row
//
// # Basic Usage
//
//	res := query.Execute(q, t)
//	formatter, err := output.New(output.FormatCSV, os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(res.Columns, res.Rows); err != nil {
//	    log.Fatal(err)
//	}
//
// CSV output escapes text cells that spreadsheet programs would evaluate as
// formulas (leading =, +, -, @ and similar) by prefixing a single quote.
package output
