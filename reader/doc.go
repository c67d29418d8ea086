// Package reader loads retail transaction tables from files.
//
// Every reader returns a *table.Table whose field names are canonical
// (trimmed, lower-case, spaces and dashes turned into underscores), which is
// the form the query engine expects.
//
// # Formats
//
// The format is picked from the file extension:
//
//	.parquet, .pq            Apache Parquet
//	.csv, .tsv               delimited text with a header row
//	.json, .jsonl, .ndjson   a JSON array of objects, or one object per line
//	.db, .sqlite, .sqlite3   a SQLite table; name it with path#table
//
// Text formats infer cell types: integers become int64, decimals float64,
// true/false bool, and empty cells nil.
//
// # Basic Usage
//
//	t, err := reader.ReadFiles(ctx, "sales.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res := query.Execute("SELECT * FROM data LIMIT 5", t)
//
// # Multi-file Operations
//
// Glob patterns read every match concurrently and concatenate the rows in
// path order. Each row then carries a "_file" column with its source path:
//
//	t, err := reader.ReadFiles(ctx, "exports/2024-*.parquet")
//
// # Schema Introspection
//
// Describe lists a source's columns: the declared schema for parquet files,
// inferred types for everything else.
package reader
