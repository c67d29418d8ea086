package reader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vegasq/retailq/table"
)

// Format identifies a table file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatParquet
	FormatCSV
	FormatTSV
	FormatJSON
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatJSON:
		return "json"
	case FormatSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// FileColumn is the column that tags each row with its source file when a
// glob pattern matches.
const FileColumn = "_file"

// maxFiles bounds how many files one glob pattern may load.
const maxFiles = 1000

// maxParallel bounds how many files are read at the same time.
const maxParallel = 8

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) Format {
	path, _ = splitTable(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet
	case ".csv":
		return FormatCSV
	case ".tsv":
		return FormatTSV
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatUnknown
	}
}

// splitTable separates "sales.db#transactions" into the database path and
// the table name. Only a SQLite path before the '#' is split, so a file
// such as q#1.csv keeps its name.
func splitTable(path string) (string, string) {
	i := strings.LastIndexByte(path, '#')
	if i < 0 {
		return path, ""
	}
	switch strings.ToLower(filepath.Ext(path[:i])) {
	case ".db", ".sqlite", ".sqlite3":
		return path[:i], path[i+1:]
	}
	return path, ""
}

// ReadFile reads one file into a canonical table. SQLite paths may name a
// table after '#', as in sales.db#transactions.
func ReadFile(ctx context.Context, path string) (*table.Table, error) {
	switch DetectFormat(path) {
	case FormatParquet:
		return ReadParquet(path)
	case FormatCSV:
		return ReadCSV(path, ',')
	case FormatTSV:
		return ReadCSV(path, '\t')
	case FormatJSON:
		return ReadJSON(path)
	case FormatSQLite:
		dbPath, tableName := splitTable(path)
		return ReadSQLite(ctx, dbPath, tableName)
	default:
		return nil, fmt.Errorf("unsupported file type %q (use .parquet, .csv, .tsv, .json, .jsonl or .db)", filepath.Ext(path))
	}
}

// isGlob reports whether pattern contains glob wildcards.
func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// ReadFiles reads a single path or every file matching a glob pattern.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// Matching files are read concurrently and concatenated in sorted path
// order; each row is tagged with a "_file" column holding its source path.
// A plain path is read as is, without the tag. Formats may be mixed.
func ReadFiles(ctx context.Context, pattern string) (*table.Table, error) {
	if !isGlob(pattern) {
		return ReadFile(ctx, pattern)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}

	tables := make([]*table.Table, len(matches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, path := range matches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := ReadFile(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return concat(matches, tables), nil
}

// concat appends the tables in order, tagging rows with their source path.
// Columns keep first-seen order, with the file tag last.
func concat(paths []string, tables []*table.Table) *table.Table {
	var columns []string
	seen := map[string]bool{FileColumn: true}
	var rows []table.Row

	for i, t := range tables {
		for _, col := range t.Columns {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
		for _, row := range t.Rows {
			row[FileColumn] = paths[i]
			rows = append(rows, row)
		}
	}

	return &table.Table{Columns: append(columns, FileColumn), Rows: rows}
}
