package output

import (
	"fmt"
	"io"
	"strings"
)

// Formatter writes a result table to an output destination.
type Formatter interface {
	// Format writes rows, with columns fixing the field order. Rows may lack
	// columns; missing fields are written as null or empty.
	Format(columns []string, rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Format names an output format.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatTable, FormatJSONL, FormatCSV}

// ParseFormat resolves a format name. "json" is accepted for JSON Lines.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSONL, FormatCSV, FormatTable:
		return f, nil
	case "json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use table, jsonl or csv)", name)
	}
}

// New returns the formatter for f writing to w.
func New(f Format, w io.Writer) (Formatter, error) {
	switch f {
	case FormatJSONL:
		return NewJSONFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatTable:
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", f)
	}
}
