package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// JSONFormatter outputs rows as JSON Lines, keys in column order
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes one JSON object per row. Columns missing from a row are
// written as null so every line has the same keys.
func (j *JSONFormatter) Format(columns []string, rows []map[string]interface{}) error {
	bw := bufio.NewWriter(j.writer)

	for _, row := range rows {
		if err := bw.WriteByte('{'); err != nil {
			return err
		}
		for i, col := range columns {
			if i > 0 {
				_ = bw.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return fmt.Errorf("failed to encode column %q: %w", col, err)
			}
			value, err := json.Marshal(row[col])
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", col, err)
			}
			_, _ = bw.Write(key)
			_ = bw.WriteByte(':')
			_, _ = bw.Write(value)
		}
		if _, err := bw.WriteString("}\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}
