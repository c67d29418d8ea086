package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders rows as an aligned ASCII table for terminals
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders the header and rows
func (t *TableFormatter) Format(columns []string, rows []map[string]interface{}) error {
	tw := tablewriter.NewWriter(t.writer)
	tw.SetHeader(columns)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = cellText(row[col])
		}
		data = append(data, record)
	}
	tw.AppendBulk(data)
	tw.Render()
	return nil
}

// cellText renders a value without the CSV formula escaping
func cellText(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return formatValue(v)
}
