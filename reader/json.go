package reader

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vegasq/retailq/table"
)

// ReadJSON reads either a JSON array of objects or a stream of objects
// (JSON Lines) into a canonical table.
func ReadJSON(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := decodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

func decodeJSON(r io.Reader) (*table.Table, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return &table.Table{}, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	var records []map[string]interface{}
	if first == '[' {
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to decode array: %w", err)
		}
	} else {
		for {
			var rec map[string]interface{}
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to decode record %d: %w", len(records)+1, err)
			}
			records = append(records, rec)
		}
	}

	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		for k, v := range rec {
			rec[k] = fromJSON(v)
		}
		rows = append(rows, rec)
	}

	return table.Canonical(table.NewTable(rows)), nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b, br.UnreadByte()
	}
}

// fromJSON turns json.Number into int64 or float64. Nested values are kept
// as decoded.
func fromJSON(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
