package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vegasq/retailq/internal/config"
	"github.com/vegasq/retailq/table"
)

const salesCSV = `Transaction ID,Product Name,Product Category,Store Location,Quantity,Unit Price,Return Status,Payment Method
1,Rice,Grocery,Delhi,2,40,0,Cash
2,Soap,Personal Care,Mumbai,1,25.5,1,UPI
3,Rice,Grocery,Delhi,3,40,0,Card
4,Tea,Grocery,Chennai,1,120,1,Cash
`

// writeSales writes the sample transactions to dir/name.
func writeSales(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(salesCSV), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// run executes the CLI in-process from an empty working directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestQueryCommand(t *testing.T) {
	data := writeSales(t, t.TempDir(), "sales.csv")

	out, err := run(t, "query", "-f", "jsonl", "-d", data,
		"SELECT product_name, SUM(quantity) AS total_sold FROM data GROUP BY product_name ORDER BY total_sold DESC LIMIT 1")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if want := "{\"product_name\":\"Rice\",\"total_sold\":5}\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestQueryCommandFilter(t *testing.T) {
	data := writeSales(t, t.TempDir(), "sales.csv")

	out, err := run(t, "query", "-f", "csv", "-d", data,
		"SELECT transaction_id, payment_method FROM data WHERE store_location = 'Delhi'")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if want := "transaction_id,payment_method\n1,Cash\n3,Card\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestQueryCommandFailure(t *testing.T) {
	data := writeSales(t, t.TempDir(), "sales.csv")

	out, err := run(t, "query", "-f", "jsonl", "-d", data, "SELECT FROM data")
	if !errors.Is(err, errQueryFailed) {
		t.Fatalf("query error = %v, want errQueryFailed", err)
	}
	if !strings.HasPrefix(out, "{\"error\":") {
		t.Errorf("output = %q, want an error row", out)
	}
}

func TestQueryCommandGlob(t *testing.T) {
	dir := t.TempDir()
	writeSales(t, dir, "jan.csv")
	writeSales(t, dir, "feb.csv")

	out, err := run(t, "query", "-f", "csv", "-d", filepath.Join(dir, "*.csv"),
		"SELECT COUNT(*) AS n FROM data")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if want := "n\n8\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestAskCommand(t *testing.T) {
	data := writeSales(t, t.TempDir(), "sales.csv")

	out, err := run(t, "ask", "-f", "jsonl", "-d", data, "what", "is", "the", "return", "rate?")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if want := "{\"return_rate\":50}\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if _, err := run(t, "ask", "-d", data, "tell me a joke"); err == nil {
		t.Error("expected error for untranslatable question")
	}
}

func TestQuestionsCommand(t *testing.T) {
	out, err := run(t, "questions", "-f", "csv")
	if err != nil {
		t.Fatalf("questions error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "name,question,query" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(out, "revenue-by-store") {
		t.Errorf("output does not list revenue-by-store: %q", out)
	}

	data := writeSales(t, t.TempDir(), "sales.csv")
	out, err = run(t, "questions", "-f", "csv", "-d", data, "revenue-by-store")
	if err != nil {
		t.Fatalf("questions revenue-by-store error = %v", err)
	}
	if want := "store_location,revenue\nDelhi,200\nChennai,120\nMumbai,25.5\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if _, err := run(t, "questions", "-d", data, "no-such-question"); err == nil {
		t.Error("expected error for unknown question")
	}
}

func TestSchemaCommand(t *testing.T) {
	data := writeSales(t, t.TempDir(), "sales.csv")

	out, err := run(t, "schema", "-f", "csv", data)
	if err != nil {
		t.Fatalf("schema error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines, want header plus 8 columns: %q", len(lines), out)
	}
	if lines[0] != "name,type,physical_type,logical_type,required,optional,repeated" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "transaction_id,INT64,,,true,false,false" {
		t.Errorf("first column = %q", lines[1])
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := writeSales(t, dir, "sales.csv")
	cfgPath := filepath.Join(dir, "retailq.yaml")
	if err := os.WriteFile(cfgPath, []byte("format: csv\ndata: "+data+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	out, err := run(t, "--config", cfgPath, "query", "SELECT COUNT(*) AS n FROM data WHERE return_status = 1")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if want := "n\n2\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	out, err = run(t, "--config", cfgPath, "-f", "jsonl", "query", "SELECT COUNT(*) AS n FROM data")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	if want := "{\"n\":4}\n"; out != want {
		t.Errorf("flag override output = %q, want %q", out, want)
	}
}

func TestCommandErrors(t *testing.T) {
	data := writeSales(t, t.TempDir(), "sales.csv")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no data", []string{"query", "SELECT * FROM data"}, "no data file"},
		{"missing file", []string{"query", "-d", filepath.Join(t.TempDir(), "gone.csv"), "SELECT * FROM data"}, "not found"},
		{"bad format", []string{"query", "-f", "xml", "-d", data, "SELECT * FROM data"}, "xml"},
		{"unsupported file", []string{"query", "-d", "sales.xlsx", "SELECT * FROM data"}, "unsupported file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestEvalLine(t *testing.T) {
	a := &app{
		cfg: &config.Config{Format: "csv"},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	tbl := table.NewTable([]table.Row{
		{"product_name": "Rice", "quantity": int64(2), "return_status": int64(1)},
		{"product_name": "Tea", "quantity": int64(1), "return_status": int64(0)},
	})

	tests := []struct {
		input    string
		quit     bool
		want     string
		wantErr  bool
		contains bool
	}{
		{input: "quit", quit: true},
		{input: `\q`, quit: true},
		{input: "EXIT", quit: true},
		{input: "SELECT COUNT(*) AS n FROM data", want: "n\n2\n"},
		{input: "select product_name from data limit 1", want: "product_name\nRice\n"},
		{input: "return-rate", want: "return_rate\n50\n"},
		{input: "what is the return rate", want: "return_rate\n50\n"},
		{input: `\d`, want: "column\nproduct_name\nquantity\nreturn_status\n"},
		{input: `\help`, want: "Commands:", contains: true},
		{input: "blah blah", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			quit, err := a.evalLine(&out, tt.input, tbl)
			if quit != tt.quit {
				t.Errorf("quit = %v, want %v", quit, tt.quit)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			got := out.String()
			if tt.contains {
				if !strings.Contains(got, tt.want) {
					t.Errorf("output = %q, want it to contain %q", got, tt.want)
				}
			} else if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalLineFailedQuery(t *testing.T) {
	a := &app{
		cfg: &config.Config{Format: "jsonl"},
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	var out bytes.Buffer
	_, err := a.evalLine(&out, "SELECT a FROM data LIMIT -1", table.NewTable(nil))
	if !errors.Is(err, errQueryFailed) {
		t.Errorf("error = %v, want errQueryFailed", err)
	}
	if !strings.Contains(out.String(), "\"error\"") {
		t.Errorf("output = %q, want an error row", out.String())
	}
}

func TestCompleter(t *testing.T) {
	complete := completer([]string{"product_name", "payment_method"})

	tests := []struct {
		line     string
		head     string
		matches  []string
		tailText string
	}{
		{"SELECT prod", "SELECT ", []string{"product_name"}, ""},
		{"sel", "", []string{"SELECT"}, ""},
		{"SELECT SUM(q", "SELECT SUM(", nil, ""},
		{"SELECT ", "SELECT ", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			head, matches, tail := complete(tt.line, len(tt.line))
			if head != tt.head || !reflect.DeepEqual(matches, tt.matches) || tail != tt.tailText {
				t.Errorf("complete(%q) = %q, %v, %q; want %q, %v, %q", tt.line, head, matches, tail, tt.head, tt.matches, tt.tailText)
			}
		})
	}
}

func TestSampleData(t *testing.T) {
	data, err := filepath.Abs(filepath.Join("..", "..", "testdata", "sales.csv"))
	if err != nil {
		t.Fatalf("failed to resolve sample data: %v", err)
	}

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"questions", "top-products"}, "product_name,total_sold\nMasala Tea 250g,7\n"},
		{[]string{"ask", "revenue by store"}, "store_location,revenue\nDelhi,2885\nBengaluru,1129\nChennai,1020\nMumbai,947.5\n"},
		{[]string{"questions", "return-rate"}, "return_rate\n25\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			args := append([]string{"-f", "csv", "-d", data}, tt.args...)
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			lines := strings.SplitAfter(out, "\n")
			got := strings.Join(lines[:min(len(lines), strings.Count(tt.want, "\n"))], "")
			if got != tt.want {
				t.Errorf("output = %q, want prefix %q", out, tt.want)
			}
		})
	}
}
