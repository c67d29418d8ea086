package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/vegasq/retailq/catalog"
	"github.com/vegasq/retailq/table"
	"github.com/vegasq/retailq/translate"
)

const replHelp = `Enter a query (SELECT ...), a question name from 'questions',
or a plain-language question. Commands:
  \d          list columns
  \questions  list predefined questions
  \help       show this help
  \q          quit (also quit, exit)
`

var keywords = []string{
	"SELECT", "FROM", "WHERE", "GROUP BY", "ORDER BY", "LIMIT", "AS", "AND", "OR", "NOT",
	"SUM(", "COUNT(*)", "AVG(", "CASE WHEN", "THEN", "ELSE", "END", "ASC", "DESC",
}

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Query the data file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			return a.repl(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), t)
		},
	}
}

func (a *app) repl(ctx context.Context, out, errOut io.Writer, t *table.Table) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetWordCompleter(completer(t.Columns))

	history := a.historyPath()
	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintf(errOut, "%d rows loaded from %s. Type \\help for help.\n", t.Len(), a.cfg.Data)
	for ctx.Err() == nil {
		input, err := line.Prompt("retailq> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := a.evalLine(out, input, t)
		if quit {
			break
		}
		if err != nil && !errors.Is(err, errQueryFailed) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}

	if history != "" {
		f, err := os.Create(history)
		if err != nil {
			a.log.Warn("failed to save history", "path", history, "error", err)
			return nil
		}
		defer f.Close()
		if _, err := line.WriteHistory(f); err != nil {
			a.log.Warn("failed to save history", "path", history, "error", err)
		}
	}
	return nil
}

// evalLine handles one REPL input. Queries run as is; anything else is
// tried as a question name and then as a plain-language question.
func (a *app) evalLine(out io.Writer, input string, t *table.Table) (quit bool, err error) {
	switch strings.ToLower(input) {
	case "quit", "exit", `\q`:
		return true, nil
	case `\help`, `\h`, "help":
		_, err := io.WriteString(out, replHelp)
		return false, err
	case `\d`:
		return false, a.describeColumns(out, t)
	case `\questions`:
		f, err := a.formatter(out)
		if err != nil {
			return false, err
		}
		var rows []map[string]interface{}
		for _, q := range catalog.Questions() {
			rows = append(rows, map[string]interface{}{"name": q.Name, "question": q.Text})
		}
		return false, f.Format([]string{"name", "question"}, rows)
	}

	if strings.HasPrefix(strings.ToUpper(input), "SELECT") {
		return false, a.runQuery(out, input, t)
	}
	if q, err := catalog.Lookup(input); err == nil {
		return false, a.runQuery(out, q, t)
	}
	if q, ok := translate.Translate(input); ok {
		a.log.Debug("question translated", "query", q)
		return false, a.runQuery(out, q, t)
	}
	return false, fmt.Errorf("not a query or a known question: %q (type \\help)", input)
}

func (a *app) describeColumns(out io.Writer, t *table.Table) error {
	f, err := a.formatter(out)
	if err != nil {
		return err
	}
	rows := make([]map[string]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		rows[i] = map[string]interface{}{"column": col}
	}
	return f.Format([]string{"column"}, rows)
}

// historyPath resolves the history file; "" disables history.
func (a *app) historyPath() string {
	if a.cfg.History != "" {
		return a.cfg.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".retailq_history")
}

// completer completes the last word of the line with a keyword or column.
func completer(columns []string) liner.WordCompleter {
	words := append(append([]string(nil), keywords...), columns...)
	sort.Strings(words)

	return func(line string, pos int) (string, []string, string) {
		head := line[:pos]
		start := strings.LastIndexAny(head, " ,(") + 1
		prefix := strings.ToLower(head[start:])
		if prefix == "" {
			return line, nil, ""
		}

		var matches []string
		for _, w := range words {
			if strings.HasPrefix(strings.ToLower(w), prefix) {
				matches = append(matches, w)
			}
		}
		return head[:start], matches, line[pos:]
	}
}
