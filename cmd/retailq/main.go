package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vegasq/retailq/internal/config"
	"github.com/vegasq/retailq/internal/logger"
	"github.com/vegasq/retailq/output"
	"github.com/vegasq/retailq/query"
	"github.com/vegasq/retailq/reader"
	"github.com/vegasq/retailq/table"
)

// errQueryFailed marks a query whose error row was already printed.
var errQueryFailed = errors.New("query failed")

// app carries the resolved configuration shared by all commands.
type app struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errQueryFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "retailq",
		Short: "Query retail transaction tables with a small SQL dialect",
		Long: `retailq answers questions over a table of retail transactions.

The table is read from a Parquet, CSV, TSV, JSON/JSONL or SQLite file
(sales.db#table picks a SQLite table); glob patterns concatenate files.
Column names are normalised to lower case with underscores.`,
		Example: `  retailq query -d sales.csv "SELECT product_name, SUM(quantity) AS total_sold FROM data GROUP BY product_name ORDER BY total_sold DESC LIMIT 5"
  retailq ask -d sales.parquet "what is the return rate?"
  retailq questions -d 'exports/*.csv' revenue-by-store
  retailq schema sales.db#transactions
  retailq repl -d sales.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./retailq.yaml)")
	flags.StringP("format", "f", "", "output format: table, jsonl, csv")
	flags.StringP("data", "d", "", "table file or glob pattern")
	flags.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")

	root.AddCommand(
		newQueryCmd(a),
		newAskCmd(a),
		newQuestionsCmd(a),
		newSchemaCmd(a),
		newReplCmd(a),
	)
	return root
}

// init loads the configuration, applies flag overrides and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("data") {
		cfg.Data, _ = flags.GetString("data")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if _, err := output.ParseFormat(cfg.Format); err != nil {
		return err
	}

	logger.Init(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
		Output:    cmd.ErrOrStderr(),
	})
	a.cfg = cfg
	a.log = logger.Get()
	return nil
}

// formatter builds the configured output formatter writing to w.
func (a *app) formatter(w io.Writer) (output.Formatter, error) {
	f, err := output.ParseFormat(a.cfg.Format)
	if err != nil {
		return nil, err
	}
	return output.New(f, w)
}

// loadTable reads the configured data source.
func (a *app) loadTable(ctx context.Context) (*table.Table, error) {
	if a.cfg.Data == "" {
		return nil, errors.New("no data file given (use --data or set data in retailq.yaml)")
	}

	start := time.Now()
	t, err := reader.ReadFiles(ctx, a.cfg.Data)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file '%s' not found", a.cfg.Data)
		}
		return nil, err
	}
	a.log.Debug("table loaded", "path", a.cfg.Data, "rows", t.Len(), "columns", len(t.Columns), "duration", time.Since(start))
	return t, nil
}

// runQuery executes q against t and writes the result to w. A failed query
// still prints its error row and then reports errQueryFailed.
func (a *app) runQuery(w io.Writer, q string, t *table.Table) error {
	log := logger.WithQueryID(a.log, uuid.NewString())

	start := time.Now()
	res := query.Execute(q, t)
	if res.Failed() {
		log.Warn("query failed", "query", q, "error", res.Err)
	} else {
		log.Info("query executed", "query", q, "rows", len(res.Rows), "duration", time.Since(start))
	}

	f, err := a.formatter(w)
	if err != nil {
		return err
	}
	if err := f.Format(res.Columns, res.Rows); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if res.Failed() {
		return errQueryFailed
	}
	return nil
}
