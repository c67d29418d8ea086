package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vegasq/retailq/catalog"
	"github.com/vegasq/retailq/reader"
	"github.com/vegasq/retailq/translate"
)

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query against the data file",
		Long: `Run a query against the data file. The FROM name is required but
ignored; the query always runs against --data.

  SELECT <fields | *> FROM data
    [WHERE field = 'value' | WHERE return_status = 1]
    [GROUP BY field, ...] [ORDER BY field [ASC|DESC]] [LIMIT n]`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			return a.runQuery(cmd.OutOrStdout(), strings.Join(args, " "), t)
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	var show bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Translate a plain-language question into a query and run it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			q, rule, ok := translate.Match(text)
			if !ok {
				return fmt.Errorf("could not translate %q into a query; try 'retailq questions' or write the query yourself", text)
			}
			a.log.Debug("question translated", "rule", rule, "query", q)
			if show {
				fmt.Fprintln(cmd.ErrOrStderr(), q)
			}

			t, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			return a.runQuery(cmd.OutOrStdout(), q, t)
		},
	}
	cmd.Flags().BoolVar(&show, "show-query", false, "print the translated query to stderr")
	return cmd
}

func newQuestionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "questions [name]",
		Short: "List the predefined questions, or answer one by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.listQuestions(cmd)
			}

			q, err := catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			t, err := a.loadTable(cmd.Context())
			if err != nil {
				return err
			}
			return a.runQuery(cmd.OutOrStdout(), q, t)
		},
	}
}

func (a *app) listQuestions(cmd *cobra.Command) error {
	var rows []map[string]interface{}
	for _, q := range catalog.Questions() {
		rows = append(rows, map[string]interface{}{
			"name":     q.Name,
			"question": q.Text,
			"query":    q.Query,
		})
	}

	f, err := a.formatter(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return f.Format([]string{"name", "question", "query"}, rows)
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [file]",
		Short: "Show the columns of a data file",
		Long: `Show the columns of a data file (default --data). Parquet files report
their declared schema; other formats report types inferred from the values.
For a glob pattern the first matching file is described.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Data
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no data file given")
			}

			infos, err := reader.Describe(cmd.Context(), path)
			if err != nil {
				return err
			}

			rows := make([]map[string]interface{}, len(infos))
			for i, field := range infos {
				rows[i] = map[string]interface{}{
					"name":          field.Name,
					"type":          field.Type,
					"physical_type": field.PhysicalType,
					"logical_type":  field.LogicalType,
					"required":      field.Required,
					"optional":      field.Optional,
					"repeated":      field.Repeated,
				}
			}

			f, err := a.formatter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return f.Format(schemaColumns, rows)
		},
	}
}

var schemaColumns = []string{"name", "type", "physical_type", "logical_type", "required", "optional", "repeated"}
