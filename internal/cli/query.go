package cli

import (
	"fmt"
	"log/slog"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/relq/internal/exec"
	"github.com/roach88/relq/internal/harness"
	"github.com/roach88/relq/internal/store"
	"github.com/roach88/relq/internal/tuple"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	// DB is the SQLite database path. Empty runs against an in-memory
	// database prepared from the scenario's setup statements.
	DB string
}

// QueryResult is the JSON shape of a query run.
type QueryResult struct {
	Scenario  string         `json:"scenario"`
	Statement string         `json:"statement"`
	Attrs     []string       `json:"attrs"`
	Rows      []tuple.Record `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <scenario.yaml>",
		Short: "Compile and run a scenario query",
		Long: `Query loads a scenario file, compiles its operator tree to a single
SELECT statement, and runs it. With --db the statement runs against an
existing SQLite database; without it an in-memory database is prepared
from the scenario's setup statements.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database path (default: in-memory, from scenario setup)")

	return cmd
}

func runQuery(rootOpts *RootOptions, opts *QueryOptions, path string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag; the executor traces each
	// issued statement at debug level.
	logLevel := slog.LevelInfo
	if rootOpts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	s, err := harness.LoadScenario(path)
	if err != nil {
		if ferr := formatter.Error(ErrCodeLoadFailed, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitCommandError, "failed to load scenario")
	}

	if opts.DB == "" && len(s.Setup) == 0 {
		msg := "scenario has no setup statements; pass --db"
		if ferr := formatter.Error(ErrCodeQueryFailed, msg, nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitCommandError, msg)
	}

	cat, err := s.LoadCatalog()
	if err != nil {
		if ferr := formatter.Error(ErrCodeLoadFailed, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "failed to load catalog")
	}

	rv, err := s.Build(cat)
	if err != nil {
		if ferr := formatter.Error(ErrCodeCompileError, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "failed to build query")
	}

	stmt, err := harness.CompileStatement(s)
	if err != nil {
		if ferr := formatter.Error(ErrCodeCompileError, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "compilation failed")
	}
	formatter.VerboseLog("compiled statement: %s", stmt)

	dbPath := opts.DB
	if dbPath == "" {
		dbPath = ":memory:"
	}
	st, err := store.Open(dbPath)
	if err != nil {
		if ferr := formatter.Error(ErrCodeQueryFailed, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitCommandError, "failed to open database")
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.DB == "" {
		for _, up := range s.Setup {
			if err := st.Exec(ctx, up); err != nil {
				if ferr := formatter.Error(ErrCodeQueryFailed, err.Error(), nil); ferr != nil {
					return ferr
				}
				return NewExitError(ExitFailure, "setup statement failed")
			}
		}
	}

	ex := exec.New(st)
	args := make([]any, 0, len(s.Fetch)+1)
	for _, spec := range s.Fetch {
		args = append(args, spec)
	}
	if s.Suffix != "" {
		args = append(args, s.Suffix)
	}
	res, err := ex.Fetch(ctx, rv, args...)
	if err != nil {
		if ferr := formatter.Error(ErrCodeQueryFailed, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "query failed")
	}

	if rootOpts.Format == "json" {
		return formatter.Success(QueryResult{
			Scenario:  s.Name,
			Statement: stmt,
			Attrs:     res.Attrs,
			Rows:      res.Rows,
		})
	}

	writeResultTable(cmd, res)
	fmt.Fprintf(cmd.OutOrStdout(), "%d row(s)\n", len(res.Rows))
	return nil
}

func writeResultTable(cmd *cobra.Command, res *exec.Result) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(res.Attrs)
	for _, rec := range res.Rows {
		row := make([]string, len(res.Attrs))
		for i, attr := range res.Attrs {
			v, ok := rec[attr]
			if !ok || v == nil {
				row[i] = "NULL"
				continue
			}
			row[i] = fmt.Sprint(v)
		}
		table.Append(row)
	}
	table.Render()
}
