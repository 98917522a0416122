package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/relq/internal/harness"
)

// CompileResult is the JSON shape of a successful compilation.
type CompileResult struct {
	Scenario  string `json:"scenario"`
	Statement string `json:"statement"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <scenario.yaml>",
		Short: "Compile a scenario query to a SQL statement",
		Long: `Compile loads a scenario file, builds its operator tree against the
referenced catalog, and prints the single SELECT statement the tree
compiles to. Nothing is executed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCompile(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := harness.LoadScenario(path)
	if err != nil {
		if ferr := formatter.Error(ErrCodeLoadFailed, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitCommandError, "failed to load scenario")
	}

	formatter.VerboseLog("loaded scenario %q", s.Name)

	stmt, err := harness.CompileStatement(s)
	if err != nil {
		if ferr := formatter.Error(ErrCodeCompileError, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "compilation failed")
	}

	if opts.Format == "json" {
		return formatter.Success(CompileResult{Scenario: s.Name, Statement: stmt})
	}

	fmt.Fprintln(cmd.OutOrStdout(), stmt)
	return nil
}
