package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/relq/internal/catalog"
)

// ValidationResult holds catalog validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Tables []string `json:"tables,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <catalog-dir>",
		Short: "Validate a table catalog",
		Long: `Validate CUE table definitions without compiling any query.

Checks that every table declares typed attributes and at least one key
attribute. Faster than compile for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := catalog.Load(dir)
	if err != nil {
		if ferr := formatter.Error(ErrCodeLoadFailed, err.Error(), nil); ferr != nil {
			return ferr
		}
		return NewExitError(ExitFailure, "catalog invalid")
	}

	formatter.VerboseLog("loaded %d tables from %s", len(cat.Names()), dir)
	if opts.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Tables: cat.Names()})
	}
	return formatter.Success("catalog valid")
}
