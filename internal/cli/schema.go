package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/relq/internal/catalog"
	"github.com/roach88/relq/internal/header"
)

// SchemaTable is the JSON shape of one table's schema.
type SchemaTable struct {
	Name       string       `json:"name"`
	Qualified  string       `json:"qualified"`
	Comment    string       `json:"comment,omitempty"`
	Attributes []SchemaAttr `json:"attributes"`
}

// SchemaAttr is the JSON shape of one attribute.
type SchemaAttr struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Key      bool   `json:"key"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "schema <catalog-dir>",
		Short:         "Show catalog tables and their headers",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSchema(opts *RootOptions, dir string, cmd *cobra.Command) error {
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
		return NewExitError(ExitCommandError, "failed to load catalog")
	}

	if opts.Format == "json" {
		out := make([]SchemaTable, 0, len(cat.Names()))
		for _, name := range cat.Names() {
			t, _ := cat.Table(name)
			st := SchemaTable{Name: t.Name, Qualified: t.Qualified, Comment: t.Comment}
			for _, a := range t.Header {
				st.Attributes = append(st.Attributes, SchemaAttr{
					Name:     a.Name,
					Type:     string(a.Type),
					Key:      a.Key,
					Nullable: a.Nullable,
					Default:  a.Default,
					Comment:  a.Comment,
				})
			}
			out = append(out, st)
		}
		return formatter.Success(out)
	}

	for _, name := range cat.Names() {
		t, _ := cat.Table(name)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", t.Name, t.Qualified)
		writeHeaderTable(cmd, t.Header)
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func writeHeaderTable(cmd *cobra.Command, h header.Header) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Attribute", "Type", "Key", "Nullable", "Default", "Comment"})
	for _, a := range h {
		table.Append([]string{
			a.Name,
			string(a.Type),
			strconv.FormatBool(a.Key),
			strconv.FormatBool(a.Nullable),
			a.Default,
			a.Comment,
		})
	}
	table.Render()
}
