package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treewalk/pkg/config"
	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
	"github.com/Sumatoshi-tech/treewalk/pkg/traversal"
)

// NewAlgorithmsCommand prints the traversal catalog.
func NewAlgorithmsCommand(globals *Globals) *cobra.Command {
	var (
		format  string
		details bool
	)

	cmd := &cobra.Command{
		Use:   "algorithms",
		Short: "Describe the four traversals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := checkFormat(format)
			if err != nil {
				return err
			}

			return globals.run(cmd, observability.ModeCLI, func(_ context.Context, _ *config.Config, _ observability.Providers) error {
				algs, err := traversal.Catalog()
				if err != nil {
					return err
				}

				if strings.EqualFold(format, FormatText) {
					return writeCatalogTable(cmd.OutOrStdout(), algs, details)
				}

				return writeStructured(cmd.OutOrStdout(), format, algs)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatText, "output format: text, json, yaml")
	cmd.Flags().BoolVar(&details, "details", false, "include explanation and usage")

	return cmd
}

func writeCatalogTable(out io.Writer, algs []traversal.Algorithm, details bool) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)

	header := table.Row{"ID", "Name", "Difficulty", "Time", "Space", "Visit"}
	if details {
		header = append(header, "Explanation", "Usage")
	}

	tbl.AppendHeader(header)

	if details {
		tbl.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Explanation", WidthMax: 48},
			{Name: "Usage", WidthMax: 48},
		})
	}

	for _, alg := range algs {
		row := table.Row{alg.ID, alg.Name, alg.Difficulty, alg.TimeComplexity, alg.SpaceComplexity, alg.TraverseOrder}
		if details {
			row = append(row, alg.Explanation, alg.Usage)
		}

		tbl.AppendRow(row)
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(algs))})

	_, err := fmt.Fprintln(out, tbl.Render())
	if err != nil {
		return errors.Wrap(err, "write table")
	}

	return nil
}
