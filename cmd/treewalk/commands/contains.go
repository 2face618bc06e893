package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
	"github.com/Sumatoshi-tech/treewalk/pkg/config"
	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
)

// NewContainsCommand reports whether a key is stored in the tree. A miss is
// not an error.
func NewContainsCommand(globals *Globals) *cobra.Command {
	var keys []int

	cmd := &cobra.Command{
		Use:   "contains <key>",
		Short: "Report whether a key is in the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrapf(err, "parse key %q", args[0])
			}

			return globals.run(cmd, observability.ModeCLI, func(ctx context.Context, cfg *config.Config, providers observability.Providers) error {
				tree := bst.New(keysOrConfig(keys, cfg)...)
				found := tree.Contains(key)

				providers.Logger.DebugContext(ctx, "lookup", "key", key, "found", found)

				_, err := fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(found))
				if err != nil {
					return errors.Wrap(err, "write result")
				}

				return nil
			})
		},
	}

	cmd.Flags().IntSliceVar(&keys, "keys", nil, "keys to insert, overriding tree.keys")

	return cmd
}
