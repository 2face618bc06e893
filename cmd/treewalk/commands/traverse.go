package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
	"github.com/Sumatoshi-tech/treewalk/pkg/config"
	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
	"github.com/Sumatoshi-tech/treewalk/pkg/traversal"
)

// TraverseReport is the structured output of the traverse command.
type TraverseReport struct {
	Order    traversal.Order `json:"order"    yaml:"order"`
	Keys     []int           `json:"keys"     yaml:"keys"`
	Size     int             `json:"size"     yaml:"size"`
	Height   int             `json:"height"   yaml:"height"`
	Sequence []int           `json:"sequence" yaml:"sequence"`
}

type traverseCommand struct {
	globals *Globals
	format  string
	keys    []int
}

// NewTraverseCommand prints the key sequence of one traversal.
func NewTraverseCommand(globals *Globals) *cobra.Command {
	tc := &traverseCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "traverse [order]",
		Short: "Print the key sequence of one traversal",
		Long: `Build the tree from the configured keys and print the order in which
the chosen traversal visits them.

Orders: BFS, DFSPreOrder, DFSPostOrder, DFSInOrder
(aliases: bfs, preorder, postorder, inorder). Defaults to playback.order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: tc.run,
	}

	cmd.Flags().StringVarP(&tc.format, "format", "f", FormatText, "output format: text, json, yaml")
	cmd.Flags().IntSliceVar(&tc.keys, "keys", nil, "keys to insert, overriding tree.keys")

	return cmd
}

func (tc *traverseCommand) run(cmd *cobra.Command, args []string) error {
	err := checkFormat(tc.format)
	if err != nil {
		return err
	}

	return tc.globals.run(cmd, observability.ModeCLI, func(ctx context.Context, cfg *config.Config, providers observability.Providers) error {
		order, err := orderArg(cfg, args)
		if err != nil {
			return err
		}

		keys := keysOrConfig(tc.keys, cfg)
		tree := bst.New(keys...)

		seq, err := traversal.Run(tree, order)
		if err != nil {
			return err
		}

		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("traversal.order", order.String()),
			attribute.Int("tree.size", tree.Len()),
		)
		providers.Logger.DebugContext(ctx, "traversal computed", "order", order.String(), "keys", tree.Len())

		report := TraverseReport{
			Order:    order,
			Keys:     keys,
			Size:     tree.Len(),
			Height:   tree.Height(),
			Sequence: seq,
		}

		if strings.EqualFold(tc.format, FormatText) {
			return writeSequence(cmd.OutOrStdout(), seq)
		}

		return writeStructured(cmd.OutOrStdout(), tc.format, report)
	})
}

// orderArg parses the optional order argument, falling back to playback.order.
func orderArg(cfg *config.Config, args []string) (traversal.Order, error) {
	if len(args) == 0 {
		return cfg.Order(), nil
	}

	order, err := traversal.ParseOrder(args[0])
	if err != nil {
		return 0, errors.Wrap(err, "parse order")
	}

	return order, nil
}

func keysOrConfig(keys []int, cfg *config.Config) []int {
	if len(keys) > 0 {
		return keys
	}

	return cfg.Tree.Keys
}

func writeSequence(out io.Writer, seq []int) error {
	fields := make([]string, len(seq))
	for idx, key := range seq {
		fields[idx] = strconv.Itoa(key)
	}

	_, err := fmt.Fprintln(out, strings.Join(fields, " "))
	if err != nil {
		return errors.Wrap(err, "write sequence")
	}

	return nil
}
