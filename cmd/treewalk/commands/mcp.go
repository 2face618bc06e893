package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treewalk/pkg/config"
	"github.com/Sumatoshi-tech/treewalk/pkg/mcp"
	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
	"github.com/Sumatoshi-tech/treewalk/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(globals *Globals) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the tree as tools that AI agents can discover and invoke:
  - tree_traverse: key sequence of one traversal order
  - tree_contains: membership lookup
  - traversal_algorithms: the traversal catalog

Calls that omit keys use tree.keys from the configuration.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := globals.load()
			if err != nil {
				return err
			}

			// Stdout carries the protocol, so logs are always JSON on stderr.
			cfg.Logging.Format = config.LogFormatJSON

			if debug {
				cfg.Logging.Level = "debug"
				cfg.Telemetry.DebugTrace = true
			}

			providers, err := observe(cfg, observability.ModeMCP, cobraCmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer closeProviders(providers, providers.Logger)

			red, redErr := observability.NewREDMetrics(providers.Meter)
			if redErr != nil {
				return redErr
			}

			deps := mcp.ServerDeps{
				Keys:    cfg.Tree.Keys,
				Version: version.Version,
				Logger:  providers.Logger,
				Metrics: red,
				Tracer:  providers.Tracer,
			}

			srv := mcp.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
