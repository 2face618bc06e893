// Package commands implements the treewalk CLI subcommands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/treewalk/pkg/config"
	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
	"github.com/Sumatoshi-tech/treewalk/pkg/version"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for a --format value that is not text, json, or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Globals holds the persistent root flags shared by every subcommand.
type Globals struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand builds the treewalk command tree.
func NewRootCommand() *cobra.Command {
	globals := &Globals{}

	rootCmd := &cobra.Command{
		Use:   "treewalk",
		Short: "Binary search tree traversal explorer",
		Long: `Treewalk builds a binary search tree from a list of keys and walks it
breadth-first or depth-first (pre-, post-, or in-order).

Commands:
  traverse    Print the key sequence of one traversal
  play        Animate a traversal one key at a time
  contains    Report whether a key is in the tree
  algorithms  Describe the four traversals
  mcp         Serve the traversals as MCP tools on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "config file (default .treewalk.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(NewTraverseCommand(globals))
	rootCmd.AddCommand(NewPlayCommand(globals))
	rootCmd.AddCommand(NewContainsCommand(globals))
	rootCmd.AddCommand(NewAlgorithmsCommand(globals))
	rootCmd.AddCommand(NewMCPCommand(globals))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewVersionCommand prints the build identity.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "treewalk %s\n", version.String())
		},
	}
}

// load reads the configuration and applies the verbosity flags on top.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	switch {
	case g.Verbose:
		cfg.Logging.Level = "debug"
	case g.Quiet:
		cfg.Logging.Level = "error"
	}

	return cfg, nil
}

// observe initializes telemetry for mode, logging to logOut.
func observe(cfg *config.Config, mode observability.AppMode, logOut io.Writer, prometheus bool) (observability.Providers, error) {
	obsCfg := cfg.Observability(mode, version.Version)
	obsCfg.LogOutput = logOut
	obsCfg.Prometheus = prometheus

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, errors.Wrap(err, "init observability")
	}

	return providers, nil
}

// runFunc is the body of a command once configuration and telemetry are up.
type runFunc func(ctx context.Context, cfg *config.Config, providers observability.Providers) error

// run loads configuration, initializes telemetry, and calls fn inside a span
// named after the command.
func (g *Globals) run(cmd *cobra.Command, mode observability.AppMode, fn runFunc) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	providers, err := observe(cfg, mode, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer closeProviders(providers, providers.Logger)

	ctx, span := providers.Tracer.Start(cmd.Context(), "treewalk."+cmd.Name())
	defer span.End()

	err = fn(ctx, cfg, providers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}

func closeProviders(providers observability.Providers, logger *slog.Logger) {
	err := providers.Shutdown(context.Background())
	if err != nil {
		logger.Warn("observability shutdown failed", "error", err)
	}
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// writeStructured encodes value as JSON or YAML.
func writeStructured(out io.Writer, format string, value any) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		err := enc.Encode(value)
		if err != nil {
			return errors.Wrap(err, "encode json")
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)

		err := enc.Encode(value)
		if err != nil {
			return errors.Wrap(err, "encode yaml")
		}

		err = enc.Close()
		if err != nil {
			return errors.Wrap(err, "encode yaml")
		}

		return nil
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}
