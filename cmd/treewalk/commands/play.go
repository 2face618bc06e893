package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
	"github.com/Sumatoshi-tech/treewalk/pkg/config"
	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
	"github.com/Sumatoshi-tech/treewalk/pkg/scheduler"
	"github.com/Sumatoshi-tech/treewalk/pkg/sink"
	"github.com/Sumatoshi-tech/treewalk/pkg/traversal"
)

const diagnosticsShutdownTimeout = 5 * time.Second

var errPlaybackIdle = errors.New("no traversal playing")

type playCommand struct {
	globals     *Globals
	keys        []int
	hide        []int
	interval    time.Duration
	metricsAddr string
	noColor     bool
}

// NewPlayCommand animates one traversal on the terminal.
func NewPlayCommand(globals *Globals) *cobra.Command {
	pc := &playCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "play [order]",
		Short: "Animate a traversal one key at a time",
		Long: `Play a traversal on the terminal. Each key in the sequence is shown
active for one interval and then left passive; keys hidden with --hide are
skipped without waiting.

Ctrl-C stops playback and clears every mark.`,
		Args: cobra.MaximumNArgs(1),
		RunE: pc.run,
	}

	cmd.Flags().IntSliceVar(&pc.keys, "keys", nil, "keys to insert, overriding tree.keys")
	cmd.Flags().IntSliceVar(&pc.hide, "hide", nil, "keys to leave off the display")
	cmd.Flags().DurationVar(&pc.interval, "interval", config.DefaultInterval, "time each key stays active (default playback.interval)")
	cmd.Flags().StringVar(&pc.metricsAddr, "metrics-addr", "", "serve /metrics, /healthz and /readyz on this address (default metrics.addr)")
	cmd.Flags().BoolVar(&pc.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (pc *playCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := pc.globals.load()
	if err != nil {
		return err
	}

	order, err := orderArg(cfg, args)
	if err != nil {
		return err
	}

	interval := cfg.Playback.Interval
	if cmd.Flags().Changed("interval") {
		interval = pc.interval
	}

	metricsAddr := cfg.Metrics.Addr
	if cmd.Flags().Changed("metrics-addr") {
		metricsAddr = pc.metricsAddr
	}

	providers, err := observe(cfg, observability.ModePlay, cmd.ErrOrStderr(), metricsAddr != "")
	if err != nil {
		return err
	}
	defer closeProviders(providers, providers.Logger)

	logger := providers.Logger

	playbackMetrics, err := observability.NewPlaybackMetrics(providers.Meter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New[int](scheduler.Options{Logger: logger, Metrics: playbackMetrics})

	if metricsAddr != "" {
		diag, diagErr := pc.serveDiagnostics(ctx, metricsAddr, providers, sched)
		if diagErr != nil {
			return diagErr
		}

		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), diagnosticsShutdownTimeout)
			defer cancel()

			closeErr := diag.Close(closeCtx)
			if closeErr != nil {
				logger.Warn("diagnostics shutdown failed", "error", closeErr)
			}
		}()
	}

	tree := bst.New(keysOrConfig(pc.keys, cfg)...)
	explorer := traversal.NewExplorer(tree, sched, interval)

	out := cmd.OutOrStdout()
	term := sink.NewTerminal(out, pc.visibleKeys(tree), !pc.noColor && !color.NoColor)

	err = writeHeader(out, order)
	if err != nil {
		return err
	}

	session, err := explorer.Select(order, term)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "playback started", "order", order.String(), "keys", tree.Len(), "interval", interval)

	outcome, waitErr := session.Wait(ctx)
	if waitErr != nil {
		explorer.Reset()
		logger.InfoContext(context.Background(), "playback canceled")

		return errors.Join(term.Err(), writeLine(out, "canceled"))
	}

	logger.InfoContext(ctx, "playback finished", "outcome", outcome.String())

	return term.Err()
}

func (pc *playCommand) serveDiagnostics(
	ctx context.Context, addr string, providers observability.Providers, sched *scheduler.Scheduler[int],
) (*observability.DiagnosticsServer, error) {
	playing := observability.Check{Name: "playback", Probe: func(context.Context) error {
		if sched.State() != scheduler.Playing {
			return errPlaybackIdle
		}

		return nil
	}}

	mux := observability.NewDiagnosticsMux(providers.Tracer, providers.MetricsHandler, playing)

	diag, err := observability.NewDiagnosticsServer(ctx, addr, mux, providers.Logger)
	if err != nil {
		return nil, err
	}

	providers.Logger.Info("diagnostics listening", "addr", diag.Addr())

	return diag, nil
}

// visibleKeys lists the tree in ascending order minus the hidden keys.
func (pc *playCommand) visibleKeys(tree *bst.Tree[int]) []int {
	return slices.DeleteFunc(tree.DFSInOrder(), func(key int) bool {
		return slices.Contains(pc.hide, key)
	})
}

func writeHeader(out io.Writer, order traversal.Order) error {
	alg, err := traversal.Lookup(order)
	if err != nil {
		return err
	}

	return writeLine(out, fmt.Sprintf("%s %s", alg.Name, alg.TraverseOrder))
}

func writeLine(out io.Writer, line string) error {
	_, err := fmt.Fprintln(out, line)
	if err != nil {
		return errors.Wrap(err, "write output")
	}

	return nil
}
