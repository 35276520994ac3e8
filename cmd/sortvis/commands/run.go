package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dyluth/sortvis/internal/algo"
	"github.com/dyluth/sortvis/internal/chart"
	"github.com/dyluth/sortvis/internal/config"
	"github.com/dyluth/sortvis/internal/printer"
	"github.com/dyluth/sortvis/internal/runner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	runElements   int
	runReadDelay  int64
	runWriteDelay int64
	runRedisURL   string
	runName       string
	runSeed       uint64
	runRefresh    time.Duration
	runNoChart    bool
	runWidth      int
	runHeight     int
)

var runCmd = &cobra.Command{
	Use:   "run [ALGORITHM]",
	Short: "Sort a shuffled sequence and watch it happen",
	Long: `Shuffle the sequence 1..N, sort it with the chosen algorithm and draw it
as a live bar chart. Every read and write is counted and delayed by the
configured latency. Press Ctrl+C to cancel the run; the sequence is left as
a permutation of its original values.

With no argument, the algorithm from sortvis.yml is used, or the first
registered algorithm when none is configured.

Examples:
  # Bubble sort 100 elements with the default latency
  sortvis run "Bubble Sort" --elements 100

  # Fast heap sort, no chart, reproducible shuffle
  sortvis run "Heap Sort" --read-delay 0 --write-delay 0 --seed 42 --no-chart

  # Publish run events so 'sortvis watch' can follow along
  sortvis run "Comb Sort" --redis redis://localhost:6379/0 --name demo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVarP(&runElements, "elements", "e", runner.DefaultElements, "Number of elements to sort (1-4096)")
	runCmd.Flags().Int64Var(&runReadDelay, "read-delay", runner.DefaultReadDelay.Microseconds(), "Delay after each read, in microseconds (0-1000)")
	runCmd.Flags().Int64Var(&runWriteDelay, "write-delay", runner.DefaultWriteDelay.Microseconds(), "Delay after each write, in microseconds (0-1000)")
	runCmd.Flags().StringVar(&runRedisURL, "redis", "", "Redis URL to publish run events to")
	runCmd.Flags().StringVarP(&runName, "name", "n", "", "Instance name used for event channels (default: \"default\")")
	runCmd.Flags().Uint64Var(&runSeed, "seed", 0, "Shuffle seed for a reproducible input")
	runCmd.Flags().DurationVar(&runRefresh, "refresh", 50*time.Millisecond, "Chart and stats refresh interval")
	runCmd.Flags().BoolVar(&runNoChart, "no-chart", false, "Do not draw the live chart")
	runCmd.Flags().IntVar(&runWidth, "width", 100, "Maximum chart width in columns")
	runCmd.Flags().IntVar(&runHeight, "height", 20, "Chart height in rows")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runRefresh <= 0 {
		return printer.Error(
			"invalid refresh interval",
			fmt.Sprintf("--refresh must be positive, got %s", runRefresh),
			[]string{"Try --refresh 50ms"},
		)
	}

	settings := runSettings(cmd, cfg)
	opts := []runner.Option{}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, runner.WithSeed(runSeed))
	} else if cfg.Run.Seed != nil {
		opts = append(opts, runner.WithSeed(*cfg.Run.Seed))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisURL, instanceName := redisTarget(cfg, runRedisURL, runName)
	opts = append(opts, runner.WithInstanceName(instanceName))
	if redisURL != "" {
		client, err := connectEventBus(ctx, redisURL, instanceName)
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, runner.WithPublisher(client))
	}

	r := runner.New(algo.Default[int](), opts...)
	defer r.Close(context.Background())

	if err := r.Configure(settings); err != nil {
		return printer.Error(
			"invalid run settings",
			err.Error(),
			[]string{"Use --elements > 0 and non-negative --read-delay/--write-delay"},
		)
	}

	name := cfg.Run.Algorithm
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = r.Algorithms()[0]
	}

	out := cmd.OutOrStdout()
	final, err := execute(ctx, r, name, out, renderOptions{
		refresh: runRefresh,
		chart:   chartFor(settings.Elements),
	})
	if err != nil {
		if errors.Is(err, runner.ErrUnknownAlgorithm) {
			return printer.ErrorWithContext(
				fmt.Sprintf("unknown algorithm '%s'", name),
				"No algorithm is registered under that name.",
				map[string]string{"Available": strings.Join(r.Algorithms(), ", ")},
				[]string{"List the algorithms:\n  sortvis list"},
			)
		}
		return err
	}

	if err := printSummary(out, final, r.PollSequence()); err != nil {
		return err
	}
	if final.Status == runner.StatusCancelled {
		printer.Warning("Run cancelled after %s\n", formatDuration(final.LastDuration))
	} else {
		printer.Success("Sorted %d elements with %s in %s\n", final.Elements, final.Algorithm, formatDuration(final.LastDuration))
	}
	return nil
}

// runSettings starts from the config file and applies explicitly set flags.
func runSettings(cmd *cobra.Command, cfg *config.SortvisConfig) runner.Settings {
	s := cfg.Settings()
	flags := runner.Micros(runElements, runReadDelay, runWriteDelay)
	if cmd.Flags().Changed("elements") {
		s.Elements = flags.Elements
	}
	if cmd.Flags().Changed("read-delay") {
		s.ReadDelay = flags.ReadDelay
	}
	if cmd.Flags().Changed("write-delay") {
		s.WriteDelay = flags.WriteDelay
	}
	return s
}

func chartFor(elements int) *chart.Chart {
	if runNoChart {
		return nil
	}
	return chart.New(min(elements, runWidth), runHeight)
}

type renderOptions struct {
	refresh time.Duration
	chart   *chart.Chart // nil disables drawing
}

// execute starts a run and blocks until it finishes. Cancelling ctx cancels
// the run. While it runs, frames are drawn and stats snapshots published
// every refresh interval.
func execute(ctx context.Context, r *runner.Runner, name string, out io.Writer, opts renderOptions) (runner.Stats, error) {
	if _, err := r.Start(name); err != nil {
		return runner.Stats{}, err
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	g, gctx := errgroup.WithContext(runCtx)

	var final runner.Stats
	g.Go(func() error {
		// The run ending stops the renderer and the stats stream
		defer cancelRun()
		var err error
		final, err = r.Wait(context.Background())
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		r.Cancel()
		return nil
	})
	g.Go(func() error {
		return r.StreamStats(gctx, opts.refresh)
	})
	if opts.chart != nil {
		g.Go(func() error {
			ticker := time.NewTicker(opts.refresh)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					drawFrame(out, opts.chart, r.PollSequence(), r.PollStats())
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return final, err
	}
	if opts.chart != nil {
		drawFrame(out, opts.chart, r.PollSequence(), final)
	}
	return final, nil
}

func drawFrame(w io.Writer, c *chart.Chart, values []int, stats runner.Stats) {
	fmt.Fprint(w, chart.ClearScreen)
	fmt.Fprint(w, c.Render(values))
	fmt.Fprintf(w, "%s  reads=%d writes=%d last=%s elapsed=%s\n",
		stats.Algorithm, stats.ReadCount, stats.WriteCount, stats.LastAction, formatDuration(stats.Elapsed))
}

func printSummary(w io.Writer, s runner.Stats, values []int) error {
	rows := [][]string{
		{"Algorithm", s.Algorithm},
		{"Run ID", s.RunID},
		{"Status", string(s.Status)},
		{"Elements", strconv.Itoa(s.Elements)},
		{"Reads", strconv.FormatUint(s.ReadCount, 10)},
		{"Writes", strconv.FormatUint(s.WriteCount, 10)},
		{"Last action", s.LastAction},
		{"Duration", formatDuration(s.LastDuration)},
		{"Sorted", strconv.FormatBool(slices.IsSorted(values))},
	}
	return printer.TableTo(w, []string{"Stat", "Value"}, rows)
}
