package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/sortvis/internal/algo"
	"github.com/dyluth/sortvis/internal/printer"
	"github.com/dyluth/sortvis/internal/runner"
	"github.com/dyluth/sortvis/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr          string
	serveRedisURL      string
	serveName          string
	serveStatsInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the sorting runner over HTTP",
	Long: `Serve a JSON HTTP API that a separate UI process uses to configure,
start, cancel and poll sorting runs.

Endpoints:
  GET  /healthz           health check (includes Redis when attached)
  GET  /api/algorithms    registered algorithm names
  GET  /api/settings      current run settings
  POST /api/configure     {"elements":N,"read_delay_us":R,"write_delay_us":W}
  POST /api/start         {"algorithm":"Heap Sort"}
  POST /api/cancel        request cancellation of the active run
  GET  /api/sequence      raw snapshot of the sequence
  GET  /api/stats         read/write counters and run status

With --redis, run lifecycle events and periodic stats snapshots are also
published for 'sortvis watch'.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, or :8080)")
	serveCmd.Flags().StringVar(&serveRedisURL, "redis", "", "Redis URL to publish run events to")
	serveCmd.Flags().StringVarP(&serveName, "name", "n", "", "Instance name used for event channels (default: \"default\")")
	serveCmd.Flags().DurationVar(&serveStatsInterval, "stats-interval", 250*time.Millisecond, "Interval between published stats snapshots")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveStatsInterval <= 0 {
		return printer.Error(
			"invalid stats interval",
			"--stats-interval must be positive",
			[]string{"Try --stats-interval 250ms"},
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	redisURL, instanceName := redisTarget(cfg, serveRedisURL, serveName)
	opts := []runner.Option{runner.WithInstanceName(instanceName)}
	if cfg.Run.Seed != nil {
		opts = append(opts, runner.WithSeed(*cfg.Run.Seed))
	}

	var bus server.Pinger
	if redisURL != "" {
		client, err := connectEventBus(ctx, redisURL, instanceName)
		if err != nil {
			return err
		}
		defer client.Close()
		opts = append(opts, runner.WithPublisher(client))
		bus = client
	}

	r := runner.New(algo.Default[int](), opts...)
	if err := r.Configure(cfg.Settings()); err != nil {
		return printer.Error("invalid run settings", err.Error(), nil)
	}

	srv := server.New(r, bus, addr)
	printer.Success("Serving sortvis API on %s\n", srv.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		return r.StreamStats(gctx, serveStatsInterval)
	})

	err = g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closeErr := r.Close(closeCtx); closeErr != nil {
		log.Printf("[Serve] Failed to stop runner: %v", closeErr)
	}

	if err != nil {
		return printer.ErrorWithContext(
			"server stopped",
			err.Error(),
			map[string]string{"Address": addr},
			[]string{"Check that the address is free, or choose another with --addr"},
		)
	}
	printer.Info("Server stopped\n")
	return nil
}
