package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/sortvis/internal/printer"
	"github.com/dyluth/sortvis/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchRedisURL     string
	watchInstanceName string
	watchOutputFormat string
	watchRunID        string
	watchUntilDone    bool
	watchTimeout      time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor sorting runs in real time",
	Long: `Monitor sorting runs published to Redis by 'sortvis run --redis' or
'sortvis serve --redis'.

Streams run starts, periodic progress snapshots and run completions or
cancellations as they occur.

Output Formats:
  default - Human-readable output with timestamps and emojis
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch the default instance
  sortvis watch --redis redis://localhost:6379/0

  # Watch a named instance
  sortvis watch --redis redis://localhost:6379/0 --name demo

  # Export events as JSON
  sortvis watch --redis redis://localhost:6379/0 --output=json > runs.jsonl

  # Block until a specific run finishes, then print its final event
  sortvis watch --redis redis://localhost:6379/0 --run <run-id> --timeout 5m`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchRedisURL, "redis", "", "Redis URL (default from config)")
	watchCmd.Flags().StringVarP(&watchInstanceName, "name", "n", "", "Instance name to watch (default: \"default\")")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	watchCmd.Flags().StringVar(&watchRunID, "run", "", "Wait for this run ID to finish and print its final event")
	watchCmd.Flags().BoolVar(&watchUntilDone, "until-done", false, "Wait for the next run to finish and print its final event")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 10*time.Minute, "Maximum wait with --run or --until-done")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	outputFormat, err := watch.ParseOutputFormat(watchOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	redisURL, instanceName := redisTarget(cfg, watchRedisURL, watchInstanceName)
	if redisURL == "" {
		return printer.Error(
			"no Redis configured",
			"Watching requires the Redis server that runs publish to.",
			[]string{
				"Pass it explicitly:\n  sortvis watch --redis redis://localhost:6379/0",
				"Add a redis section to sortvis.yml",
			},
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connectEventBus(ctx, redisURL, instanceName)
	if err != nil {
		return err
	}
	defer client.Close()

	if watchRunID != "" || watchUntilDone {
		printer.Step("Waiting for run to finish on instance '%s'\n", instanceName)
		if _, err := watch.AwaitRun(ctx, client, watchRunID, watchTimeout, outputFormat, cmd.OutOrStdout()); err != nil {
			return printer.ErrorWithContext(
				"run did not finish",
				err.Error(),
				map[string]string{"Instance": instanceName, "Run": watchRunID},
				[]string{"Increase --timeout, or check the run is publishing to this instance"},
			)
		}
		return nil
	}

	printer.Step("Watching instance '%s' (Ctrl+C to stop)\n", instanceName)
	return watch.StreamActivity(ctx, client, outputFormat, cmd.OutOrStdout())
}
