package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sortvis",
	Short: "Sortvis - watch sorting algorithms work in real time",
	Long: `Sortvis runs classic in-place sorting algorithms over a shared sequence
with simulated read and write latency, so you can watch every access happen.

Runs can be driven from the terminal (sortvis run), exposed over HTTP to a
separate UI (sortvis serve), and observed remotely through Redis Pub/Sub
(sortvis watch).`,
	Version: version,
	// Show help rather than silently succeeding when no subcommand is given
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to sortvis.yml (default: ./sortvis.yml if present)")
}
