package commands

import (
	"fmt"
	"os"

	"github.com/dyluth/sortvis/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter sortvis.yml",
	Long: `Create sortvis.yml with the default run settings, server address and a
commented-out Redis section.

Use --force to overwrite an existing sortvis.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing sortvis.yml")
	initCmd.Flags().StringVar(&initDir, "dir", "", "Directory to write sortvis.yml into (default: current directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := initDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	path, err := scaffold.Initialize(dir, forceInit)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(cmd.OutOrStdout(), path)
	return nil
}
