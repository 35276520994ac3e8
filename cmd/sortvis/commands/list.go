package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/dyluth/sortvis/internal/algo"
	"github.com/dyluth/sortvis/internal/printer"
	"github.com/spf13/cobra"
)

var (
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available sorting algorithms",
	Long: `List every registered sorting algorithm in registry order.

The name shown is the one accepted by 'sortvis run' and by the HTTP API's
start endpoint. Use --json for machine-readable output.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// AlgorithmInfo describes one registered algorithm.
type AlgorithmInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func runList(cmd *cobra.Command, args []string) error {
	registry := algo.Default[int]()
	defer registry.Close()

	var infos []AlgorithmInfo
	for _, name := range registry.Names() {
		infos = append(infos, AlgorithmInfo{Name: name, Description: algo.Describe(name)})
	}

	if listJSON {
		return outputJSON(cmd.OutOrStdout(), infos)
	}
	return outputTable(cmd.OutOrStdout(), infos)
}

func outputJSON(w io.Writer, infos []AlgorithmInfo) error {
	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func outputTable(w io.Writer, infos []AlgorithmInfo) error {
	rows := make([][]string, 0, len(infos))
	for i, info := range infos {
		rows = append(rows, []string{strconv.Itoa(i + 1), info.Name, info.Description})
	}
	return printer.TableTo(w, []string{"#", "Algorithm", "Description"}, rows)
}
